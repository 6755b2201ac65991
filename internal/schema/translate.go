package schema

// Record is one raw row: internal field name → value, as delivered by the
// store adapter.
type Record map[string]any

// Translator converts raw records into their public shape using the field
// mapping table and the enumeration registry. It holds no mutable state;
// Translate is a pure function over its inputs and the static tables.
type Translator struct {
	mapping *Mapping
	enums   *Registry
}

// NewTranslator wires the static tables into a Translator.
func NewTranslator(m *Mapping, r *Registry) *Translator {
	return &Translator{mapping: m, enums: r}
}

// preservedFields are copied verbatim before any renaming and must never
// be dropped even when a mapping lookup fails: downstream consumers key on
// them.
var preservedFields = map[EntityType][]string{
	EntityOrder: {
		"id", "ord_sn", "mem_id", "cour_id", "price", "status", "created_ts",
		// relation-derived columns arrive already public-named
		"customer_name", "customer_phone", "customer_avatar",
		"courier_name", "courier_phone", "courier_status",
	},
	EntityMember:  {"id", "nick", "phone", "status", "reg_ts"},
	EntityCourier: {"id", "mem_id", "legal_name", "line_status"},
}

// Translate produces the public-shaped counterpart of one raw record.
// Fields absent from the input are absent from the output; fields unknown
// to the mapping table pass through unchanged. Order records with a status
// code gain a derived status_description.
func (t *Translator) Translate(rec Record, e EntityType, mode LanguageMode) Record {
	if rec == nil {
		return nil
	}

	out := make(Record, len(rec)+1)
	copied := make(map[string]bool, len(preservedFields[e]))
	for _, f := range preservedFields[e] {
		if v, ok := rec[f]; ok {
			out[f] = v
			copied[f] = true
		}
	}

	for internal, v := range rec {
		if copied[internal] {
			continue
		}
		out[t.mapping.ResolveToPublic(internal, e, mode)] = v
	}

	if e == EntityOrder {
		if code, ok := intValue(rec["status"]); ok {
			out["status_description"] = t.enums.Description(DomainStatus, code)
		}
	}

	return out
}

// intValue coerces the numeric types a store row may carry for a code.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
