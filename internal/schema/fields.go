package schema

// EntityType selects which table's field namespace a lookup runs against.
type EntityType string

// Entities with field mappings.
const (
	EntityOrder   EntityType = "order"
	EntityMember  EntityType = "member"
	EntityCourier EntityType = "courier"
)

// LanguageMode selects which public name a translation favors when an
// internal field has several candidates.
type LanguageMode int

const (
	// ModeNative favors identity mappings: output keeps the storage
	// field names.
	ModeNative LanguageMode = iota
	// ModeDescriptive favors the renamed, semantic public names.
	ModeDescriptive
)

// FieldPair binds one public field name to one internal field name.
type FieldPair struct {
	Public      string
	Internal    string
	Description string
}

// Relation declares a foreign-key join between two entities together with
// the fields pulled from the joined entity and their public names.
type Relation struct {
	From    EntityType
	To      EntityType
	FromKey string
	ToKey   string
	Fields  []FieldPair
}

// Mapping is the single source of truth for internal↔public field
// correspondence. It is an immutable value object: build it once with
// NewMapping and share it freely across requests.
type Mapping struct {
	entries    map[EntityType][]FieldPair // declaration order is significant
	toInternal map[EntityType]map[string]string
	relations  []Relation
	prefixes   map[EntityType]string
}

// entityPrefix per entity, used by ModeDescriptive preference.
var entityPrefixes = map[EntityType]string{
	EntityOrder:   "order_",
	EntityMember:  "user_",
	EntityCourier: "courier_",
}

// NewMapping builds the static field dictionary for all entities. For each
// internal field the renamed descriptive pair is declared before the
// identity pair, so "first declared wins" resolves ambiguity the same way
// on every call.
func NewMapping() *Mapping {
	m := &Mapping{
		entries:    make(map[EntityType][]FieldPair),
		toInternal: make(map[EntityType]map[string]string),
		prefixes:   entityPrefixes,
	}

	m.declare(EntityOrder, []FieldPair{
		{"order_id", "id", "order ID"},
		{"order_number", "ord_sn", "human-readable order number"},
		{"customer_id", "mem_id", "owning customer"},
		{"agent_id", "agent_id", "agent"},
		{"courier_id", "cour_id", "assigned courier"},
		{"order_amount", "price", "order amount"},
		{"delivery_fee", "fee", "delivery fee"},
		{"tip_amount", "tip", "tip"},
		{"extra_fee", "surcharge", "surcharge"},
		{"item_name", "goods_name", "goods name"},
		{"item_weight", "goods_weight", "goods weight"},
		{"estimated_item_price", "goods_price", "estimated goods price"},
		{"delivery_distance", "dist_m", "distance in meters"},
		{"pickup_address", "pk_addr", "pickup address"},
		{"pickup_door_number", "pk_door", "pickup door number"},
		{"pickup_latitude", "pk_lat", "pickup latitude"},
		{"pickup_longitude", "pk_lng", "pickup longitude"},
		{"pickup_contact_phone", "pk_phone", "pickup contact phone"},
		{"pickup_contact_name", "pk_name", "pickup contact name"},
		{"delivery_address", "dp_addr", "drop-off address"},
		{"delivery_door_number", "dp_door", "drop-off door number"},
		{"delivery_latitude", "dp_lat", "drop-off latitude"},
		{"delivery_longitude", "dp_lng", "drop-off longitude"},
		{"recipient_phone", "dp_phone", "recipient phone"},
		{"recipient_name", "dp_name", "recipient name"},
		{"order_status", "status", "lifecycle status code"},
		{"order_type", "order_type", "order type code"},
		{"payment_method", "pay_type", "payment method code"},
		{"area_code", "zone", "delivery area code"},
		{"created_at", "created_ts", "creation time"},
		{"paid_at", "paid_ts", "payment time"},
		{"accepted_at", "accepted_ts", "courier accept time"},
		{"picked_up_at", "pickup_ts", "pickup time"},
		{"delivered_at", "delivered_ts", "delivery time"},
		{"completed_at", "completed_ts", "completion time"},
		{"expected_delivery_time", "expected_ts", "requested delivery slot"},
		{"actual_duration", "used_secs", "actual delivery duration, seconds"},
		{"expected_duration", "plan_secs", "expected delivery duration, seconds"},
		{"courier_earnings", "cour_income", "courier earnings"},
		{"order_note", "note", "order note"},
		// identity mappings
		{"id", "id", ""},
		{"ord_sn", "ord_sn", ""},
		{"mem_id", "mem_id", ""},
		{"cour_id", "cour_id", ""},
		{"price", "price", ""},
		{"fee", "fee", ""},
		{"tip", "tip", ""},
		{"status", "status", ""},
		{"created_ts", "created_ts", ""},
	})

	m.declare(EntityMember, []FieldPair{
		{"user_id", "id", "member ID"},
		{"username", "nick", "display name"},
		{"user_phone", "phone", "phone number"},
		{"user_status", "status", "account status"},
		{"real_name", "real_name", "legal name"},
		{"balance", "credit", "account balance"},
		{"registration_time", "reg_ts", "registration time"},
		// identity mappings
		{"id", "id", ""},
		{"nick", "nick", ""},
		{"phone", "phone", ""},
		{"avatar", "avatar", ""},
		{"status", "status", ""},
		{"credit", "credit", ""},
		{"reg_ts", "reg_ts", ""},
	})

	m.declare(EntityCourier, []FieldPair{
		{"courier_info_id", "id", "courier profile ID"},
		{"courier_user_id", "mem_id", "courier member ID"},
		{"courier_name", "legal_name", "courier legal name"},
		{"courier_phone", "phone", "courier phone"},
		{"courier_status", "line_status", "online status code"},
		{"courier_id_card", "id_card", "courier ID card"},
		{"courier_commission_rate", "rate", "commission rate"},
		{"courier_address", "addr", "courier address"},
		// identity mappings
		{"id", "id", ""},
		{"mem_id", "mem_id", ""},
		{"phone", "phone", ""},
		{"line_status", "line_status", ""},
		{"rate", "rate", ""},
	})

	m.relations = []Relation{
		{
			From: EntityOrder, To: EntityMember,
			FromKey: "mem_id", ToKey: "id",
			Fields: []FieldPair{
				{"customer_name", "nick", "customer display name"},
				{"customer_phone", "phone", "customer phone"},
				{"customer_avatar", "avatar", "customer avatar"},
			},
		},
		{
			From: EntityOrder, To: EntityCourier,
			FromKey: "cour_id", ToKey: "mem_id",
			Fields: []FieldPair{
				{"courier_name", "legal_name", "courier legal name"},
				{"courier_phone", "phone", "courier phone"},
				{"courier_status", "line_status", "courier online status"},
			},
		},
		{
			From: EntityCourier, To: EntityMember,
			FromKey: "mem_id", ToKey: "id",
			Fields: []FieldPair{
				{"courier_nickname", "nick", "courier display name"},
				{"courier_avatar", "avatar", "courier avatar"},
				{"courier_balance", "credit", "courier balance"},
			},
		},
	}

	return m
}

func (m *Mapping) declare(e EntityType, pairs []FieldPair) {
	m.entries[e] = pairs
	idx := make(map[string]string, len(pairs))
	for _, p := range pairs {
		// first declaration of a public name wins per direction
		if _, ok := idx[p.Public]; !ok {
			idx[p.Public] = p.Internal
		}
	}
	m.toInternal[e] = idx
}

// ResolveToInternal maps a public field name to its internal counterpart.
func (m *Mapping) ResolveToInternal(public string, e EntityType) (string, bool) {
	internal, ok := m.toInternal[e][public]
	return internal, ok
}

// ResolveToPublic maps an internal field name to a public one. The lookup
// is total: an internal field absent from the table keeps its own name, so
// translation never drops data. When several public names map to the same
// internal field, ModeNative favors the identity mapping, ModeDescriptive
// favors the name carrying the entity prefix, and otherwise the first
// declared candidate wins.
func (m *Mapping) ResolveToPublic(internal string, e EntityType, mode LanguageMode) string {
	var first string
	prefix := m.prefixes[e]
	for _, p := range m.entries[e] {
		if p.Internal != internal {
			continue
		}
		if first == "" {
			first = p.Public
		}
		switch mode {
		case ModeNative:
			if p.Public == p.Internal {
				return p.Public
			}
		case ModeDescriptive:
			if len(p.Public) > len(prefix) && p.Public[:len(prefix)] == prefix {
				return p.Public
			}
		}
	}
	if first != "" {
		return first
	}
	return internal
}

// RelationFields returns the declared join fields between two entities in
// declaration order.
func (m *Mapping) RelationFields(from, to EntityType) ([]FieldPair, bool) {
	for _, rel := range m.relations {
		if rel.From == from && rel.To == to {
			out := make([]FieldPair, len(rel.Fields))
			copy(out, rel.Fields)
			return out, true
		}
	}
	return nil, false
}

// Relations returns all declared cross-entity relations.
func (m *Mapping) Relations() []Relation {
	out := make([]Relation, len(m.relations))
	copy(out, m.relations)
	return out
}
