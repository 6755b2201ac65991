package schema

import "testing"

func TestMapping_ResolveToInternal(t *testing.T) {
	t.Parallel()

	m := NewMapping()

	cases := []struct {
		public string
		entity EntityType
		want   string
		found  bool
	}{
		{"order_number", EntityOrder, "ord_sn", true},
		{"delivery_fee", EntityOrder, "fee", true},
		{"customer_id", EntityOrder, "mem_id", true},
		{"created_at", EntityOrder, "created_ts", true},
		{"price", EntityOrder, "price", true},
		{"username", EntityMember, "nick", true},
		{"balance", EntityMember, "credit", true},
		{"courier_commission_rate", EntityCourier, "rate", true},
		{"no_such_field", EntityOrder, "", false},
		{"username", EntityOrder, "", false}, // member namespace only
	}
	for _, tc := range cases {
		got, ok := m.ResolveToInternal(tc.public, tc.entity)
		if ok != tc.found || got != tc.want {
			t.Fatalf("ResolveToInternal(%q, %s) = (%q, %v), want (%q, %v)",
				tc.public, tc.entity, got, ok, tc.want, tc.found)
		}
	}
}

func TestMapping_ResolveToPublic_Modes(t *testing.T) {
	t.Parallel()

	m := NewMapping()

	// identity preferred in native mode
	if got := m.ResolveToPublic("fee", EntityOrder, ModeNative); got != "fee" {
		t.Fatalf("native mode should keep fee, got %q", got)
	}
	// renamed preferred in descriptive mode
	if got := m.ResolveToPublic("fee", EntityOrder, ModeDescriptive); got != "delivery_fee" {
		t.Fatalf("descriptive mode should rename fee, got %q", got)
	}
	// entity prefix wins in descriptive mode
	if got := m.ResolveToPublic("status", EntityOrder, ModeDescriptive); got != "order_status" {
		t.Fatalf("descriptive mode should prefer order_status, got %q", got)
	}
	if got := m.ResolveToPublic("phone", EntityMember, ModeDescriptive); got != "user_phone" {
		t.Fatalf("descriptive mode should prefer user_phone, got %q", got)
	}
	// native mode prefers identity even with prefixed candidates
	if got := m.ResolveToPublic("status", EntityOrder, ModeNative); got != "status" {
		t.Fatalf("native mode should keep status, got %q", got)
	}
}

func TestMapping_ResolveToPublic_UnknownPassesThrough(t *testing.T) {
	t.Parallel()

	m := NewMapping()
	for _, mode := range []LanguageMode{ModeNative, ModeDescriptive} {
		if got := m.ResolveToPublic("legacy_col", EntityOrder, mode); got != "legacy_col" {
			t.Fatalf("unknown field must pass through unchanged, got %q", got)
		}
	}
}

func TestMapping_ResolveToPublic_Stable(t *testing.T) {
	t.Parallel()

	m := NewMapping()
	first := m.ResolveToPublic("used_secs", EntityOrder, ModeDescriptive)
	for i := 0; i < 10; i++ {
		if got := m.ResolveToPublic("used_secs", EntityOrder, ModeDescriptive); got != first {
			t.Fatalf("resolution is not stable: %q then %q", first, got)
		}
	}
	if first != "actual_duration" {
		t.Fatalf("expected actual_duration, got %q", first)
	}
}

func TestMapping_RelationFields(t *testing.T) {
	t.Parallel()

	m := NewMapping()

	fields, ok := m.RelationFields(EntityOrder, EntityMember)
	if !ok {
		t.Fatal("order→member relation must be declared")
	}
	want := []string{"customer_name", "customer_phone", "customer_avatar"}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d", len(want), len(fields))
	}
	for i, f := range fields {
		if f.Public != want[i] {
			t.Fatalf("field %d: expected %q, got %q", i, want[i], f.Public)
		}
	}

	if _, ok := m.RelationFields(EntityMember, EntityCourier); ok {
		t.Fatal("member→courier relation should not exist")
	}
}

func TestMapping_RelationJoinKeys(t *testing.T) {
	t.Parallel()

	m := NewMapping()
	for _, rel := range m.Relations() {
		if rel.FromKey == "" || rel.ToKey == "" {
			t.Fatalf("relation %s→%s missing join keys", rel.From, rel.To)
		}
	}
	// couriers join orders through the member id, not the profile id
	for _, rel := range m.Relations() {
		if rel.From == EntityOrder && rel.To == EntityCourier {
			if rel.FromKey != "cour_id" || rel.ToKey != "mem_id" {
				t.Fatalf("order→courier join keys = (%s, %s)", rel.FromKey, rel.ToKey)
			}
		}
	}
}
