package schema

import (
	"fmt"

	"delivery-analytics/internal/domain"
)

// EnumDomain names one enumerated code space.
type EnumDomain string

// Enumerated domains resolvable through the Registry.
const (
	DomainStatus        EnumDomain = "status"
	DomainOrderType     EnumDomain = "order_type"
	DomainPayment       EnumDomain = "payment_method"
	DomainCourierStatus EnumDomain = "courier_status"
	DomainZone          EnumDomain = "zone"
)

type enumEntry struct {
	Token       string // stable machine-readable label
	Description string // human-readable label
}

// Registry resolves numeric codes to text labels. It is total: unknown
// codes resolve to a fallback embedding the raw code, never an error, so
// analytics output survives codes added at the data-source end. Built once
// at startup and safe for concurrent use.
type Registry struct {
	tables map[EnumDomain]map[int]enumEntry
}

// NewRegistry builds the static enumeration tables.
func NewRegistry() *Registry {
	return &Registry{tables: map[EnumDomain]map[int]enumEntry{
		DomainStatus: {
			int(domain.StatusCancelled):         {"cancelled", "order cancelled"},
			int(domain.StatusClosed):            {"closed", "order closed"},
			int(domain.StatusPendingPayment):    {"pending_payment", "awaiting payment"},
			int(domain.StatusPendingPickup):     {"pending_pickup", "awaiting courier"},
			int(domain.StatusPendingCollection): {"pending_collection", "awaiting pickup"},
			int(domain.StatusInDelivery):        {"in_delivery", "courier delivering"},
			int(domain.StatusDelivered):         {"delivered", "delivered"},
			int(domain.StatusCompleted):         {"completed", "order completed"},
		},
		DomainOrderType: {
			int(domain.TypeDelivery): {"delivery", "send for me"},
			int(domain.TypePickup):   {"pickup", "fetch for me"},
			int(domain.TypePurchase): {"purchase", "buy for me"},
			int(domain.TypeVoice):    {"voice", "voice order"},
			int(domain.TypeTakeout):  {"takeout", "takeout order"},
			int(domain.TypeText):     {"text", "text order"},
			int(domain.TypeGroup):    {"group", "group-buy order"},
		},
		DomainPayment: {
			int(domain.PayUnpaid):  {"unpaid", "not paid"},
			int(domain.PayWechat):  {"wechat", "WeChat Pay"},
			int(domain.PayAlipay):  {"alipay", "Alipay"},
			int(domain.PayBalance): {"balance", "account balance"},
			int(domain.PayOffline): {"offline", "back-office payment"},
			int(domain.PayTakeout): {"takeout", "takeout payment"},
			int(domain.PayDouyin):  {"douyin", "Douyin payment"},
		},
		DomainCourierStatus: {
			int(domain.CourierResigned):     {"resigned", "courier resigned"},
			int(domain.CourierUnregistered): {"unregistered", "not registered"},
			int(domain.CourierOffline):      {"offline", "offline"},
			int(domain.CourierOnline):       {"online", "online"},
		},
		DomainZone: {
			int(domain.ZoneUnknown): {"unknown", "unknown area"},
			int(domain.ZoneNewTown): {"new_town", "new town"},
			int(domain.ZoneOldTown): {"old_town", "old town"},
			int(domain.ZoneSuburbs): {"suburbs", "suburban villages"},
			int(domain.ZoneOther):   {"other", "other area"},
		},
	}}
}

// Label returns the canonical token for a code, or a fallback such as
// "unknown status(-7)" for codes outside the table.
func (r *Registry) Label(d EnumDomain, code int) string {
	if e, ok := r.tables[d][code]; ok {
		return e.Token
	}
	return fmt.Sprintf("unknown %s(%d)", d, code)
}

// Description returns the display text for a code. Unknown status codes
// fall back to "state <code>"; other domains fall back like Label.
func (r *Registry) Description(d EnumDomain, code int) string {
	if e, ok := r.tables[d][code]; ok {
		return e.Description
	}
	if d == DomainStatus {
		return fmt.Sprintf("state %d", code)
	}
	return fmt.Sprintf("unknown %s(%d)", d, code)
}
