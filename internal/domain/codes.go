package domain

type (
	// StatusCode is the numeric order lifecycle status stored in dlv_order.status.
	StatusCode int
	// OrderType is the numeric order type stored in dlv_order.order_type.
	OrderType int
	// PayType is the numeric payment method stored in dlv_order.pay_type.
	PayType int
	// CourierStatus is the numeric online status stored in dlv_courier.line_status.
	CourierStatus int
	// Zone is the numeric delivery area stored in dlv_order.zone.
	Zone int
)

// Order lifecycle statuses. Negative codes are terminal failure paths,
// StatusCompleted is the terminal success path, everything in between is
// transient.
const (
	StatusCancelled         StatusCode = -2
	StatusClosed            StatusCode = -1
	StatusPendingPayment    StatusCode = 0
	StatusPendingPickup     StatusCode = 1
	StatusPendingCollection StatusCode = 2
	StatusInDelivery        StatusCode = 3
	StatusDelivered         StatusCode = 4
	StatusCompleted         StatusCode = 5
)

// Order types.
const (
	TypeDelivery OrderType = 1
	TypePickup   OrderType = 2
	TypePurchase OrderType = 3
	TypeVoice    OrderType = 4
	TypeTakeout  OrderType = 5
	TypeText     OrderType = 6
	TypeGroup    OrderType = 7
)

// Payment methods.
const (
	PayUnpaid  PayType = 0
	PayWechat  PayType = 1
	PayAlipay  PayType = 2
	PayBalance PayType = 3
	PayOffline PayType = 4
	PayTakeout PayType = 5
	PayDouyin  PayType = 6
)

// Courier online statuses.
const (
	CourierResigned     CourierStatus = -2
	CourierUnregistered CourierStatus = -1
	CourierOffline      CourierStatus = 0
	CourierOnline       CourierStatus = 1
)

// Delivery zones.
const (
	ZoneUnknown Zone = 0
	ZoneNewTown Zone = 1
	ZoneOldTown Zone = 2
	ZoneSuburbs Zone = 3
	ZoneOther   Zone = 4
)

// Terminal reports whether s is a terminal lifecycle state.
func (s StatusCode) Terminal() bool {
	return s == StatusCancelled || s == StatusClosed || s == StatusCompleted
}
