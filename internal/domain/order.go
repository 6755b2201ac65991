package domain

// Point is one end of a delivery: address, coordinates and contact.
type Point struct {
	Address   string
	Door      string
	Latitude  float64
	Longitude float64
	Phone     string
	Name      string
}

// Timeline holds the order lifecycle timestamps as Unix seconds. A zero
// value means the stage was not reached yet. Once non-zero, timestamps are
// monotonically non-decreasing in declaration order.
type Timeline struct {
	Created   int64
	Paid      int64
	Accepted  int64
	PickedUp  int64
	Delivered int64
	Completed int64
}

// Order is one delivery transaction as stored in dlv_order.
type Order struct {
	ID        int64
	Number    string // ord_sn
	MemberID  int64  // mem_id, owning customer
	CourierID int64  // cour_id, assigned courier (0 = unassigned)
	AgentID   int64

	Price      float64
	Fee        float64 // delivery fee
	Tip        float64
	Surcharge  float64
	GoodsName  string
	GoodsPrice float64
	DistanceM  int64

	Pickup  Point
	Dropoff Point

	Status    StatusCode
	Type      OrderType
	PayType   PayType
	Zone      Zone
	Times     Timeline
	ExpectedTS int64 // requested delivery slot, 0 when none

	UsedSecs int64 // actual delivery duration
	PlanSecs int64 // expected delivery duration

	CourierIncome float64
	Note          string
}
