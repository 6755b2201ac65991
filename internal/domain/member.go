package domain

// Member is a platform customer as stored in dlv_member. Couriers are
// members too: dlv_courier.mem_id references this table.
type Member struct {
	ID       int64
	Nick     string
	Phone    string
	Avatar   string
	Status   int
	RealName string
	Credit   float64 // account balance
	RegTS    int64
}

// Courier is the courier profile stored in dlv_courier.
type Courier struct {
	ID         int64
	MemberID   int64
	LegalName  string
	Phone      string
	LineStatus CourierStatus
	Rate       float64 // commission rate
	Address    string
}
