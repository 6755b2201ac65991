package events

import (
	"time"
)

// Event is a single order lifecycle event.
type Event struct {
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
