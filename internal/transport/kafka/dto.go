package kafka

import (
	"strings"
	"time"

	"delivery-analytics/internal/service/events"
)

// EventDTO is the wire shape of an order lifecycle event.
type EventDTO struct {
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToDomain converts EventDTO to events.Event.
func ToDomain(dto EventDTO) events.Event {
	return events.Event{
		OrderNumber: strings.TrimSpace(dto.OrderNumber),
		Status:      strings.TrimSpace(dto.Status),
		CreatedAt:   dto.CreatedAt,
	}
}
