package kafka

import (
	"time"

	"github.com/verastro/roombroker/internal/domain"
)

// BookingStatusEvent is published on every booking status change so
// downstream consumers (notifications, finance) can react.
type BookingStatusEvent struct {
	Type          string               `json:"type"`
	ReferenceCode string               `json:"reference_code"`
	Supplier      domain.Supplier      `json:"supplier"`
	OldStatus     domain.BookingStatus `json:"old_status,omitempty"`
	Status        domain.BookingStatus `json:"status"`
	CheckInDate   time.Time            `json:"check_in_date"`
	CheckOutDate  time.Time            `json:"check_out_date"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// SupplierResponseEvent is an asynchronous supplier callback routed through
// the broker: the authoritative status for one booking as the supplier sees
// it. The worker feeds these into the booking state machine.
type SupplierResponseEvent struct {
	ReferenceCode     string               `json:"reference_code"`
	SupplierReference string               `json:"supplier_reference"`
	Supplier          domain.Supplier      `json:"supplier"`
	Status            domain.BookingStatus `json:"status"`
	PriceAmount       float64              `json:"price_amount"`
	PriceCurrency     domain.Currency      `json:"price_currency"`
	ReceivedAt        time.Time            `json:"received_at"`
}
