package domain

import "time"

type BookingStatus string

const (
	BookingStatusCreated             BookingStatus = "CREATED"
	BookingStatusConfirmed           BookingStatus = "CONFIRMED"
	BookingStatusPendingCancellation BookingStatus = "PENDING_CANCELLATION"
	BookingStatusCancelled           BookingStatus = "CANCELLED"
	BookingStatusRejected            BookingStatus = "REJECTED"
	BookingStatusFailed              BookingStatus = "FAILED"
)

type UpdateMode string

const (
	UpdateModeSynchronous  UpdateMode = "SYNC"
	UpdateModeAsynchronous UpdateMode = "ASYNC"
)

// transitions is the forward-only status graph. PendingCancellation may fall
// back to Confirmed when the supplier refuses the cancellation.
var transitions = map[BookingStatus][]BookingStatus{
	BookingStatusCreated:             {BookingStatusConfirmed, BookingStatusRejected, BookingStatusFailed},
	BookingStatusConfirmed:           {BookingStatusPendingCancellation, BookingStatusFailed},
	BookingStatusPendingCancellation: {BookingStatusCancelled, BookingStatusConfirmed},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type Booking struct {
	ID                int64
	ReferenceCode     string
	Status            BookingStatus
	Supplier          Supplier
	SupplierReference string
	UpdateMode        UpdateMode
	AccommodationID   string
	CheckInDate       time.Time
	CheckOutDate      time.Time
	Total             Price
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SupplierOrder records what is owed to the supplier for one booking. It is
// written once, when the supplier confirms, and never changed.
type SupplierOrder struct {
	ID                   int64
	BookingReferenceCode string
	Supplier             Supplier
	Price                Price
	CreatedAt            time.Time
}

// StatusEvent is one row of the booking audit trail.
type StatusEvent struct {
	ID            int64
	ReferenceCode string
	OldStatus     BookingStatus
	NewStatus     BookingStatus
	Actor         string
	Reason        string
	CreatedAt     time.Time
}
