package supplier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/verastro/roombroker/internal/domain"
)

// FailureKind separates transport trouble from supplier-reported rejections.
// Transient failures are safe to retry for idempotent calls; rejections never
// are.
type FailureKind string

const (
	KindTransient FailureKind = "transient"
	KindRejected  FailureKind = "rejected"
)

// Failure is the structured error every connector call returns instead of a
// bare error: the Detail is supplier-facing and goes into logs verbatim.
type Failure struct {
	Supplier domain.Supplier
	Op       string
	Kind     FailureKind
	Detail   string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s: %s (%s)", f.Supplier, f.Op, f.Detail, f.Kind)
}

func (f *Failure) Transient() bool {
	return f.Kind == KindTransient
}

// AsFailure unwraps a connector failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

type AvailabilityRequest struct {
	Location     string             `json:"location"`
	CheckInDate  time.Time          `json:"check_in_date"`
	CheckOutDate time.Time          `json:"check_out_date"`
	Rooms        []domain.Occupancy `json:"rooms"`
	Language     string             `json:"language"`
}

// Offer is one accommodation's priced availability as quoted by a supplier,
// still in the supplier's currency.
type Offer struct {
	AccommodationID  string                   `json:"accommodation_id"`
	MinPrice         domain.Price             `json:"min_price"`
	MaxPrice         domain.Price             `json:"max_price"`
	RoomContractSets []domain.RoomContractSet `json:"room_contract_sets"`
}

// BookingDetails is the supplier's authoritative view of one booking, fetched
// on refresh or pushed through a callback.
type BookingDetails struct {
	ReferenceCode     string               `json:"reference_code"`
	SupplierReference string               `json:"supplier_reference"`
	Supplier          domain.Supplier      `json:"supplier"`
	Status            domain.BookingStatus `json:"status"`
	Price             domain.Price         `json:"price"`
	CheckInDate       time.Time            `json:"check_in_date"`
	CheckOutDate      time.Time            `json:"check_out_date"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// Connector is the uniform capability set every supplier integration exposes.
// Implementations do not retry; retry policy belongs to the caller because
// only some of these calls are idempotent.
type Connector interface {
	FetchAvailability(ctx context.Context, req AvailabilityRequest) ([]Offer, error)
	FetchBookingDetails(ctx context.Context, referenceCode, languageCode string) (*BookingDetails, error)
	CancelBooking(ctx context.Context, referenceCode string) error
}
