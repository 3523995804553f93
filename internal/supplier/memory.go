package supplier

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verastro/roombroker/internal/domain"
)

// MemoryConnector serves canned offers and tracks cancellations in memory.
// It backs suppliers without a gateway URL (direct contracts) and local runs.
type MemoryConnector struct {
	supplier domain.Supplier

	mu        sync.Mutex
	cancelled map[string]bool
}

func NewMemoryConnector(supplier domain.Supplier) *MemoryConnector {
	return &MemoryConnector{
		supplier:  supplier,
		cancelled: make(map[string]bool),
	}
}

func (c *MemoryConnector) FetchAvailability(_ context.Context, req AvailabilityRequest) ([]Offer, error) {
	price := domain.Price{Amount: 180, Currency: domain.CurrencyEUR}
	set := domain.RoomContractSet{
		ID:       uuid.New(),
		Rate:     price,
		Deadline: req.CheckInDate.AddDate(0, 0, -2),
		Rooms: []domain.RoomContract{
			{
				RoomName:   "Standard Double",
				BoardBasis: "RO",
				Occupancy:  domain.Occupancy{Adults: 2},
				Deadline:   req.CheckInDate.AddDate(0, 0, -2),
				Gross:      price,
				Final:      price,
			},
		},
	}
	return []Offer{
		{
			AccommodationID:  "direct-" + req.Location,
			MinPrice:         price,
			MaxPrice:         price,
			RoomContractSets: []domain.RoomContractSet{set},
		},
	}, nil
}

func (c *MemoryConnector) FetchBookingDetails(_ context.Context, referenceCode, _ string) (*BookingDetails, error) {
	c.mu.Lock()
	cancelled := c.cancelled[referenceCode]
	c.mu.Unlock()

	status := domain.BookingStatusConfirmed
	if cancelled {
		status = domain.BookingStatusCancelled
	}
	return &BookingDetails{
		ReferenceCode:     referenceCode,
		SupplierReference: "mem-" + referenceCode,
		Supplier:          c.supplier,
		Status:            status,
		UpdatedAt:         time.Now().UTC(),
	}, nil
}

func (c *MemoryConnector) CancelBooking(_ context.Context, referenceCode string) error {
	c.mu.Lock()
	c.cancelled[referenceCode] = true
	c.mu.Unlock()
	return nil
}

var _ Connector = (*MemoryConnector)(nil)
