package domain

import (
	"time"

	"github.com/google/uuid"
)

type Supplier string

const (
	SupplierNetstorming     Supplier = "netstorming"
	SupplierTravelgate      Supplier = "travelgate"
	SupplierDirectContracts Supplier = "direct-contracts"
)

type SearchRunStatus string

const (
	SearchRunPending   SearchRunStatus = "PENDING"
	SearchRunCompleted SearchRunStatus = "COMPLETED"
	SearchRunFailed    SearchRunStatus = "FAILED"
)

// SupplierSearchOutcome is one supplier's contribution to a search.
type SupplierSearchOutcome struct {
	Status      SearchRunStatus `json:"status"`
	ResultCount int             `json:"result_count"`
	Error       string          `json:"error,omitempty"`
}

// ResultSummary lets a caller enumerate the results of a search without
// loading every cached snapshot.
type ResultSummary struct {
	ResultID        uuid.UUID `json:"result_id"`
	Supplier        Supplier  `json:"supplier"`
	AccommodationID string    `json:"accommodation_id"`
	MinPrice        Price     `json:"min_price"`
	MaxPrice        Price     `json:"max_price"`
}

// SearchState tracks one availability search across suppliers. It lives only
// in the cache, for the search TTL.
type SearchState struct {
	SearchID  uuid.UUID                          `json:"search_id"`
	Suppliers map[Supplier]SupplierSearchOutcome `json:"suppliers"`
	Results   []ResultSummary                    `json:"results"`
	CreatedAt time.Time                          `json:"created_at"`
}

func NewSearchState(searchID uuid.UUID) *SearchState {
	return &SearchState{
		SearchID:  searchID,
		Suppliers: make(map[Supplier]SupplierSearchOutcome),
		CreatedAt: time.Now().UTC(),
	}
}

type Occupancy struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// RoomContract is one priced room within a bookable bundle.
type RoomContract struct {
	RoomName   string    `json:"room_name"`
	BoardBasis string    `json:"board_basis"`
	Occupancy  Occupancy `json:"occupancy"`
	// Deadline is the point in time after which cancellation penalties change tier.
	Deadline time.Time `json:"deadline"`
	Gross    Price     `json:"gross"`
	Discount Price     `json:"discount"`
	Final    Price     `json:"final"`
}

// RoomContractSet is the bookable unit: one or more room contracts priced
// together. Prices and deadlines are immutable once cached.
type RoomContractSet struct {
	ID       uuid.UUID      `json:"id"`
	Rate     Price          `json:"rate"`
	Deadline time.Time      `json:"deadline"`
	Rooms    []RoomContract `json:"rooms"`
}

// CachedAvailabilityResult is an immutable snapshot of one supplier's offer
// for one accommodation. A refresh replaces it; nothing mutates it.
type CachedAvailabilityResult struct {
	ResultID         uuid.UUID         `json:"result_id"`
	Supplier         Supplier          `json:"supplier"`
	AccommodationID  string            `json:"accommodation_id"`
	MinPrice         Price             `json:"min_price"`
	MaxPrice         Price             `json:"max_price"`
	CheckInDate      time.Time         `json:"check_in_date"`
	CheckOutDate     time.Time         `json:"check_out_date"`
	RoomContractSets []RoomContractSet `json:"room_contract_sets"`
	CreatedAt        time.Time         `json:"created_at"`
}

// BookingEvaluationRecord is the priced, markup-applied view of one room
// contract set for one buyer. Replaced on re-evaluation, never mutated.
type BookingEvaluationRecord struct {
	SearchID          uuid.UUID       `json:"search_id"`
	ResultID          uuid.UUID       `json:"result_id"`
	RoomContractSetID uuid.UUID       `json:"room_contract_set_id"`
	Supplier          Supplier        `json:"supplier"`
	AccommodationID   string          `json:"accommodation_id"`
	CheckInDate       time.Time       `json:"check_in_date"`
	CheckOutDate      time.Time       `json:"check_out_date"`
	RoomContractSet   RoomContractSet `json:"room_contract_set"`
	CreatedAt         time.Time       `json:"created_at"`
}
