package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verastro/roombroker/internal/cache"
	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/pricing"
	"github.com/verastro/roombroker/internal/supplier"
)

var (
	// ErrResultExpired means the cached search data aged out: the caller must
	// re-run the search, stale data is never served past TTL.
	ErrResultExpired = errors.New("search result expired, re-run the search")

	ErrRoomContractSetNotFound = errors.New("room contract set not found in result")
)

type SearchUseCase interface {
	Search(ctx context.Context, req supplier.AvailabilityRequest) (*domain.SearchState, error)
	State(ctx context.Context, searchID uuid.UUID) (*domain.SearchState, bool)
	Evaluate(ctx context.Context, searchID, resultID, roomContractSetID uuid.UUID) (*domain.BookingEvaluationRecord, error)
}

// SupplierRegistry is what the search fan-out needs from the connector manager.
type SupplierRegistry interface {
	Get(s domain.Supplier) supplier.Connector
	Suppliers() []domain.Supplier
}

// SearchService fans availability searches out across suppliers and prices
// individual room contract sets on demand.
type SearchService struct {
	connectors    SupplierRegistry
	cache         *cache.AvailabilityCache
	pricing       *pricing.Service
	markup        pricing.Markup
	searchTTL     time.Duration
	evaluationTTL time.Duration
	logger        *zap.Logger
}

func NewSearchService(
	connectors SupplierRegistry,
	availabilityCache *cache.AvailabilityCache,
	pricingService *pricing.Service,
	markup pricing.Markup,
	searchTTL, evaluationTTL time.Duration,
	logger *zap.Logger,
) *SearchService {
	return &SearchService{
		connectors:    connectors,
		cache:         availabilityCache,
		pricing:       pricingService,
		markup:        markup,
		searchTTL:     searchTTL,
		evaluationTTL: evaluationTTL,
		logger:        logger,
	}
}

// Search queries every registered supplier concurrently. A failing supplier
// is recorded in the search state and skipped; the search as a whole only
// fails if nothing could be stored.
func (s *SearchService) Search(ctx context.Context, req supplier.AvailabilityRequest) (*domain.SearchState, error) {
	searchID := uuid.New()
	state := domain.NewSearchState(searchID)

	type supplierRun struct {
		supplier domain.Supplier
		offers   []supplier.Offer
		err      error
	}

	suppliers := s.connectors.Suppliers()
	runs := make([]supplierRun, len(suppliers))

	// Cache the in-flight snapshot before fanning out so the state is
	// observable by search id while suppliers are still answering.
	for _, sup := range suppliers {
		state.Suppliers[sup] = domain.SupplierSearchOutcome{Status: domain.SearchRunPending}
	}
	if err := s.cache.Put(ctx, searchID, state, s.searchTTL); err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	wg.Add(len(suppliers))
	for i, sup := range suppliers {
		go func(i int, sup domain.Supplier) {
			defer wg.Done()
			conn := s.connectors.Get(sup)
			offers, err := supplier.WithRetry(ctx, func(ctx context.Context) ([]supplier.Offer, error) {
				return conn.FetchAvailability(ctx, req)
			})
			runs[i] = supplierRun{supplier: sup, offers: offers, err: err}
		}(i, sup)
	}
	wg.Wait()

	for _, run := range runs {
		if run.err != nil {
			s.logger.Warn("supplier availability fetch failed",
				zap.String("supplier", string(run.supplier)),
				zap.Error(run.err))
			state.Suppliers[run.supplier] = domain.SupplierSearchOutcome{
				Status: domain.SearchRunFailed,
				Error:  run.err.Error(),
			}
			continue
		}

		cached := 0
		for _, offer := range run.offers {
			result := &domain.CachedAvailabilityResult{
				ResultID:         uuid.New(),
				Supplier:         run.supplier,
				AccommodationID:  offer.AccommodationID,
				MinPrice:         offer.MinPrice,
				MaxPrice:         offer.MaxPrice,
				CheckInDate:      req.CheckInDate,
				CheckOutDate:     req.CheckOutDate,
				RoomContractSets: offer.RoomContractSets,
				CreatedAt:        time.Now().UTC(),
			}
			if err := s.cache.PutResult(ctx, searchID, result, s.searchTTL); err != nil {
				s.logger.Warn("failed to cache availability result",
					zap.String("supplier", string(run.supplier)),
					zap.Error(err))
				continue
			}
			cached++
			state.Results = append(state.Results, domain.ResultSummary{
				ResultID:        result.ResultID,
				Supplier:        run.supplier,
				AccommodationID: result.AccommodationID,
				MinPrice:        result.MinPrice,
				MaxPrice:        result.MaxPrice,
			})
		}
		state.Suppliers[run.supplier] = domain.SupplierSearchOutcome{
			Status:      domain.SearchRunCompleted,
			ResultCount: cached,
		}
	}

	if err := s.cache.Put(ctx, searchID, state, s.searchTTL); err != nil {
		return nil, err
	}

	s.logger.Info("availability search completed",
		zap.String("search_id", searchID.String()),
		zap.Int("results", len(state.Results)),
		zap.Int("suppliers", len(suppliers)))
	return state, nil
}

func (s *SearchService) State(ctx context.Context, searchID uuid.UUID) (*domain.SearchState, bool) {
	return s.cache.Get(ctx, searchID)
}

// Evaluate prices one room contract set for booking: supplier currency in,
// platform currency plus markup out, cached under the triple key with its
// own TTL.
func (s *SearchService) Evaluate(ctx context.Context, searchID, resultID, roomContractSetID uuid.UUID) (*domain.BookingEvaluationRecord, error) {
	if record, found := s.cache.GetEvaluation(ctx, searchID, resultID, roomContractSetID); found {
		return record, nil
	}

	result, found := s.cache.GetResult(ctx, searchID, resultID)
	if !found {
		return nil, ErrResultExpired
	}

	var set *domain.RoomContractSet
	for i := range result.RoomContractSets {
		if result.RoomContractSets[i].ID == roomContractSetID {
			set = &result.RoomContractSets[i]
			break
		}
	}
	if set == nil {
		return nil, ErrRoomContractSetNotFound
	}

	converted, err := pricing.Convert(ctx, s.pricing, *set, roomContractSetCurrency, mutateRoomContractSet)
	if err != nil {
		return nil, err
	}
	priced := mutateRoomContractSet(converted, s.markup.Apply)

	record := &domain.BookingEvaluationRecord{
		SearchID:          searchID,
		ResultID:          resultID,
		RoomContractSetID: roomContractSetID,
		Supplier:          result.Supplier,
		AccommodationID:   result.AccommodationID,
		CheckInDate:       result.CheckInDate,
		CheckOutDate:      result.CheckOutDate,
		RoomContractSet:   priced,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.cache.PutEvaluation(ctx, record, s.evaluationTTL); err != nil {
		return nil, err
	}
	return record, nil
}

func roomContractSetCurrency(set domain.RoomContractSet) domain.Currency {
	return set.Rate.Currency
}

// mutateRoomContractSet applies f to every price the set exposes without
// touching the original (cached snapshots stay immutable).
func mutateRoomContractSet(set domain.RoomContractSet, f func(domain.Price) domain.Price) domain.RoomContractSet {
	out := set
	out.Rate = f(set.Rate)
	out.Rooms = make([]domain.RoomContract, len(set.Rooms))
	for i, room := range set.Rooms {
		room.Gross = f(room.Gross)
		room.Discount = f(room.Discount)
		room.Final = f(room.Final)
		out.Rooms[i] = room
	}
	return out
}

var _ SearchUseCase = (*SearchService)(nil)
