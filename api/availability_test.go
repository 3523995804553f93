package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/service/search"
	"github.com/verastro/roombroker/internal/supplier"
)

// MockSearchUseCase is a mock implementation of search.SearchUseCase.
type MockSearchUseCase struct {
	mock.Mock
}

func (m *MockSearchUseCase) Search(ctx context.Context, req supplier.AvailabilityRequest) (*domain.SearchState, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchState), args.Error(1)
}

func (m *MockSearchUseCase) State(ctx context.Context, searchID uuid.UUID) (*domain.SearchState, bool) {
	args := m.Called(ctx, searchID)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.SearchState), args.Bool(1)
}

func (m *MockSearchUseCase) Evaluate(ctx context.Context, searchID, resultID, roomContractSetID uuid.UUID) (*domain.BookingEvaluationRecord, error) {
	args := m.Called(ctx, searchID, resultID, roomContractSetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingEvaluationRecord), args.Error(1)
}

func newAvailabilityRouter(service *MockSearchUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewAvailabilityHandler(service).Register(router.Group("/v1/searches"))
	return router
}

func TestAvailabilityHandler_Search(t *testing.T) {
	service := &MockSearchUseCase{}
	router := newAvailabilityRouter(service)

	state := domain.NewSearchState(uuid.New())
	service.On("Search", mock.Anything, mock.MatchedBy(func(req supplier.AvailabilityRequest) bool {
		return req.Location == "Dubai" && len(req.Rooms) == 1
	})).Return(state, nil).Once()

	body, _ := json.Marshal(searchRequest{
		Location:     "Dubai",
		CheckInDate:  "2026-10-01",
		CheckOutDate: "2026-10-04",
		Rooms:        []domain.Occupancy{{Adults: 2}},
		Language:     "en",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/searches/", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), state.SearchID.String())
	service.AssertExpectations(t)
}

func TestAvailabilityHandler_Search_RejectsBadDates(t *testing.T) {
	service := &MockSearchUseCase{}
	router := newAvailabilityRouter(service)

	tests := []struct {
		name string
		req  searchRequest
	}{
		{
			name: "malformed check-in",
			req:  searchRequest{CheckInDate: "01.10.2026", CheckOutDate: "2026-10-04", Rooms: []domain.Occupancy{{Adults: 2}}},
		},
		{
			name: "check-out before check-in",
			req:  searchRequest{CheckInDate: "2026-10-04", CheckOutDate: "2026-10-01", Rooms: []domain.Occupancy{{Adults: 2}}},
		},
		{
			name: "no rooms",
			req:  searchRequest{CheckInDate: "2026-10-01", CheckOutDate: "2026-10-04"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.req)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/searches/", bytes.NewReader(body))
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	service.AssertNotCalled(t, "Search")
}

func TestAvailabilityHandler_State_NotFound(t *testing.T) {
	service := &MockSearchUseCase{}
	router := newAvailabilityRouter(service)

	searchID := uuid.New()
	service.On("State", mock.Anything, searchID).Return(nil, false).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/searches/"+searchID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvailabilityHandler_Evaluate(t *testing.T) {
	searchID, resultID, setID := uuid.New(), uuid.New(), uuid.New()
	evalPath := "/v1/searches/" + searchID.String() + "/results/" + resultID.String() + "/room-contract-sets/" + setID.String()

	t.Run("ok", func(t *testing.T) {
		service := &MockSearchUseCase{}
		router := newAvailabilityRouter(service)

		record := &domain.BookingEvaluationRecord{
			SearchID:          searchID,
			ResultID:          resultID,
			RoomContractSetID: setID,
			RoomContractSet:   domain.RoomContractSet{ID: setID, Rate: domain.Price{Amount: 132, Currency: domain.CurrencyUSD}},
		}
		service.On("Evaluate", mock.Anything, searchID, resultID, setID).Return(record, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, evalPath, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		service.AssertExpectations(t)
	})

	t.Run("expired search is gone", func(t *testing.T) {
		service := &MockSearchUseCase{}
		router := newAvailabilityRouter(service)

		service.On("Evaluate", mock.Anything, searchID, resultID, setID).Return(nil, search.ErrResultExpired).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, evalPath, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("unknown room contract set", func(t *testing.T) {
		service := &MockSearchUseCase{}
		router := newAvailabilityRouter(service)

		service.On("Evaluate", mock.Anything, searchID, resultID, setID).Return(nil, search.ErrRoomContractSetNotFound).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, evalPath, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
