package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/repository"
	bookingsvc "github.com/verastro/roombroker/internal/service/booking"
	"github.com/verastro/roombroker/internal/supplier"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase.
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Register(ctx context.Context, input bookingsvc.RegisterInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, referenceCode, actor, reason string) error {
	args := m.Called(ctx, referenceCode, actor, reason)
	return args.Error(0)
}

func (m *MockBookingUseCase) RefreshStatus(ctx context.Context, referenceCode, actor, reason string) error {
	args := m.Called(ctx, referenceCode, actor, reason)
	return args.Error(0)
}

func (m *MockBookingUseCase) IngestResponse(ctx context.Context, details *supplier.BookingDetails, actor, reason string) error {
	args := m.Called(ctx, details, actor, reason)
	return args.Error(0)
}

func (m *MockBookingUseCase) StatusHistory(ctx context.Context, referenceCode string) ([]domain.StatusEvent, error) {
	args := m.Called(ctx, referenceCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusEvent), args.Error(1)
}

func newBookingRouter(service *MockBookingUseCase, availability *MockSearchUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewBookingHandler(service, availability)
	handler.Register(router.Group("/v1/bookings"))
	handler.RegisterCallbacks(router.Group("/v1/callbacks"))
	return router
}

func TestBookingHandler_Create(t *testing.T) {
	service := &MockBookingUseCase{}
	availability := &MockSearchUseCase{}
	router := newBookingRouter(service, availability)

	searchID, resultID, setID := uuid.New(), uuid.New(), uuid.New()
	evaluation := &domain.BookingEvaluationRecord{
		SearchID:          searchID,
		ResultID:          resultID,
		RoomContractSetID: setID,
		Supplier:          domain.SupplierNetstorming,
		RoomContractSet:   domain.RoomContractSet{ID: setID, Rate: domain.Price{Amount: 132, Currency: domain.CurrencyUSD}},
	}
	booking := &domain.Booking{
		ReferenceCode: "RB-ABCDEF0001",
		Status:        domain.BookingStatusCreated,
		Supplier:      domain.SupplierNetstorming,
		CheckInDate:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate:  time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
		Total:         domain.Price{Amount: 132, Currency: domain.CurrencyUSD},
	}

	availability.On("Evaluate", mock.Anything, searchID, resultID, setID).Return(evaluation, nil).Once()
	service.On("Register", mock.Anything, bookingsvc.RegisterInput{
		Evaluation: evaluation,
		UpdateMode: domain.UpdateModeSynchronous,
	}).Return(booking, nil).Once()

	body, _ := json.Marshal(registerBookingRequest{
		SearchID:          searchID.String(),
		ResultID:          resultID.String(),
		RoomContractSetID: setID.String(),
		UpdateMode:        string(domain.UpdateModeSynchronous),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp bookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RB-ABCDEF0001", resp.ReferenceCode)
	assert.Equal(t, string(domain.BookingStatusCreated), resp.Status)

	service.AssertExpectations(t)
	availability.AssertExpectations(t)
}

func TestBookingHandler_Cancel(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, &MockSearchUseCase{})

	service.On("Cancel", mock.Anything, "RB-ABCDEF0001", "ops@desk", "guest request").Return(nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/bookings/RB-ABCDEF0001?reason=guest+request", nil)
	req.Header.Set("X-Actor", "ops@desk")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}

func TestBookingHandler_Cancel_GuardFailureIsConflict(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, &MockSearchUseCase{})

	service.On("Cancel", mock.Anything, "RB-ABCDEF0001", "api", "").Return(bookingsvc.ErrCheckInStarted).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/bookings/RB-ABCDEF0001", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "check-in date")
}

func TestBookingHandler_Cancel_SupplierFailureIsBadGateway(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, &MockSearchUseCase{})

	failure := &supplier.Failure{
		Supplier: domain.SupplierNetstorming,
		Op:       "CancelBooking",
		Kind:     supplier.KindTransient,
		Detail:   "gateway timeout",
	}
	service.On("Cancel", mock.Anything, "RB-ABCDEF0001", "api", "").Return(failure).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/bookings/RB-ABCDEF0001", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "gateway timeout")
}

func TestBookingHandler_Events(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, &MockSearchUseCase{})

	history := []domain.StatusEvent{
		{ReferenceCode: "RB-ABCDEF0001", NewStatus: domain.BookingStatusCreated, Actor: "api"},
		{ReferenceCode: "RB-ABCDEF0001", OldStatus: domain.BookingStatusCreated, NewStatus: domain.BookingStatusConfirmed, Actor: "supplier", Reason: "confirmation"},
	}
	service.On("StatusHistory", mock.Anything, "RB-ABCDEF0001").Return(history, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/RB-ABCDEF0001/events", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ReferenceCode string                `json:"reference_code"`
		Events        []statusEventResponse `json:"events"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "RB-ABCDEF0001", resp.ReferenceCode)
	assert.Len(t, resp.Events, 2)
	assert.Equal(t, string(domain.BookingStatusConfirmed), resp.Events[1].NewStatus)
	assert.Equal(t, "supplier", resp.Events[1].Actor)
	service.AssertExpectations(t)
}

func TestBookingHandler_Events_UnknownBooking(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, &MockSearchUseCase{})

	service.On("StatusHistory", mock.Anything, "RB-MISSING001").Return(nil, repository.ErrBookingNotFound).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/RB-MISSING001/events", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_SupplierCallback(t *testing.T) {
	service := &MockBookingUseCase{}
	router := newBookingRouter(service, &MockSearchUseCase{})

	service.On("IngestResponse", mock.Anything, mock.MatchedBy(func(details *supplier.BookingDetails) bool {
		return details.ReferenceCode == "RB-ABCDEF0001" &&
			details.Supplier == domain.SupplierTravelgate &&
			details.Status == domain.BookingStatusCancelled
	}), "supplier-callback", "supplier pushed response").Return(nil).Once()

	body, _ := json.Marshal(supplierCallbackRequest{
		ReferenceCode:     "RB-ABCDEF0001",
		SupplierReference: "TG-555",
		Status:            string(domain.BookingStatusCancelled),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/callbacks/travelgate", bytes.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertExpectations(t)
}
