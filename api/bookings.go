package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/repository"
	bookingsvc "github.com/verastro/roombroker/internal/service/booking"
	"github.com/verastro/roombroker/internal/service/search"
	"github.com/verastro/roombroker/internal/supplier"
)

type BookingHandler struct {
	bookings     bookingsvc.BookingUseCase
	availability search.SearchUseCase
}

type registerBookingRequest struct {
	SearchID          string `json:"search_id"`
	ResultID          string `json:"result_id"`
	RoomContractSetID string `json:"room_contract_set_id"`
	UpdateMode        string `json:"update_mode"`
}

type bookingResponse struct {
	ReferenceCode string       `json:"reference_code"`
	Status        string       `json:"status"`
	Supplier      string       `json:"supplier"`
	CheckInDate   string       `json:"check_in_date"`
	CheckOutDate  string       `json:"check_out_date"`
	Total         domain.Price `json:"total"`
}

type supplierCallbackRequest struct {
	ReferenceCode     string       `json:"reference_code"`
	SupplierReference string       `json:"supplier_reference"`
	Status            string       `json:"status"`
	Price             domain.Price `json:"price"`
}

func NewBookingHandler(bookings bookingsvc.BookingUseCase, availability search.SearchUseCase) *BookingHandler {
	return &BookingHandler{bookings: bookings, availability: availability}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.DELETE("/:referenceCode", h.cancel)
	router.POST("/:referenceCode/refresh", h.refresh)
	router.GET("/:referenceCode/events", h.events)
}

// RegisterCallbacks mounts the supplier-pushed response webhook.
func (h *BookingHandler) RegisterCallbacks(router *gin.RouterGroup) {
	router.POST("/:supplier", h.supplierCallback)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req registerBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	searchID, err := uuid.Parse(req.SearchID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid search_id"})
		return
	}
	resultID, err := uuid.Parse(req.ResultID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result_id"})
		return
	}
	setID, err := uuid.Parse(req.RoomContractSetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room_contract_set_id"})
		return
	}

	evaluation, err := h.availability.Evaluate(c.Request.Context(), searchID, resultID, setID)
	if err != nil {
		if errors.Is(err, search.ErrResultExpired) {
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.bookings.Register(c.Request.Context(), bookingsvc.RegisterInput{
		Evaluation: evaluation,
		UpdateMode: domain.UpdateMode(req.UpdateMode),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	referenceCode := c.Param("referenceCode")
	actor := actorFrom(c)

	err := h.bookings.Cancel(c.Request.Context(), referenceCode, actor, c.Query("reason"))
	if err != nil {
		switch {
		case errors.Is(err, bookingsvc.ErrNotCancellable), errors.Is(err, bookingsvc.ErrCheckInStarted):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			if f, ok := supplier.AsFailure(err); ok {
				c.JSON(http.StatusBadGateway, gin.H{"error": f.Detail})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"reference_code": referenceCode, "status": "cancellation accepted"})
}

func (h *BookingHandler) refresh(c *gin.Context) {
	referenceCode := c.Param("referenceCode")

	err := h.bookings.RefreshStatus(c.Request.Context(), referenceCode, actorFrom(c), "manual status refresh")
	if err != nil {
		if f, ok := supplier.AsFailure(err); ok {
			c.JSON(http.StatusBadGateway, gin.H{"error": f.Detail})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reference_code": referenceCode, "status": "refreshed"})
}

func (h *BookingHandler) supplierCallback(c *gin.Context) {
	var req supplierCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details := &supplier.BookingDetails{
		ReferenceCode:     req.ReferenceCode,
		SupplierReference: req.SupplierReference,
		Supplier:          domain.Supplier(c.Param("supplier")),
		Status:            domain.BookingStatus(req.Status),
		Price:             req.Price,
		UpdatedAt:         time.Now().UTC(),
	}

	if err := h.bookings.IngestResponse(c.Request.Context(), details, "supplier-callback", "supplier pushed response"); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reference_code": req.ReferenceCode, "status": "accepted"})
}

type statusEventResponse struct {
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status"`
	Actor     string    `json:"actor"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *BookingHandler) events(c *gin.Context) {
	referenceCode := c.Param("referenceCode")

	history, err := h.bookings.StatusHistory(c.Request.Context(), referenceCode)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]statusEventResponse, 0, len(history))
	for _, event := range history {
		out = append(out, statusEventResponse{
			OldStatus: string(event.OldStatus),
			NewStatus: string(event.NewStatus),
			Actor:     event.Actor,
			Reason:    event.Reason,
			CreatedAt: event.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"reference_code": referenceCode, "events": out})
}

func actorFrom(c *gin.Context) string {
	if actor := c.GetHeader("X-Actor"); actor != "" {
		return actor
	}
	return "api"
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ReferenceCode: b.ReferenceCode,
		Status:        string(b.Status),
		Supplier:      string(b.Supplier),
		CheckInDate:   b.CheckInDate.Format(time.DateOnly),
		CheckOutDate:  b.CheckOutDate.Format(time.DateOnly),
		Total:         b.Total,
	}
}
