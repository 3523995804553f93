package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/service/search"
	"github.com/verastro/roombroker/internal/supplier"
)

type AvailabilityHandler struct {
	service search.SearchUseCase
}

type searchRequest struct {
	Location     string             `json:"location"`
	CheckInDate  string             `json:"check_in_date"`
	CheckOutDate string             `json:"check_out_date"`
	Rooms        []domain.Occupancy `json:"rooms"`
	Language     string             `json:"language"`
}

func NewAvailabilityHandler(service search.SearchUseCase) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

func (h *AvailabilityHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.search)
	router.GET("/:searchId", h.state)
	router.GET("/:searchId/results/:resultId/room-contract-sets/:setId", h.evaluate)
}

func (h *AvailabilityHandler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkIn, err := time.Parse(time.DateOnly, req.CheckInDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in_date, expected YYYY-MM-DD"})
		return
	}
	checkOut, err := time.Parse(time.DateOnly, req.CheckOutDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out_date, expected YYYY-MM-DD"})
		return
	}
	if !checkIn.Before(checkOut) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "check_out_date must be after check_in_date"})
		return
	}
	if len(req.Rooms) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one room is required"})
		return
	}

	state, err := h.service.Search(c.Request.Context(), supplier.AvailabilityRequest{
		Location:     req.Location,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Rooms:        req.Rooms,
		Language:     req.Language,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, state)
}

func (h *AvailabilityHandler) state(c *gin.Context) {
	searchID, err := uuid.Parse(c.Param("searchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid search id"})
		return
	}

	state, found := h.service.State(c.Request.Context(), searchID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "search not found or expired"})
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *AvailabilityHandler) evaluate(c *gin.Context) {
	searchID, err := uuid.Parse(c.Param("searchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid search id"})
		return
	}
	resultID, err := uuid.Parse(c.Param("resultId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result id"})
		return
	}
	setID, err := uuid.Parse(c.Param("setId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room contract set id"})
		return
	}

	record, err := h.service.Evaluate(c.Request.Context(), searchID, resultID, setID)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrResultExpired):
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		case errors.Is(err, search.ErrRoomContractSetNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, record)
}
