package supplier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/verastro/roombroker/internal/domain"
)

func TestHTTPConnector_FetchAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/availability", r.URL.Path)

		var req AvailabilityRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "DXB", req.Location)

		_ = json.NewEncoder(w).Encode([]Offer{
			{
				AccommodationID: "acc-7",
				MinPrice:        domain.Price{Amount: 90, Currency: domain.CurrencyEUR},
				MaxPrice:        domain.Price{Amount: 240, Currency: domain.CurrencyEUR},
			},
		})
	}))
	defer srv.Close()

	conn := NewHTTPConnector(domain.SupplierNetstorming, srv.URL, 5*time.Second)
	offers, err := conn.FetchAvailability(context.Background(), AvailabilityRequest{
		Location:     "DXB",
		CheckInDate:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
		Rooms:        []domain.Occupancy{{Adults: 2}},
	})

	assert.NoError(t, err)
	assert.Len(t, offers, 1)
	assert.Equal(t, "acc-7", offers[0].AccommodationID)
}

func TestHTTPConnector_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	conn := NewHTTPConnector(domain.SupplierNetstorming, srv.URL, 5*time.Second)
	_, err := conn.FetchAvailability(context.Background(), AvailabilityRequest{})

	f, ok := AsFailure(err)
	assert.True(t, ok)
	assert.True(t, f.Transient())
	assert.Contains(t, f.Detail, "gateway busy")
}

func TestHTTPConnector_ClientErrorIsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "booking already cancelled", http.StatusConflict)
	}))
	defer srv.Close()

	conn := NewHTTPConnector(domain.SupplierTravelgate, srv.URL, 5*time.Second)
	err := conn.CancelBooking(context.Background(), "RB-123")

	f, ok := AsFailure(err)
	assert.True(t, ok)
	assert.Equal(t, KindRejected, f.Kind)
	assert.False(t, f.Transient())
	assert.Contains(t, f.Detail, "booking already cancelled")
}

func TestHTTPConnector_FetchBookingDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookings/RB-42", r.URL.Path)
		assert.Equal(t, "en", r.URL.Query().Get("language"))

		_ = json.NewEncoder(w).Encode(BookingDetails{
			ReferenceCode:     "RB-42",
			SupplierReference: "NS-991",
			Status:            domain.BookingStatusConfirmed,
		})
	}))
	defer srv.Close()

	conn := NewHTTPConnector(domain.SupplierNetstorming, srv.URL, 5*time.Second)
	details, err := conn.FetchBookingDetails(context.Background(), "RB-42", "en")

	assert.NoError(t, err)
	assert.Equal(t, "NS-991", details.SupplierReference)
	assert.Equal(t, domain.BookingStatusConfirmed, details.Status)
	// The connector stamps its own supplier identity on the details.
	assert.Equal(t, domain.SupplierNetstorming, details.Supplier)
}
