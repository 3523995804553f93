package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/verastro/roombroker/internal/domain"
)

// HTTPConnector talks JSON over HTTP to one supplier gateway. Timeouts and
// 5xx responses are classified transient; any 4xx is a supplier rejection
// with the response body as the detail.
type HTTPConnector struct {
	supplier   domain.Supplier
	baseURL    string
	httpClient *http.Client
}

func NewHTTPConnector(supplier domain.Supplier, baseURL string, timeout time.Duration) *HTTPConnector {
	return &HTTPConnector{
		supplier: supplier,
		baseURL:  baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPConnector) FetchAvailability(ctx context.Context, req AvailabilityRequest) ([]Offer, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode availability request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/availability", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build availability request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var offers []Offer
	if err := c.do(httpReq, "FetchAvailability", &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (c *HTTPConnector) FetchBookingDetails(ctx context.Context, referenceCode, languageCode string) (*BookingDetails, error) {
	u := fmt.Sprintf("%s/bookings/%s?language=%s", c.baseURL, url.PathEscape(referenceCode), url.QueryEscape(languageCode))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build booking details request: %w", err)
	}

	var details BookingDetails
	if err := c.do(httpReq, "FetchBookingDetails", &details); err != nil {
		return nil, err
	}
	details.Supplier = c.supplier
	return &details, nil
}

func (c *HTTPConnector) CancelBooking(ctx context.Context, referenceCode string) error {
	u := fmt.Sprintf("%s/bookings/%s/cancel", c.baseURL, url.PathEscape(referenceCode))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return fmt.Errorf("build cancel request: %w", err)
	}

	return c.do(httpReq, "CancelBooking", nil)
}

func (c *HTTPConnector) do(req *http.Request, op string, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Failure{Supplier: c.supplier, Op: op, Kind: KindTransient, Detail: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(resp.Body)
		return &Failure{
			Supplier: c.supplier,
			Op:       op,
			Kind:     KindTransient,
			Detail:   fmt.Sprintf("supplier returned status %d: %s", resp.StatusCode, string(body)),
		}
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(resp.Body)
		return &Failure{
			Supplier: c.supplier,
			Op:       op,
			Kind:     KindRejected,
			Detail:   fmt.Sprintf("supplier returned status %d: %s", resp.StatusCode, string(body)),
		}
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &Failure{
			Supplier: c.supplier,
			Op:       op,
			Kind:     KindTransient,
			Detail:   fmt.Sprintf("failed to parse response: %v", err),
		}
	}
	return nil
}

var _ Connector = (*HTTPConnector)(nil)
