package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/verastro/roombroker/internal/domain"
)

// scriptedReader serves canned messages, then io.EOF.
type scriptedReader struct {
	messages []kafkaGo.Message
	closed   bool
}

func (r *scriptedReader) ReadMessage(context.Context) (kafkaGo.Message, error) {
	if len(r.messages) == 0 {
		return kafkaGo.Message{}, io.EOF
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *scriptedReader) Close() error {
	r.closed = true
	return nil
}

func supplierResponsePayload(t *testing.T, referenceCode string) []byte {
	t.Helper()
	data, err := json.Marshal(SupplierResponseEvent{
		ReferenceCode: referenceCode,
		Supplier:      domain.SupplierTravelgate,
		Status:        domain.BookingStatusConfirmed,
		ReceivedAt:    time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	})
	assert.NoError(t, err)
	return data
}

func TestConsumer_SupplierResponses_DeliveredTyped(t *testing.T) {
	reader := &scriptedReader{messages: []kafkaGo.Message{
		{Topic: "supplier-responses", Value: supplierResponsePayload(t, "RB-AAAA000001")},
		{Topic: "supplier-responses", Value: supplierResponsePayload(t, "RB-AAAA000002")},
	}}
	c := &Consumer{reader: reader, logger: zap.NewNop()}

	var seen []string
	err := c.ConsumeSupplierResponses(context.Background(), func(_ context.Context, event SupplierResponseEvent) error {
		seen = append(seen, event.ReferenceCode)
		assert.Equal(t, domain.BookingStatusConfirmed, event.Status)
		return nil
	})

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"RB-AAAA000001", "RB-AAAA000002"}, seen)
}

func TestConsumer_SupplierResponses_MalformedPayloadSkipped(t *testing.T) {
	reader := &scriptedReader{messages: []kafkaGo.Message{
		{Topic: "supplier-responses", Value: []byte("{not json")},
		{Topic: "supplier-responses", Value: supplierResponsePayload(t, "RB-AAAA000003")},
	}}
	c := &Consumer{reader: reader, logger: zap.NewNop()}

	var seen []string
	err := c.ConsumeSupplierResponses(context.Background(), func(_ context.Context, event SupplierResponseEvent) error {
		seen = append(seen, event.ReferenceCode)
		return nil
	})

	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"RB-AAAA000003"}, seen)
}

func TestConsumer_StatusEvents_HandlerErrorStopsLoop(t *testing.T) {
	payload, _ := json.Marshal(BookingStatusEvent{
		Type:          "booking_status_changed",
		ReferenceCode: "RB-AAAA000004",
		Status:        domain.BookingStatusCancelled,
	})
	reader := &scriptedReader{messages: []kafkaGo.Message{
		{Topic: "notifications", Value: payload},
		{Topic: "notifications", Value: payload},
	}}
	c := &Consumer{reader: reader, logger: zap.NewNop()}

	boom := errors.New("downstream unavailable")
	calls := 0
	err := c.ConsumeStatusEvents(context.Background(), func(context.Context, BookingStatusEvent) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Len(t, reader.messages, 1)
}

func TestConsumer_CloseIsNilSafe(t *testing.T) {
	var c *Consumer
	assert.NoError(t, c.Close())

	reader := &scriptedReader{}
	c = &Consumer{reader: reader, logger: zap.NewNop()}
	assert.NoError(t, c.Close())
	assert.True(t, reader.closed)
}
