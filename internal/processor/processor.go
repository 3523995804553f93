package processor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/kafka"
	"github.com/verastro/roombroker/internal/repository"
	"github.com/verastro/roombroker/internal/supplier"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Processor reconciles the supplier's authoritative booking state into the
// durable record: validates the transition, persists it with its audit row,
// creates the supplier order on confirmation and publishes the change.
type Processor struct {
	bookings           repository.BookingRepository
	producer           Producer
	topic              string
	notificationsTopic string
	logger             *zap.Logger
}

type Option func(*Processor)

// WithNotificationsTopic duplicates status events onto the guest
// notification topic consumed by the mail worker.
func WithNotificationsTopic(topic string) Option {
	return func(p *Processor) {
		p.notificationsTopic = topic
	}
}

func New(bookings repository.BookingRepository, producer Producer, topic string, logger *zap.Logger, opts ...Option) *Processor {
	p := &Processor{
		bookings: bookings,
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) ProcessResponse(ctx context.Context, details *supplier.BookingDetails, actor, reason string) error {
	booking, err := p.bookings.GetByReferenceCode(ctx, details.ReferenceCode)
	if err != nil {
		return err
	}

	next := details.Status
	if next == booking.Status {
		p.logger.Debug("supplier response carries no status change",
			zap.String("reference_code", booking.ReferenceCode),
			zap.String("status", string(next)))
		return nil
	}
	if !booking.Status.CanTransitionTo(next) {
		return fmt.Errorf("illegal status transition %s -> %s for booking %s",
			booking.Status, next, booking.ReferenceCode)
	}

	updated, err := p.bookings.UpdateStatus(ctx, booking.ReferenceCode, next, actor, reason)
	if err != nil {
		return err
	}

	if next == domain.BookingStatusConfirmed {
		price := details.Price
		if price.Amount == 0 {
			price = updated.Total
		}
		order := &domain.SupplierOrder{
			BookingReferenceCode: updated.ReferenceCode,
			Supplier:             updated.Supplier,
			Price:                price,
		}
		if err := p.bookings.CreateSupplierOrder(ctx, order); err != nil {
			return fmt.Errorf("create supplier order for %s: %w", updated.ReferenceCode, err)
		}
	}

	p.publish(ctx, booking.Status, updated)

	p.logger.Info("booking status reconciled from supplier response",
		zap.String("reference_code", updated.ReferenceCode),
		zap.String("old_status", string(booking.Status)),
		zap.String("new_status", string(updated.Status)),
		zap.String("actor", actor),
		zap.String("reason", reason))
	return nil
}

func (p *Processor) publish(ctx context.Context, oldStatus domain.BookingStatus, booking *domain.Booking) {
	if p.producer == nil {
		return
	}
	event := kafka.BookingStatusEvent{
		Type:          "booking_status_changed",
		ReferenceCode: booking.ReferenceCode,
		Supplier:      booking.Supplier,
		OldStatus:     oldStatus,
		Status:        booking.Status,
		CheckInDate:   booking.CheckInDate,
		CheckOutDate:  booking.CheckOutDate,
		OccurredAt:    booking.UpdatedAt,
	}
	for _, topic := range []string{p.topic, p.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := p.producer.Publish(ctx, topic, booking.ReferenceCode, event); err != nil {
			p.logger.Warn("failed to publish booking status event",
				zap.String("topic", topic),
				zap.String("reference_code", booking.ReferenceCode), zap.Error(err))
		}
	}
}
