package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/kafka"
	"github.com/verastro/roombroker/internal/lock"
	"github.com/verastro/roombroker/internal/repository"
	"github.com/verastro/roombroker/internal/supplier"
)

// Guard failures: expected business outcomes, returned as plain typed errors
// and never logged at error level.
var (
	ErrNotCancellable = errors.New("only confirmed bookings can be cancelled")
	ErrCheckInStarted = errors.New("cancellation rejected: check-in date has arrived")
)

type BookingUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Booking, error)
	Cancel(ctx context.Context, referenceCode, actor, reason string) error
	RefreshStatus(ctx context.Context, referenceCode, actor, reason string) error
	IngestResponse(ctx context.Context, details *supplier.BookingDetails, actor, reason string) error
	StatusHistory(ctx context.Context, referenceCode string) ([]domain.StatusEvent, error)
}

// ConnectorRegistry is what the orchestrator needs from the supplier manager.
type ConnectorRegistry interface {
	Get(s domain.Supplier) supplier.Connector
}

// ResponseProcessor reconciles authoritative supplier state into the durable
// booking record. Persistence and event publishing live behind it.
type ResponseProcessor interface {
	ProcessResponse(ctx context.Context, details *supplier.BookingDetails, actor, reason string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Orchestrator drives the booking lifecycle. Every transition runs under the
// per-reference-code lock so two concurrent calls on the same booking cannot
// interleave.
type Orchestrator struct {
	bookings   repository.BookingRepository
	connectors ConnectorRegistry
	locker     lock.Locker
	processor  ResponseProcessor
	producer   Producer
	topic      string
	language   string
	logger     *zap.Logger
}

type OrchestratorOption func(*Orchestrator)

// WithLanguage sets the language code passed to supplier detail fetches.
func WithLanguage(language string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.language = language
	}
}

func NewOrchestrator(
	bookings repository.BookingRepository,
	connectors ConnectorRegistry,
	locker lock.Locker,
	processor ResponseProcessor,
	producer Producer,
	topic string,
	logger *zap.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		bookings:   bookings,
		connectors: connectors,
		locker:     locker,
		processor:  processor,
		producer:   producer,
		topic:      topic,
		language:   "en",
		logger:     logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type RegisterInput struct {
	Evaluation *domain.BookingEvaluationRecord
	UpdateMode domain.UpdateMode
}

// Register commits a cached booking evaluation into a durable booking.
func (o *Orchestrator) Register(ctx context.Context, input RegisterInput) (*domain.Booking, error) {
	if input.Evaluation == nil {
		return nil, errors.New("evaluation is required")
	}
	if input.UpdateMode == "" {
		input.UpdateMode = domain.UpdateModeSynchronous
	}

	booking := &domain.Booking{
		ReferenceCode:   newReferenceCode(),
		Status:          domain.BookingStatusCreated,
		Supplier:        input.Evaluation.Supplier,
		UpdateMode:      input.UpdateMode,
		AccommodationID: input.Evaluation.AccommodationID,
		CheckInDate:     input.Evaluation.CheckInDate,
		CheckOutDate:    input.Evaluation.CheckOutDate,
		Total:           input.Evaluation.RoomContractSet.Rate,
	}

	if err := o.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	o.publish(ctx, "booking_registered", "", booking)
	o.logger.Info("booking registered",
		zap.String("reference_code", booking.ReferenceCode),
		zap.String("supplier", string(booking.Supplier)),
		zap.String("update_mode", string(booking.UpdateMode)))
	return booking, nil
}

// Cancel moves a confirmed booking towards cancellation. Guards first, then
// the supplier call, then the local transition; a supplier failure leaves the
// status untouched. Synchronous-mode bookings are refreshed immediately to
// learn the supplier's final word; asynchronous ones wait for the callback.
func (o *Orchestrator) Cancel(ctx context.Context, referenceCode, actor, reason string) error {
	release, err := o.locker.Acquire(ctx, referenceCode)
	if err != nil {
		return err
	}
	defer release()

	booking, err := o.bookings.GetByReferenceCode(ctx, referenceCode)
	if err != nil {
		return err
	}

	if booking.Status == domain.BookingStatusCancelled {
		o.logger.Info("cancel ignored, booking already cancelled",
			zap.String("reference_code", referenceCode),
			zap.String("actor", actor))
		return nil
	}
	if booking.Status != domain.BookingStatusConfirmed {
		return ErrNotCancellable
	}
	if checkInStarted(time.Now(), booking.CheckInDate) {
		return ErrCheckInStarted
	}

	if err := o.connectors.Get(booking.Supplier).CancelBooking(ctx, referenceCode); err != nil {
		o.logger.Warn("supplier cancel failed, status unchanged",
			zap.String("reference_code", referenceCode),
			zap.String("supplier", string(booking.Supplier)),
			zap.Error(err))
		return err
	}

	updated, err := o.bookings.UpdateStatus(ctx, referenceCode, domain.BookingStatusPendingCancellation, actor, reason)
	if err != nil {
		return err
	}

	o.publish(ctx, "booking_cancellation_requested", booking.Status, updated)
	o.logger.Info("booking status changed",
		zap.String("reference_code", referenceCode),
		zap.String("old_status", string(booking.Status)),
		zap.String("new_status", string(updated.Status)),
		zap.String("actor", actor),
		zap.String("reason", reason))

	if booking.UpdateMode == domain.UpdateModeSynchronous {
		return o.refreshLocked(ctx, updated, actor, "post-cancellation status refresh")
	}
	return nil
}

// RefreshStatus asks the supplier for the booking's current state and
// reconciles it locally. A fetch failure leaves the status untouched.
func (o *Orchestrator) RefreshStatus(ctx context.Context, referenceCode, actor, reason string) error {
	release, err := o.locker.Acquire(ctx, referenceCode)
	if err != nil {
		return err
	}
	defer release()

	booking, err := o.bookings.GetByReferenceCode(ctx, referenceCode)
	if err != nil {
		return err
	}
	return o.refreshLocked(ctx, booking, actor, reason)
}

// refreshLocked runs under the caller-held entity lock.
func (o *Orchestrator) refreshLocked(ctx context.Context, booking *domain.Booking, actor, reason string) error {
	conn := o.connectors.Get(booking.Supplier)

	details, err := supplier.WithRetry(ctx, func(ctx context.Context) (*supplier.BookingDetails, error) {
		return conn.FetchBookingDetails(ctx, booking.ReferenceCode, o.language)
	})
	if err != nil {
		o.logger.Warn("booking details fetch failed, status untouched",
			zap.String("reference_code", booking.ReferenceCode),
			zap.String("supplier", string(booking.Supplier)),
			zap.Error(err))
		return err
	}

	if err := o.processor.ProcessResponse(ctx, details, actor, reason); err != nil {
		o.logger.Error("supplier response processing failed",
			zap.String("reference_code", booking.ReferenceCode),
			zap.Error(err))
		return err
	}
	return nil
}

// IngestResponse feeds a supplier-pushed callback through the same
// reconciliation path as an explicit refresh.
func (o *Orchestrator) IngestResponse(ctx context.Context, details *supplier.BookingDetails, actor, reason string) error {
	release, err := o.locker.Acquire(ctx, details.ReferenceCode)
	if err != nil {
		return err
	}
	defer release()

	if err := o.processor.ProcessResponse(ctx, details, actor, reason); err != nil {
		o.logger.Error("supplier callback processing failed",
			zap.String("reference_code", details.ReferenceCode),
			zap.Error(err))
		return err
	}
	return nil
}

// StatusHistory returns the booking's audit trail, oldest first.
func (o *Orchestrator) StatusHistory(ctx context.Context, referenceCode string) ([]domain.StatusEvent, error) {
	if _, err := o.bookings.GetByReferenceCode(ctx, referenceCode); err != nil {
		return nil, err
	}
	return o.bookings.ListStatusEvents(ctx, referenceCode)
}

func (o *Orchestrator) publish(ctx context.Context, eventType string, oldStatus domain.BookingStatus, booking *domain.Booking) {
	if o.producer == nil || o.topic == "" {
		return
	}
	event := kafka.BookingStatusEvent{
		Type:          eventType,
		ReferenceCode: booking.ReferenceCode,
		Supplier:      booking.Supplier,
		OldStatus:     oldStatus,
		Status:        booking.Status,
		CheckInDate:   booking.CheckInDate,
		CheckOutDate:  booking.CheckOutDate,
		OccurredAt:    time.Now().UTC(),
	}
	if err := o.producer.Publish(ctx, o.topic, booking.ReferenceCode, event); err != nil {
		o.logger.Warn("failed to publish booking event",
			zap.String("reference_code", booking.ReferenceCode),
			zap.String("type", eventType),
			zap.Error(err))
	}
}

// checkInStarted compares calendar dates: cancelling on the check-in day
// itself is already too late.
func checkInStarted(now, checkIn time.Time) bool {
	ny, nm, nd := now.UTC().Date()
	cy, cm, cd := checkIn.UTC().Date()
	nowDate := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	checkInDate := time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC)
	return !nowDate.Before(checkInDate)
}

func newReferenceCode() string {
	return "RB-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

var _ BookingUseCase = (*Orchestrator)(nil)
