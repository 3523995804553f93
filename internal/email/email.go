package email

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verastro/roombroker/internal/domain"
	"github.com/verastro/roombroker/internal/kafka"
)

// Sender turns booking status events into guest-facing notification mail.
// Delivery is stubbed to the log until the mail gateway is provisioned.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingStatusEvent) error {
	subject, ok := subjectFor(event.Status)
	if !ok {
		// Intermediate statuses do not warrant guest mail.
		return nil
	}

	s.logger.Info("booking notification",
		zap.String("reference_code", event.ReferenceCode),
		zap.String("subject", subject),
		zap.String("supplier", string(event.Supplier)),
		zap.String("status", string(event.Status)),
		zap.String("check_in", event.CheckInDate.Format(time.DateOnly)),
	)
	return nil
}

func subjectFor(status domain.BookingStatus) (string, bool) {
	switch status {
	case domain.BookingStatusConfirmed:
		return "Your booking is confirmed", true
	case domain.BookingStatusCancelled:
		return "Your booking has been cancelled", true
	case domain.BookingStatusRejected, domain.BookingStatusFailed:
		return fmt.Sprintf("Your booking could not be completed (%s)", status), true
	default:
		return "", false
	}
}
