package supplier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verastro/roombroker/internal/domain"
)

func TestWithRetry_TransientRetried(t *testing.T) {
	calls := 0
	result, err := WithRetry(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", &Failure{Supplier: domain.SupplierNetstorming, Op: "FetchAvailability", Kind: KindTransient, Detail: "timeout"}
		}
		return "ok", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_RejectionNotRetried(t *testing.T) {
	calls := 0
	rejection := &Failure{Supplier: domain.SupplierNetstorming, Op: "FetchAvailability", Kind: KindRejected, Detail: "no allotment"}

	_, err := WithRetry(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", rejection
	})

	assert.Equal(t, 1, calls)
	f, ok := AsFailure(err)
	assert.True(t, ok)
	assert.Equal(t, rejection, f)
}

func TestWithRetry_PlainErrorNotRetried(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	transient := &Failure{Supplier: domain.SupplierTravelgate, Op: "FetchBookingDetails", Kind: KindTransient, Detail: "503"}

	_, err := WithRetry(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, transient
	})

	assert.Equal(t, retryAttempts, calls)
	f, ok := AsFailure(err)
	assert.True(t, ok)
	assert.True(t, f.Transient())
}
