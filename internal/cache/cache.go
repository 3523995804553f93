package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tier is the minimal cache capability shared by the in-process and the
// network-backed flavors. Values are JSON-encoded by the implementation.
// A miss is (false, nil): not finding a key is a normal outcome.
type Tier interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	TryGet(ctx context.Context, key string, dest any) (bool, error)
}

// Key builders. "/" cannot appear in the text form of a UUID, so distinct
// identifier tuples can never collide.

func SearchKey(searchID uuid.UUID) string {
	return "availability:search:" + searchID.String()
}

func ResultKey(searchID, resultID uuid.UUID) string {
	return fmt.Sprintf("availability:result:%s/%s", searchID, resultID)
}

func EvaluationKey(searchID, resultID, roomContractSetID uuid.UUID) string {
	return fmt.Sprintf("availability:evaluation:%s/%s/%s", searchID, resultID, roomContractSetID)
}

func RateKey(from, to string) string {
	return fmt.Sprintf("rates:%s:%s", from, to)
}
