package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/sergiohdezchi/order-processing-service/internal/config"
)

// Do runs fn until it succeeds or the policy's attempts are spent, backing
// off exponentially with jitter between attempts. The last error is returned;
// a cancelled context wins over further attempts.
func Do(ctx context.Context, policy config.Retry, fn func() error) error {
	backoff := policy.Base
	var err error

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		delay := backoff
		if policy.JitterFactor > 0 {
			jitter := 1 + policy.JitterFactor*(2*r.Float64()-1)
			delay = time.Duration(float64(delay) * jitter)
		}
		if policy.Max > 0 && delay > policy.Max {
			delay = policy.Max
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		backoff *= 2
		if policy.Max > 0 && backoff > policy.Max {
			backoff = policy.Max
		}
	}
	return err
}
