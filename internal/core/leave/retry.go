package leave

import (
	"context"
	"time"

	"github.com/ogurasousui/codex-grpc-hr-core/internal/core/apperr"
)

const (
	defaultMaxRetries     = 3
	defaultRetryBackoff   = 50 * time.Millisecond
	maxRetryBackoffFactor = 16
)

// RetryPolicy は ErrConflict 発生時の再試行方針です。
// 再試行のたびにトランザクション全体をやり直します。
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.Backoff <= 0 {
		p.Backoff = defaultRetryBackoff
	}
	return p
}

// DefaultRetryPolicy は既定の再試行方針を返します。
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: defaultMaxRetries, Backoff: defaultRetryBackoff}
}

type sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withRetry は fn を実行し、ErrConflict の場合のみ指数バックオフで再実行します。
func withRetry(ctx context.Context, policy RetryPolicy, sleep sleeper, onRetry func(attempt int, err error), fn func() error) error {
	backoff := policy.Backoff
	limit := policy.Backoff * maxRetryBackoffFactor

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !apperr.IsRetryable(err) || attempt >= policy.MaxRetries {
			return err
		}
		if onRetry != nil {
			onRetry(attempt+1, err)
		}
		if sleepErr := sleep(ctx, backoff); sleepErr != nil {
			return apperr.Wrap(apperr.ErrStorageUnavailable, "leave: retry aborted", sleepErr)
		}
		if backoff < limit {
			backoff *= 2
		}
	}
}
