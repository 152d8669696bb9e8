package service

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// retrier 对基础设施错误做有限次线性退避重试
type retrier struct {
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
}

func newRetrier(cfg PoolServiceConfig, lg *zap.Logger) *retrier {
	return &retrier{attempts: cfg.RetryAttempts, backoff: cfg.RetryBackoff, logger: lg}
}

// retryable 未找到、并发冲突、守卫拒绝和取消都不重试
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrPoolConflict) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if _, ok := domain.AsRejection(err); ok {
		return false
	}
	return true
}

func withRetry[T any](ctx context.Context, r *retrier, method string, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	for attempt := 1; attempt <= r.attempts; attempt++ {
		out, err = fn()
		if !retryable(err) || attempt == r.attempts {
			return out, err
		}
		r.logger.Warn("retrying after infrastructure error",
			zap.String(logger.FieldMethod, method),
			zap.Int(logger.FieldAttempt, attempt),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return out, err
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}
	return out, err
}
