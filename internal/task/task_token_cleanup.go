package task

import (
	"context"
	"time"

	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/pkg/logger"

	"go.uber.org/zap"
)

// TokenCleaner 清理过期刷新令牌
type TokenCleaner interface {
	CleanupTokens(ctx context.Context) (int64, error)
}

// TokenCleanupTask 定期删除过期的刷新令牌
type TokenCleanupTask struct {
	cleaner  TokenCleaner
	interval time.Duration
	logger   *zap.Logger
}

// Name 返回任务名称
func (t *TokenCleanupTask) Name() string {
	return "TokenCleanup"
}

// LoopInterval 返回执行间隔
func (t *TokenCleanupTask) LoopInterval() time.Duration {
	return t.interval
}

// IsStartupRun 是否立即执行一次
func (t *TokenCleanupTask) IsStartupRun() bool {
	return false
}

// Run 执行清理
func (t *TokenCleanupTask) Run(ctx context.Context) error {
	n, err := t.cleaner.CleanupTokens(ctx)
	if err != nil {
		return err
	}
	t.logger.Info("task log",
		zap.String(logger.FieldTask, t.Name()),
		zap.Int64(logger.FieldCount, n))
	return nil
}

// NewTokenCleanupTask 创建令牌清理任务，间隔为 0 时返回 nil 表示关闭
func NewTokenCleanupTask(cleaner TokenCleaner, interval time.Duration, lg *zap.Logger) Task {
	if interval <= 0 {
		return nil
	}
	return &TokenCleanupTask{cleaner: cleaner, interval: interval, logger: lg}
}

func init() {
	Register(func(a *app.App) (Task, error) {
		return NewTokenCleanupTask(a.UserService, a.Config().GetTokenCleanupInterval(), a.Logger()), nil
	})
}
