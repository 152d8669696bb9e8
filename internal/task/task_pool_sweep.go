package task

import (
	"context"
	"time"

	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/service"
	"github.com/haierkeys/campus-share-service/pkg/logger"

	"go.uber.org/zap"
)

// PoolSweepTask 定期把到期的拼车或拼单标记为过期
type PoolSweepTask struct {
	sweeper  service.Sweeper
	interval time.Duration
	cronSpec string
	logger   *zap.Logger
}

// NewPoolSweepTask 创建清扫任务
func NewPoolSweepTask(sweeper service.Sweeper, interval time.Duration, cronSpec string, lg *zap.Logger) *PoolSweepTask {
	return &PoolSweepTask{
		sweeper:  sweeper,
		interval: interval,
		cronSpec: cronSpec,
		logger:   lg,
	}
}

// Name 返回任务名称
func (t *PoolSweepTask) Name() string {
	return "PoolSweep:" + t.sweeper.Kind().String()
}

// LoopInterval 返回执行间隔
func (t *PoolSweepTask) LoopInterval() time.Duration {
	return t.interval
}

// CronSpec 返回 cron 表达式
func (t *PoolSweepTask) CronSpec() string {
	return t.cronSpec
}

// IsStartupRun 启动时先清扫一次
func (t *PoolSweepTask) IsStartupRun() bool {
	return true
}

// Run 执行清扫
func (t *PoolSweepTask) Run(ctx context.Context) error {
	n, err := t.sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		t.logger.Info("task log",
			zap.String(logger.FieldTask, t.Name()),
			zap.String(logger.FieldKind, t.sweeper.Kind().String()),
			zap.Int64(logger.FieldCount, n))
	}
	return nil
}

func init() {
	for _, kind := range []string{"ride", "food"} {
		Register(func(a *app.App) (Task, error) {
			for _, s := range a.Sweepers() {
				if s.Kind().String() != kind {
					continue
				}
				cfg := a.Config()
				return NewPoolSweepTask(s, cfg.GetSweepInterval(kind), cfg.Sweep.Cron, a.Logger()), nil
			}
			return nil, nil
		})
	}
}
