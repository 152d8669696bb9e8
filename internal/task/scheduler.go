package task

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/campus-share-service/pkg/logger"
	"github.com/haierkeys/campus-share-service/pkg/safe_close"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	LoopInterval() time.Duration   // 执行间隔
	IsStartupRun() bool            // 是否立即执行一次
}

// CronTask 可选接口，CronSpec 非空时按 cron 表达式调度，忽略 LoopInterval
type CronTask interface {
	Task
	CronSpec() string
}

// Runner 任务执行器，通常是 Worker Pool
type Runner interface {
	Submit(ctx context.Context, fn func(context.Context) error) error
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
	runner Runner
	cron   *cron.Cron
}

// NewScheduler 创建任务调度器，runner 为 nil 时在调度协程内直接执行
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose, runner Runner) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
		runner: runner,
		cron:   cron.New(cron.WithLocation(time.UTC)),
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Tasks 返回已添加的任务
func (s *Scheduler) Tasks() []Task {
	return s.tasks
}

// Start 启动所有任务
func (s *Scheduler) Start() error {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return nil
	}

	s.logger.Info("tasks starting", zap.Int(logger.FieldCount, len(s.tasks)))

	useCron := false
	for _, task := range s.tasks {
		if ct, ok := task.(CronTask); ok && ct.CronSpec() != "" {
			if err := s.addCron(ct); err != nil {
				return err
			}
			useCron = true
			continue
		}
		s.startTask(task)
	}

	if useCron {
		s.cron.Start()
		s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			// 等待正在执行的 cron 任务结束
			<-s.cron.Stop().Done()
		})
	}
	return nil
}

// addCron 按 cron 表达式注册任务
func (s *Scheduler) addCron(task CronTask) error {
	if _, err := s.cron.AddFunc(task.CronSpec(), func() {
		ctx, cancel := s.runContext()
		defer cancel()
		s.execute(ctx, task, "cronRun")
	}); err != nil {
		return fmt.Errorf("task %s: invalid cron spec %q: %w", task.Name(), task.CronSpec(), err)
	}

	if task.IsStartupRun() {
		s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			ctx, cancel := s.runContext()
			defer cancel()
			s.execute(ctx, task, "startupRun")
		})
	}
	return nil
}

// startTask 启动单个任务
func (s *Scheduler) startTask(task Task) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			select {
			case <-closeSignal:
				cancel()
			case <-ctx.Done():
			}
		}()

		// 如果任务需要立即执行
		if task.IsStartupRun() {
			s.execute(ctx, task, "startupRun")
		}

		if task.LoopInterval() <= 0 {
			return
		}

		ticker := time.NewTicker(task.LoopInterval())
		defer ticker.Stop()

		// 定时执行
		for {
			select {
			case <-ticker.C:
				s.execute(ctx, task, "loopRun")
			case <-closeSignal:
				s.logger.Info("task stopped", zap.String(logger.FieldTask, task.Name()))
				return
			}
		}
	})
}

// runContext 返回在关闭信号到达时取消的上下文
func (s *Scheduler) runContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-s.sc.CloseSignal():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// execute 执行一次任务，panic 会被捕获并记录
func (s *Scheduler) execute(ctx context.Context, task Task, mode string) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	run := func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("task panic",
					zap.String(logger.FieldTask, task.Name()),
					zap.String("mode", mode),
					zap.Any("panic", r),
					zap.Stack("stack"))
				err = fmt.Errorf("task %s panic: %v", task.Name(), r)
			}
		}()
		return task.Run(ctx)
	}

	var err error
	if s.runner != nil {
		err = s.runner.Submit(ctx, run)
	} else {
		err = run(ctx)
	}

	if err != nil {
		s.logger.Error("task running error",
			zap.String(logger.FieldTask, task.Name()),
			zap.String("mode", mode),
			zap.Duration(logger.FieldDuration, time.Since(start)),
			zap.Error(err))
		return
	}
	s.logger.Debug("task finished",
		zap.String(logger.FieldTask, task.Name()),
		zap.String("mode", mode),
		zap.Duration(logger.FieldDuration, time.Since(start)))
}
