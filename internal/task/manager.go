package task

import (
	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/pkg/safe_close"

	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器，任务通过应用的 Worker Pool 执行
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, appContainer *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc, appContainer.WorkerPool()),
		logger:    logger,
		app:       appContainer,
	}
}

// RegisterTasks 通过注册表创建所有任务
func (m *Manager) RegisterTasks() error {
	for _, factory := range GetFactories() {
		t, err := factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.Error(err))
			return err
		}
		if t == nil {
			continue
		}
		m.scheduler.AddTask(t)
		m.logger.Info("task registered",
			zap.String("name", t.Name()),
			zap.Duration("interval", t.LoopInterval()))
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() error {
	return m.scheduler.Start()
}
