// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haierkeys/campus-share-service/internal/dao"
	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/service"
	pkgapp "github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/workerpool"
	"github.com/haierkeys/campus-share-service/pkg/writequeue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao
	Clock  domain.Clock

	// 并发控制组件
	workerPool    *workerpool.Pool
	writeQueueMgr *writequeue.Manager

	// Repository 层
	RideRepo      domain.RideRepository
	FoodOrderRepo domain.FoodOrderRepository
	UserRepo      domain.UserRepository
	UserTokenRepo domain.UserTokenRepository

	// Service 层
	Directory        *service.UserDirectory
	RideService      service.RideService
	FoodOrderService service.FoodOrderService
	UserService      service.UserService

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	startedAt time.Time

	// 关闭控制
	shutdownCh chan struct{}
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		Clock:      domain.SystemClock,
		startedAt:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 Write Queue Manager，同一拼车或拼单的写操作串行执行
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	// 初始化 DAO（使用依赖注入）
	dbConfig := cfg.GetDatabaseConfig()
	a.Dao = dao.New(db, context.Background(),
		dao.WithConfig(&dbConfig),
		dao.WithLogger(logger),
		dao.WithWriteQueueManager(a.writeQueueMgr),
	)

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey:     cfg.Security.AuthTokenKey,
		Issuer:        pkgapp.DefaultTokenIssuer,
		Expiry:        cfg.GetTokenExpiry(),
		RefreshExpiry: cfg.GetRefreshTokenExpiry(),
	})

	// 初始化 Repository 层
	a.RideRepo = dao.NewRideRepository(a.Dao)
	a.FoodOrderRepo = dao.NewFoodOrderRepository(a.Dao)
	a.UserRepo = dao.NewUserRepository(a.Dao)
	a.UserTokenRepo = dao.NewUserTokenRepository(a.Dao)

	svcConfig := cfg.GetServiceConfig()

	directory, err := service.NewUserDirectory(a.UserRepo, svcConfig.User.DirectoryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("user directory: %w", err)
	}
	a.Directory = directory

	// 初始化 Service 层（依赖注入）
	a.RideService = service.NewRideService(a.RideRepo, a.Directory, a.Clock, logger, svcConfig)
	a.FoodOrderService = service.NewFoodOrderService(a.FoodOrderRepo, a.Directory, a.Clock, logger, svcConfig)
	a.UserService = service.NewUserService(a.UserRepo, a.UserTokenRepo, a.TokenManager, a.Directory, a.Clock, logger, svcConfig)

	logger.Info("App container initialized successfully",
		zap.String("database", dbConfig.Type),
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// Uptime 服务已运行时长
func (a *App) Uptime() time.Duration {
	return time.Since(a.startedAt)
}

// Ping 检查数据库连通性
func (a *App) Ping(ctx context.Context) error {
	return a.Dao.Ping(ctx)
}

// Sweepers 返回所有需要定期清扫过期状态的服务
func (a *App) Sweepers() []service.Sweeper {
	return []service.Sweeper{a.RideService, a.FoodOrderService}
}

// WorkerPool 获取 Worker Pool（用于高级操作）
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器，依次关闭 Worker Pool、写队列与数据库
// 重复调用直接返回；ctx 为 nil 时使用默认超时
func (a *App) Shutdown(ctx context.Context) error {
	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	a.logger.Info("App container shutting down...")

	steps := []struct {
		name string
		run  func() error
	}{
		{"worker pool", func() error { return a.workerPool.Shutdown(ctx) }},
		{"write queue", func() error { return a.writeQueueMgr.Shutdown(ctx) }},
		{"database", a.Close},
	}

	var errs []error
	for _, step := range steps {
		if err := step.run(); err != nil {
			a.logger.Warn("shutdown step failed", zap.String("step", step.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	a.logger.Info("App container shutdown completed")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}
