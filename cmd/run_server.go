package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	internalApp "github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/routers"
	"github.com/haierkeys/campus-share-service/internal/task"
	"github.com/haierkeys/campus-share-service/pkg/safe_close"
	"github.com/haierkeys/campus-share-service/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultShutdownTimeout default shutdown timeout duration
// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

const banner = `
   ______                                   _____ __
  / ____/___ _____ ___  ____  __  _______  / ___// /_  ____ _________
 / /   / __ '/ __ '__ \/ __ \/ / / / ___/  \__ \/ __ \/ __ '/ ___/ _ \
/ /___/ /_/ / / / / / / /_/ / /_/ (__  )  ___/ / / / / /_/ / /  /  __/
\____/\__,_/_/ /_/ /_/ .___/\__,_/____/  /____/_/ /_/\__,_/_/   \___/
                    /_/                                               `

// Server 持有运行中的 HTTP 服务、应用容器与关闭协调器
type Server struct {
	logger *zap.Logger            // Logger // 日志对象
	config *internalApp.AppConfig // App configuration // 应用配置
	app    *internalApp.App       // App Container
	sc     *safe_close.SafeClose  // Shutdown coordinator // 关闭协调器
}

// warnDefaultSecret 使用内置或空的签名密钥时在控制台与日志中告警
func warnDefaultSecret(cfg *internalApp.AppConfig, lg *zap.Logger) {
	if key := cfg.Security.AuthTokenKey; key != "" && key != defaultAuthTokenKey {
		return
	}
	line := strings.Repeat("=", 60)
	fmt.Printf("\n%s\nSECURITY WARNING: Using default secret key!\n\n"+
		"Please modify 'security.auth-token-key' in config.yaml\nor set CAMPUS_SECURITY_AUTH_TOKEN_KEY.\n%s\n\n", line, line)
	lg.Warn("Using default secret key - please change security.auth-token-key in config.yaml")
}

// NewServer loads the runtime, starts the HTTP listeners and the scheduler
// NewServer 加载运行环境，启动 HTTP 监听与调度器
func NewServer(runEnv *runFlags) (*Server, error) {
	cfg, lg, db, err := loadRuntime(runEnv.config)
	if err != nil {
		return nil, err
	}

	if runEnv.port != "" {
		cfg.Server.HttpPort = ":" + strings.TrimPrefix(runEnv.port, ":")
	}
	runMode := runEnv.runMode
	if runMode == "" {
		runMode = cfg.Server.RunMode
	}
	if runMode == "" {
		runMode = gin.ReleaseMode
	}
	gin.SetMode(runMode)

	warnDefaultSecret(cfg, lg)

	a, err := internalApp.NewApp(cfg, lg, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}

	s := &Server{logger: lg, config: cfg, app: a, sc: safe_close.NewSafeClose()}

	uni, err := validator.InitBinding()
	if err != nil {
		return nil, fmt.Errorf("initValidator: %w", err)
	}

	// Tasks run on the app worker pool
	// 任务在应用 Worker Pool 中执行
	manager := task.NewManager(lg, s.sc, a)
	if err := manager.RegisterTasks(); err != nil {
		return nil, fmt.Errorf("initScheduler: %w", err)
	}
	if err := manager.Start(); err != nil {
		return nil, fmt.Errorf("initScheduler: %w", err)
	}

	lg.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n", banner,
		internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))

	if addr := cfg.Server.HttpPort; addr != "" {
		lg.Warn("api service listening", zap.String("addr", addr))
		s.serve("api service", s.newHTTPServer(addr, routers.NewRouter(a, uni)))
	}
	if addr := cfg.Server.PrivateHttpListen; addr != "" {
		lg.Info("private api service listening", zap.String("addr", addr))
		s.serve("private api service", s.newHTTPServer(addr, routers.NewPrivateRouter(runMode, cfg.Server.PrivateAuthToken, a)))
	}

	// The app container is closed after the listeners and the scheduler
	// App Container 在监听与调度器之后关闭
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
		}
	})

	return s, nil
}

func (s *Server) newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        h,
		ReadTimeout:    time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(s.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

// serve runs an HTTP server until the close signal arrives
// serve 运行 HTTP 服务直到收到关闭信号
func (s *Server) serve(name string, srv *http.Server) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()
		select {
		case err := <-errChan:
			s.logger.Error(name+" err", zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error(name+" shutdown error", zap.Error(err))
			}
		}
	})
}
