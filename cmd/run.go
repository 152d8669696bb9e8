package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	internalApp "github.com/haierkeys/campus-share-service/internal/app"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
	watch   bool   // Restart when the config file changes // 配置文件变化时重启
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			path, err := resolveConfigPath(runEnv.config)
			if err != nil {
				bootstrapLogger.Error("config file resolve error", zap.Error(err))
				return
			}
			runEnv.config = path

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			restart := make(chan string, 1)
			if runEnv.watch {
				go watchConfig(s, runEnv.config, restart)
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			var changed string
			select {
			case <-quit:
				s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			case changed = <-restart:
				s.logger.Info("Config changed, restarting...", zap.String("file", changed))
			}
			s.sc.SendCloseSignal(nil)

			// Wait for all shutdown handlers to complete (including App Container graceful shutdown)
			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				s.logger.Info("Service has been shut down gracefully.")
			}

			if changed == "" {
				return
			}

			// Re-exec so the new config and environment are loaded from scratch
			// 重新执行进程，完整加载新配置与环境变量
			exe, err := os.Executable()
			if err != nil {
				s.logger.Error("Failed to locate executable", zap.Error(err))
				return
			}
			if err := internalApp.RestartProcess(exe, os.Args, os.Environ()); err != nil {
				s.logger.Error("Failed to restart process", zap.Error(err))
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
	fs.BoolVarP(&runEnv.watch, "watch", "w", true, "restart when the config file changes")
}

// watchConfig polls the config file and reports the first write
// watchConfig 轮询配置文件，检测到第一次写入后通知重启
func watchConfig(s *Server, path string, restart chan<- string) {
	w := watcher.New()
	defer w.Close()

	// Set MaxEvents to 1 to receive at most 1 event in each listening cycle
	// 将 SetMaxEvents 设置为 1，以便在每个监听周期中至多接收 1 个事件
	w.SetMaxEvents(1)

	// Only notify write events.
	// 只通知写入事件。
	w.FilterOps(watcher.Write)

	if err := w.Add(path); err != nil {
		s.logger.Error("config watcher file error", zap.Error(err))
		return
	}

	go func() {
		for {
			select {
			case event := <-w.Event:
				s.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
				select {
				case restart <- event.Path:
				default:
				}
				w.Close()
				return
			case err := <-w.Error:
				s.logger.Error("config watcher error", zap.Error(err))
			case <-w.Closed:
				return
			case <-s.sc.CloseSignal():
				w.Close()
				return
			}
		}
	}()

	// Start watching
	// 启动监听
	if err := w.Start(time.Second * 5); err != nil {
		s.logger.Error("config watcher start error", zap.Error(err))
	}
}
