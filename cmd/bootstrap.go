package cmd

import (
	"os"
	"strings"

	internalApp "github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/dao"
	"github.com/haierkeys/campus-share-service/pkg/fileurl"
	"github.com/haierkeys/campus-share-service/pkg/logger"
	"github.com/haierkeys/campus-share-service/pkg/util"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

// defaultConfigPath 找不到配置文件时生成的默认路径
const defaultConfigPath = "config/config.yaml"

// defaultAuthTokenKey 内置配置中的占位密钥，生成配置文件时替换为随机值
const defaultAuthTokenKey = "campus-share-Auth-Token"

// bootstrapLogger bootstrap stage logger
// bootstrapLogger 启动阶段日志器
// Used to record logs during the startup process before the main logger is initialized
// 用于在主日志器初始化之前记录启动过程中的日志
var bootstrapLogger *zap.Logger

func init() {
	// Create encoder configuration for console output
	// 创建控制台输出的 encoder 配置
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
	consoleWriter := zapcore.Lock(os.Stderr)

	// Set log level based on DEBUG environment variable
	// 根据 DEBUG 环境变量设置日志级别
	level := zapcore.InfoLevel
	if os.Getenv("DEBUG") != "" {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(consoleEncoder, consoleWriter, level)
	bootstrapLogger = zap.New(core, zap.AddCaller())
}

// resolveConfigPath returns the config file to use, creating it from the embedded default when none exists
// resolveConfigPath 查找配置文件，都不存在时用内置默认配置生成
func resolveConfigPath(path string) (string, error) {
	if len(path) > 0 {
		return path, nil
	}
	for _, candidate := range []string{"config/config-dev.yaml", "config.yaml", defaultConfigPath} {
		if fileurl.IsExist(candidate) {
			return candidate, nil
		}
	}

	bootstrapLogger.Warn("config file not found, creating default config")

	content := strings.Replace(configDefault, defaultAuthTokenKey, util.GetRandomString(32), 1)
	if err := fileurl.CreatePath(defaultConfigPath, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "config file auto create error")
	}
	if err := os.WriteFile(defaultConfigPath, []byte(content), 0644); err != nil {
		return "", errors.Wrap(err, "config file auto create writing error")
	}

	bootstrapLogger.Info("config file auto create successfully", zap.String("path", defaultConfigPath))
	return defaultConfigPath, nil
}

// loadRuntime loads config, logger and database for one-shot commands
// loadRuntime 为一次性命令加载配置、日志器和数据库
func loadRuntime(configPath string) (*internalApp.AppConfig, *zap.Logger, *gorm.DB, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	appConfig, realpath, err := internalApp.LoadConfig(path)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to load config")
	}
	bootstrapLogger.Info("config loaded", zap.String("path", realpath))

	lg, err := logger.NewLogger(logger.Config{
		Level:      appConfig.Log.Level,
		File:       appConfig.Log.File,
		Production: appConfig.Log.Production,
	})
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to init logger")
	}

	db, err := initDatabaseWithConfig(appConfig, lg)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to init database")
	}
	return appConfig, lg, db, nil
}

// initDatabaseWithConfig initializes database (using injected config)
// initDatabaseWithConfig 初始化数据库（使用注入的配置）
func initDatabaseWithConfig(cfg *internalApp.AppConfig, lg *zap.Logger) (*gorm.DB, error) {
	return dao.NewDBEngineWithConfig(cfg.GetDatabaseConfig(), lg)
}
