// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/campus-share-service/internal/dao"
	"github.com/haierkeys/campus-share-service/internal/service"
	"github.com/haierkeys/campus-share-service/pkg/util"
	"github.com/haierkeys/campus-share-service/pkg/workerpool"
	"github.com/haierkeys/campus-share-service/pkg/writequeue"

	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，例如 CAMPUS_SERVER_HTTP_PORT
const EnvPrefix = "CAMPUS_"

// AppConfig 应用配置
type AppConfig struct {
	File     string         `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	App      AppSettings    `yaml:"app" envPrefix:"APP_"`
	User     UserConfig     `yaml:"user" envPrefix:"USER_"`
	Security SecurityConfig `yaml:"security" envPrefix:"SECURITY_"`
	Pool     PoolConfig     `yaml:"pool" envPrefix:"POOL_"`
	Sweep    SweepConfig    `yaml:"sweep" envPrefix:"SWEEP_"`
	Tracer   TracerConfig   `yaml:"tracer" envPrefix:"TRACER_"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" env:"LEVEL" default:"warn"`
	// File 日志文件路径，默认为 stderr
	File string `yaml:"file" env:"FILE" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" env:"PRODUCTION" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" env:"RUN_MODE" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" env:"HTTP_PORT" default:":9000"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" env:"READ_TIMEOUT" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" env:"WRITE_TIMEOUT" default:"60"`
	// PrivateHttpListen 私有 HTTP 监听地址，提供 metrics / expvar / pprof
	PrivateHttpListen string `yaml:"private-http-listen" env:"PRIVATE_HTTP_LISTEN" default:":9001"`
	// PrivateAuthToken 私有端口的静态访问令牌，为空不校验
	PrivateAuthToken string `yaml:"private-auth-token" env:"PRIVATE_AUTH_TOKEN"`
	// CorsAllowOrigins 允许跨域的来源，为空表示全部放行
	CorsAllowOrigins []string `yaml:"cors-allow-origins" env:"CORS_ALLOW_ORIGINS" envSeparator:","`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AuthTokenKey string `yaml:"auth-token-key" env:"AUTH_TOKEN_KEY" default:"campus-share-Auth-Token"`
	// TokenExpiry 访问令牌过期时间，支持格式：7d（天）、24h（小时）、30m（分钟）
	TokenExpiry string `yaml:"token-expiry" env:"TOKEN_EXPIRY" default:"2h"`
	// RefreshTokenExpiry 刷新令牌过期时间
	RefreshTokenExpiry string `yaml:"refresh-token-expiry" env:"REFRESH_TOKEN_EXPIRY" default:"7d"`
	// AuthRateLimit 登录注册接口每分钟允许的请求数，0 表示不限
	AuthRateLimit int64 `yaml:"auth-rate-limit" env:"AUTH_RATE_LIMIT" default:"30"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型：sqlite / mysql / postgres
	Type string `yaml:"type" env:"TYPE" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" env:"PATH" default:"storage/database/campus.sqlite3"`
	// UserName 用户名
	UserName string `yaml:"username" env:"USERNAME"`
	// Password 密码
	Password string `yaml:"password" env:"PASSWORD"`
	// Host 主机
	Host string `yaml:"host" env:"HOST"`
	// Name 数据库名
	Name string `yaml:"name" env:"NAME"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" env:"AUTO_MIGRATE" default:"true"`
	// Charset 字符集
	Charset string `yaml:"charset" env:"CHARSET"`
	// ParseTime 是否解析时间
	ParseTime bool `yaml:"parse-time" env:"PARSE_TIME"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" env:"MAX_IDLE_CONNS" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" env:"MAX_OPEN_CONNS" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" env:"CONN_MAX_LIFETIME" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" env:"CONN_MAX_IDLE_TIME" default:"10m"`
	// QueryTimeout 单次数据库调用超时，默认 5s
	QueryTimeout string `yaml:"query-timeout" env:"QUERY_TIMEOUT" default:"5s"`
}

// UserConfig 用户配置
type UserConfig struct {
	// RegisterIsEnable 注册是否启用
	RegisterIsEnable bool `yaml:"register-is-enable" env:"REGISTER_IS_ENABLE" default:"true"`
	// DirectoryCacheSize 用户展示信息缓存条数
	DirectoryCacheSize int `yaml:"directory-cache-size" env:"DIRECTORY_CACHE_SIZE" default:"1024"`
}

// PoolConfig 拼车与拼单配置
type PoolConfig struct {
	// SearchLimit 单页搜索结果上限
	SearchLimit int `yaml:"search-limit" env:"SEARCH_LIMIT" default:"50"`
	// RetryAttempts 基础设施错误的重试次数
	RetryAttempts int `yaml:"retry-attempts" env:"RETRY_ATTEMPTS" default:"3"`
	// RetryBackoff 线性退避步长
	RetryBackoff string `yaml:"retry-backoff" env:"RETRY_BACKOFF" default:"50ms"`
	// ConflictRetries 并发冲突后重新校验的轮数
	ConflictRetries int `yaml:"conflict-retries" env:"CONFLICT_RETRIES" default:"3"`
}

// SweepConfig 过期清扫配置
type SweepConfig struct {
	// RideInterval 拼车清扫间隔
	RideInterval string `yaml:"ride-interval" env:"RIDE_INTERVAL" default:"5m"`
	// FoodInterval 拼单清扫间隔
	FoodInterval string `yaml:"food-interval" env:"FOOD_INTERVAL" default:"5m"`
	// Cron 可选 cron 表达式，设置后覆盖上面的间隔
	Cron string `yaml:"cron" env:"CRON"`
	// TokenCleanupInterval 过期刷新令牌清理间隔，0 表示关闭
	TokenCleanupInterval string `yaml:"token-cleanup-interval" env:"TOKEN_CLEANUP_INTERVAL" default:"1h"`
}

// AppSettings 应用设置
type AppSettings struct {
	// DefaultContextTimeout 默认请求超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" env:"DEFAULT_CONTEXT_TIMEOUT" default:"60"`

	// Worker Pool 配置
	WorkerPoolMaxWorkers int `yaml:"worker-pool-max-workers" env:"WORKER_POOL_MAX_WORKERS" default:"16"`
	WorkerPoolQueueSize  int `yaml:"worker-pool-queue-size" env:"WORKER_POOL_QUEUE_SIZE" default:"64"`

	// Write Queue 配置
	WriteQueueCapacity int    `yaml:"write-queue-capacity" env:"WRITE_QUEUE_CAPACITY" default:"100"`
	WriteQueueTimeout  string `yaml:"write-queue-timeout" env:"WRITE_QUEUE_TIMEOUT" default:"30s"`
	WriteQueueIdleTime string `yaml:"write-queue-idle-time" env:"WRITE_QUEUE_IDLE_TIME" default:"10m"`
}

// TracerConfig 请求追踪配置
type TracerConfig struct {
	// Enabled 是否启用追踪
	Enabled bool `yaml:"enabled" env:"ENABLED" default:"true"`
	// Header 追踪 ID 请求头名称，默认 X-Trace-ID
	Header string `yaml:"header" env:"HEADER" default:"X-Trace-ID"`
}

// LoadConfig 从文件加载配置，环境变量优先于文件
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 不再二次填充默认值：默认为 true 的布尔字段在 YAML 中写 false 时会被覆盖
	// YAML 中留空的时长字段由各 Get* 方法回退到默认值

	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, realpath, errors.Wrap(err, "parse environment overrides failed")
	}

	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetWorkerPoolConfig 获取 Worker Pool 配置
func (c *AppConfig) GetWorkerPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()

	if c.App.WorkerPoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.App.WorkerPoolMaxWorkers
	}
	if c.App.WorkerPoolQueueSize > 0 {
		cfg.QueueSize = c.App.WorkerPoolQueueSize
	}

	return cfg
}

// GetWriteQueueConfig 获取 Write Queue 配置
func (c *AppConfig) GetWriteQueueConfig() writequeue.Config {
	cfg := writequeue.DefaultConfig()

	if c.App.WriteQueueCapacity > 0 {
		cfg.QueueCapacity = c.App.WriteQueueCapacity
	}
	if c.App.WriteQueueTimeout != "" {
		if timeout, err := util.ParseDuration(c.App.WriteQueueTimeout); err == nil {
			cfg.WriteTimeout = timeout
		}
	}
	if c.App.WriteQueueIdleTime != "" {
		if idleTime, err := util.ParseDuration(c.App.WriteQueueIdleTime); err == nil {
			cfg.IdleTimeout = idleTime
		}
	}

	return cfg
}

// GetDatabaseConfig 转换为 DAO 使用的数据库配置
func (c *AppConfig) GetDatabaseConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:            c.Database.Type,
		Path:            c.Database.Path,
		UserName:        c.Database.UserName,
		Password:        c.Database.Password,
		Host:            c.Database.Host,
		Name:            c.Database.Name,
		AutoMigrate:     c.Database.AutoMigrate,
		Charset:         c.Database.Charset,
		ParseTime:       c.Database.ParseTime,
		MaxIdleConns:    c.Database.MaxIdleConns,
		MaxOpenConns:    c.Database.MaxOpenConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		QueryTimeout:    durationOr(c.Database.QueryTimeout, dao.DefaultQueryTimeout),
		RunMode:         c.Server.RunMode,
	}
}

// GetServiceConfig 提取 Service 层需要的配置
func (c *AppConfig) GetServiceConfig() *service.ServiceConfig {
	def := service.DefaultServiceConfig()
	return &service.ServiceConfig{
		User: service.UserServiceConfig{
			RegisterIsEnable:   c.User.RegisterIsEnable,
			DirectoryCacheSize: c.User.DirectoryCacheSize,
		},
		Pool: service.PoolServiceConfig{
			SearchLimit:     c.Pool.SearchLimit,
			RetryAttempts:   c.Pool.RetryAttempts,
			RetryBackoff:    durationOr(c.Pool.RetryBackoff, def.Pool.RetryBackoff),
			ConflictRetries: c.Pool.ConflictRetries,
		},
	}
}

// GetTokenExpiry 获取访问令牌过期时间
func (c *AppConfig) GetTokenExpiry() time.Duration {
	return durationOr(c.Security.TokenExpiry, 2*time.Hour)
}

// GetRefreshTokenExpiry 获取刷新令牌过期时间
func (c *AppConfig) GetRefreshTokenExpiry() time.Duration {
	return durationOr(c.Security.RefreshTokenExpiry, 7*24*time.Hour)
}

// GetSweepInterval 获取清扫间隔，kind 为 ride 或 food
func (c *AppConfig) GetSweepInterval(kind string) time.Duration {
	raw := c.Sweep.RideInterval
	if kind == "food" {
		raw = c.Sweep.FoodInterval
	}
	return durationOr(raw, 5*time.Minute)
}

// GetTokenCleanupInterval 获取刷新令牌清理间隔，0 表示关闭
func (c *AppConfig) GetTokenCleanupInterval() time.Duration {
	return durationOr(c.Sweep.TokenCleanupInterval, 0)
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := util.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
