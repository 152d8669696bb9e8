// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/campus-share-service/internal/model"
	"github.com/haierkeys/campus-share-service/pkg/fileurl"
	"github.com/haierkeys/campus-share-service/pkg/util"
	"github.com/haierkeys/campus-share-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// 默认单次查询超时
const DefaultQueryTimeout = 5 * time.Second

// DatabaseConfig DAO 使用的数据库配置
type DatabaseConfig struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Name            string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	QueryTimeout    time.Duration
	RunMode         string
}

// Dao 数据访问对象，持有连接与写队列
type Dao struct {
	Db         *gorm.DB
	ctx        context.Context
	config     *DatabaseConfig
	logger     *zap.Logger
	writeQueue *writequeue.Manager

	onceKeys sync.Map
}

// Option Dao 可选配置
type Option func(*Dao)

// WithConfig 设置数据库配置
func WithConfig(cfg *DatabaseConfig) Option {
	return func(d *Dao) {
		d.config = cfg
	}
}

// WithLogger 设置日志器
func WithLogger(lg *zap.Logger) Option {
	return func(d *Dao) {
		d.logger = lg
	}
}

// WithWriteQueueManager 设置写队列，写操作按资源 key 串行执行
func WithWriteQueueManager(m *writequeue.Manager) Option {
	return func(d *Dao) {
		d.writeQueue = m
	}
}

// New 创建 Dao
func New(db *gorm.DB, ctx context.Context, opts ...Option) *Dao {
	d := &Dao{Db: db, ctx: ctx}
	for _, opt := range opts {
		opt(d)
	}
	if d.config == nil {
		d.config = &DatabaseConfig{AutoMigrate: true}
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// DB 返回底层连接
func (d *Dao) DB() *gorm.DB {
	return d.Db
}

// UseWithOnceFunc 返回连接，首次访问某个 key 时执行 f（通常是迁移表结构）
func (d *Dao) UseWithOnceFunc(f func(*gorm.DB) error, key string) *gorm.DB {
	if !d.config.AutoMigrate {
		return d.Db
	}
	once, _ := d.onceKeys.LoadOrStore(key, &sync.Once{})
	once.(*sync.Once).Do(func() {
		if err := f(d.Db); err != nil {
			d.logger.Error("dao: migrate failed", zap.String("key", key), zap.Error(err))
			d.onceKeys.Delete(key)
		}
	})
	return d.Db
}

// WithTimeout 为单次查询附加超时
func (d *Dao) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := d.config.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// ExecuteWrite 通过写队列执行写操作，未配置写队列时直接执行
func (d *Dao) ExecuteWrite(ctx context.Context, key string, fn func() error) error {
	if d.writeQueue == nil {
		return fn()
	}
	return d.writeQueue.Execute(ctx, key, fn)
}

// Ping 检查数据库连通性
func (d *Dao) Ping(ctx context.Context) error {
	sqlDB, err := d.Db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := d.WithTimeout(ctx)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// NewDBEngineWithConfig 根据配置创建 gorm 连接
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := useDialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		// 统一以 UTC 写入，sqlite 下时间按字符串比较
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database failed")
	}

	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if d, err := util.ParseDuration(c.ConnMaxLifetime); err == nil && d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	}
	if d, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil && d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}

	if err := db.Use(&gormTracing.OpentracingPlugin{}); err != nil && lg != nil {
		lg.Warn("dao: tracing plugin not installed", zap.Error(err))
	}

	if c.AutoMigrate {
		if err := model.AutoMigrateAll(db); err != nil {
			return nil, errors.Wrap(err, "auto migrate failed")
		}
	}

	return db, nil
}

func useDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=UTC",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			charset,
			c.ParseTime,
		)), nil
	case "postgres":
		host, port := c.Host, "5432"
		if h, p, ok := strings.Cut(c.Host, ":"); ok {
			host, port = h, p
		}
		return postgres.Open(fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			host, port, c.UserName, c.Password, c.Name)), nil
	case "sqlite", "":
		if c.Path == "" {
			return nil, errors.New("sqlite path is empty")
		}
		if c.Path == ":memory:" {
			return sqlite.Open(c.Path), nil
		}
		if !fileurl.IsExist(filepath.Dir(c.Path)) {
			if err := fileurl.CreatePath(c.Path, os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create sqlite directory failed")
			}
		}
		return sqlite.Open(c.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"), nil
	}
	return nil, errors.Errorf("unsupported database type: %s", c.Type)
}
