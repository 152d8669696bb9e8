// Package writequeue serializes write operations that share a resource key
// Package writequeue 按资源 key 串行化写操作
//
// Operations with the same key (e.g. "ride:12") run one at a time in FIFO order,
// operations with different keys run concurrently.
// 相同 key 的写操作按 FIFO 顺序逐个执行，不同 key 之间并发执行。
package writequeue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull the queue of a key has reached its capacity
	// ErrWriteQueueFull 某个 key 的队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed the manager has been shut down
	// ErrWriteQueueClosed 管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout the operation did not finish within WriteTimeout
	// ErrWriteTimeout 写操作超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
// Config 写队列配置
type Config struct {
	// QueueCapacity pending operations allowed per key, default 100
	// QueueCapacity 每个 key 允许排队的操作数，默认 100
	QueueCapacity int
	// WriteTimeout max wait for a single operation, default 30 seconds
	// WriteTimeout 单个操作的最长等待时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout a key's worker exits after being idle this long, default 10 minutes
	// IdleTimeout key 的 worker 空闲超过该时间后退出，默认 10 分钟
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

// Key builds a resource key such as "ride:12"
// Key 构造资源 key，例如 "ride:12"
func Key(kind string, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

// keyQueue pending is guarded by Manager.mu; a pending op is always in ch or about to be sent
// keyQueue 的 pending 由 Manager.mu 保护
type keyQueue struct {
	key     string
	ch      chan writeOp
	pending int
}

// Manager owns one lazily started worker per active key
// Manager 为每个活跃 key 懒启动一个 worker
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[string]*keyQueue
	closed bool
	stopCh chan struct{}

	workers sync.WaitGroup
}

// New creates write queue manager, nil cfg uses DefaultConfig
// New 创建写队列管理器，cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return &Manager{
		config: c,
		logger: logger,
		queues: make(map[string]*keyQueue),
		stopCh: make(chan struct{}),
	}
}

// Execute runs fn on the worker of key and waits for its result
// Execute 在 key 对应的 worker 上执行 fn 并等待结果
func (m *Manager) Execute(ctx context.Context, key string, fn func() error) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrWriteQueueClosed
	}
	q, ok := m.queues[key]
	if !ok {
		q = &keyQueue{key: key, ch: make(chan writeOp, m.config.QueueCapacity)}
		m.queues[key] = q
		m.workers.Add(1)
		go m.worker(q)
		m.logger.Debug("write queue created", zap.String("key", key))
	}
	if q.pending >= m.config.QueueCapacity {
		m.mu.Unlock()
		return ErrWriteQueueFull
	}
	q.pending++
	m.mu.Unlock()

	op := writeOp{ctx: ctx, fn: fn, result: make(chan error, 1)}
	q.ch <- op

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	}
}

func (m *Manager) worker(q *keyQueue) {
	defer m.workers.Done()

	idle := time.NewTimer(m.config.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case op := <-q.ch:
			m.run(q, op)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(m.config.IdleTimeout)
		case <-idle.C:
			if m.retire(q) {
				return
			}
			idle.Reset(m.config.IdleTimeout)
		case <-m.stopCh:
			for !m.retire(q) {
				m.run(q, <-q.ch)
			}
			return
		}
	}
}

// retire removes q from the manager when nothing is pending
// retire 在没有待处理操作时将 q 移出管理器
func (m *Manager) retire(q *keyQueue) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.pending > 0 {
		return false
	}
	if m.queues[q.key] == q {
		delete(m.queues, q.key)
	}
	m.logger.Debug("write queue retired", zap.String("key", q.key))
	return true
}

func (m *Manager) run(q *keyQueue, op writeOp) {
	defer func() {
		m.mu.Lock()
		q.pending--
		m.mu.Unlock()
	}()

	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("write queue operation panic", zap.String("key", q.key), zap.Any("panic", r), zap.Stack("stack"))
				err = fmt.Errorf("write queue operation panic: %v", r)
			}
		}()
		err = op.fn()
	}()
	op.result <- err
}

// Shutdown stops accepting operations and waits for queued ones to finish
// Shutdown 停止接收新操作并等待已排队的操作完成
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.stopCh)
	m.mu.Unlock()

	m.logger.Info("write queue manager shutting down")

	done := make(chan struct{})
	go func() {
		m.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout")
		return ctx.Err()
	}
}

// QueueCount returns the number of keys with a live worker
// QueueCount 返回当前存活的 key 队列数量
func (m *Manager) QueueCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// QueuedCount returns pending operations of key
// QueuedCount 返回 key 上待处理的操作数
func (m *Manager) QueuedCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.queues[key]; ok {
		return q.pending
	}
	return 0
}

// IsClosed returns if manager is closed
// IsClosed 返回管理器是否已关闭
func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
