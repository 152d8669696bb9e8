// Package workerpool 提供有界并发的 Worker Pool，用于后台任务与批量查询
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrWorkerPoolFull 任务队列已满
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed Worker Pool 已关闭
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
	// ErrTaskCancelled 任务在执行前已被取消
	ErrTaskCancelled = errors.New("task was cancelled")
)

// Config Worker Pool 配置
type Config struct {
	// MaxWorkers 最大并发 worker 数量，默认 16
	MaxWorkers int
	// QueueSize 任务队列大小，默认 256
	QueueSize int
	// WarningPercent 活跃占比超过该值时告警，默认 0.8
	WarningPercent float64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		MaxWorkers:     16,
		QueueSize:      256,
		WarningPercent: 0.8,
	}
}

type job struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// Pool 固定数量 worker 消费任务队列
type Pool struct {
	config Config
	logger *zap.Logger

	jobs    chan job
	workers sync.WaitGroup
	active  atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// New 创建 Worker Pool，cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Pool {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.MaxWorkers > 0 {
			c.MaxWorkers = cfg.MaxWorkers
		}
		if cfg.QueueSize > 0 {
			c.QueueSize = cfg.QueueSize
		}
		if cfg.WarningPercent > 0 && cfg.WarningPercent <= 1 {
			c.WarningPercent = cfg.WarningPercent
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config: c,
		logger: logger,
		jobs:   make(chan job, c.QueueSize),
	}

	for i := 0; i < c.MaxWorkers; i++ {
		p.workers.Add(1)
		go p.worker()
	}

	p.logger.Info("worker pool started",
		zap.Int("maxWorkers", c.MaxWorkers),
		zap.Int("queueSize", c.QueueSize))

	return p
}

func (p *Pool) worker() {
	defer p.workers.Done()
	for j := range p.jobs {
		err := p.execute(j)
		if j.done != nil {
			j.done <- err
		}
	}
}

func (p *Pool) execute(j job) (err error) {
	n := p.active.Add(1)
	defer p.active.Add(-1)

	if threshold := int64(float64(p.config.MaxWorkers) * p.config.WarningPercent); n >= threshold && threshold > 0 {
		p.logger.Warn("worker pool approaching capacity",
			zap.Int64("activeCount", n),
			zap.Int("maxWorkers", p.config.MaxWorkers))
	}

	if j.ctx.Err() != nil {
		return ErrTaskCancelled
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker pool task panic", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("worker pool task panic: %v", r)
		}
	}()
	return j.fn(j.ctx)
}

func (p *Pool) enqueue(j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrWorkerPoolClosed
	}
	select {
	case p.jobs <- j:
		return nil
	default:
		return ErrWorkerPoolFull
	}
}

// Submit 提交任务并等待执行结果
func (p *Pool) Submit(ctx context.Context, fn func(context.Context) error) error {
	done := make(chan error, 1)
	if err := p.enqueue(job{ctx: ctx, fn: fn, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitAsync 提交任务后立即返回
func (p *Pool) SubmitAsync(ctx context.Context, fn func(context.Context) error) error {
	return p.enqueue(job{ctx: ctx, fn: fn})
}

// ActiveCount 返回正在执行的任务数
func (p *Pool) ActiveCount() int64 {
	return p.active.Load()
}

// QueuedCount 返回排队中的任务数
func (p *Pool) QueuedCount() int {
	return len(p.jobs)
}

// IsClosed 返回 Worker Pool 是否已关闭
func (p *Pool) IsClosed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Shutdown 停止接收任务，等待已排队任务执行完毕或 ctx 超时
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.logger.Info("worker pool shutting down",
		zap.Int64("activeCount", p.active.Load()),
		zap.Int("queuedCount", len(p.jobs)))

	done := make(chan struct{})
	go func() {
		p.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shutdown completed")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timeout")
		return ctx.Err()
	}
}
