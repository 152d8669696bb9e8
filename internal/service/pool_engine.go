package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/metrics"
	"github.com/haierkeys/campus-share-service/pkg/code"
	"github.com/haierkeys/campus-share-service/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	opCreate  = "create"
	opJoin    = "join"
	opLeave   = "leave"
	opDelete  = "delete"
	opDetails = "details"
	opSearch  = "search"
	opMine    = "mine"
)

var rejectionCodes = map[domain.RejectReason]*code.Code{
	domain.ReasonExpired:          code.ErrorPoolExpired,
	domain.ReasonSelfJoin:         code.ErrorPoolSelfJoin,
	domain.ReasonAlreadyJoined:    code.ErrorPoolAlreadyJoined,
	domain.ReasonFull:             code.ErrorPoolFull,
	domain.ReasonOwnerCannotLeave: code.ErrorPoolOwnerCannotLeave,
	domain.ReasonNotParticipant:   code.ErrorPoolNotParticipant,
	domain.ReasonNotOwner:         code.ErrorPoolNotOwner,
	domain.ReasonHasParticipants:  code.ErrorPoolHasParticipants,
}

// Sweeper 可被后台任务定期清扫的资源服务
type Sweeper interface {
	Kind() domain.PoolKind
	Sweep(ctx context.Context) (int64, error)
}

// poolEngine 拼车与拼单共用的生命周期编排
//
// 每个状态变更都是：读取 -> 惰性过期 -> 守卫 -> 条件写入。
// 条件写入未命中（ErrPoolConflict）时重新读取并再次守卫，
// 以便返回准确的拒绝原因，超过轮数返回 ErrorPoolBusy。
type poolEngine[T domain.Shareable] struct {
	policy    domain.Policy
	repo      domain.PoolRepository[T]
	clock     domain.Clock
	retry     *retrier
	logger    *zap.Logger
	notFound  *code.Code
	conflicts int
	limit     int
	sf        singleflight.Group
}

func newPoolEngine[T domain.Shareable](policy domain.Policy, repo domain.PoolRepository[T], clock domain.Clock, notFound *code.Code, cfg PoolServiceConfig, lg *zap.Logger) *poolEngine[T] {
	if clock == nil {
		clock = domain.SystemClock
	}
	lg = lg.With(zap.String(logger.FieldKind, policy.Kind.String()))
	return &poolEngine[T]{
		policy:    policy,
		repo:      repo,
		clock:     clock,
		retry:     newRetrier(cfg, lg),
		logger:    lg,
		notFound:  notFound,
		conflicts: cfg.ConflictRetries,
		limit:     cfg.SearchLimit,
	}
}

func (e *poolEngine[T]) kind() string {
	return e.policy.Kind.String()
}

// Create 校验人数上限与截止时间，以基线计数持久化
func (e *poolEngine[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	pool := item.Base()
	now := e.clock.Now()

	if err := e.policy.ValidateCapacity(pool.CapacityLimit); err != nil {
		return zero, code.ErrorInvalidParams.WithDetails("capacity limit is out of range")
	}
	if pool.ExpiryTime.IsZero() {
		return zero, code.ErrorInvalidParams.WithDetails("expiryTime is required")
	}
	if !pool.ExpiryTime.After(now) {
		return zero, code.ErrorPoolPastExpiry
	}
	if pool.TotalPrice.IsNegative() {
		return zero, code.ErrorInvalidParams.WithDetails("totalPrice must not be negative")
	}

	e.policy.Init(pool)
	pool.ExpiryTime = pool.ExpiryTime.UTC()

	created, err := e.repo.Create(ctx, item)
	if err != nil {
		e.logger.Error("create failed", zap.Int64(logger.FieldUID, pool.OwnerUID), zap.Error(err))
		metrics.ObservePoolOperation(e.kind(), opCreate, metrics.OutcomeError)
		return zero, code.ErrorDBUpdate
	}
	metrics.ObservePoolOperation(e.kind(), opCreate, metrics.OutcomeOK)
	return created, nil
}

// load 读取资源并执行惰性过期，新发现的过期会持久化
func (e *poolEngine[T]) load(ctx context.Context, id int64) (T, error) {
	var zero T
	item, err := withRetry(ctx, e.retry, "GetByID", func() (T, error) {
		return e.repo.GetByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, e.notFound
		}
		e.logger.Error("load failed", zap.Int64(logger.FieldPoolID, id), zap.Error(err))
		return zero, code.ErrorDBQuery
	}

	if _, changed := domain.EvaluateExpiry(item.Base(), e.clock.Now()); changed {
		e.persistExpired(ctx, id)
	}
	return item, nil
}

// persistExpired 合并同一资源的并发写入；失败只记录日志，清扫任务会兜底
func (e *poolEngine[T]) persistExpired(ctx context.Context, id int64) {
	key := e.kind() + ":" + strconv.FormatInt(id, 10)
	_, err, _ := e.sf.Do(key, func() (interface{}, error) {
		return withRetry(ctx, e.retry, "MarkExpired", func() (bool, error) {
			return e.repo.MarkExpired(ctx, id)
		})
	})
	if err != nil {
		e.logger.Warn("persist lazy expiry failed", zap.Int64(logger.FieldPoolID, id), zap.Error(err))
	}
}

// Details 返回资源与 viewer 视角的费用汇总
func (e *poolEngine[T]) Details(ctx context.Context, id, viewerUID int64) (T, domain.PaymentSummary, error) {
	var zero T
	item, err := e.load(ctx, id)
	if err != nil {
		return zero, domain.PaymentSummary{}, err
	}
	summary, err := e.summarize(item, viewerUID)
	if err != nil {
		return zero, domain.PaymentSummary{}, err
	}
	metrics.ObservePoolOperation(e.kind(), opDetails, metrics.OutcomeOK)
	return item, summary, nil
}

func (e *poolEngine[T]) summarize(item T, viewerUID int64) (domain.PaymentSummary, error) {
	summary, err := e.policy.Summarize(item.Base(), viewerUID)
	if err != nil {
		e.logger.Error("split failed", zap.Int64(logger.FieldPoolID, item.Base().ID), zap.Error(err))
		return domain.PaymentSummary{}, code.ErrorPoolSplit
	}
	return summary, nil
}

// Join 加入资源，成功后返回更新后的资源
func (e *poolEngine[T]) Join(ctx context.Context, id, uid int64) (T, error) {
	return e.mutate(ctx, opJoin, id, uid,
		func(pool *domain.Pool) error { return e.policy.AuthorizeJoin(pool, uid) },
		func(now time.Time) error { return e.repo.AddParticipant(ctx, id, uid, now) },
		func(pool *domain.Pool, now time.Time) { e.policy.Admit(pool, uid, now) },
	)
}

// Leave 退出资源
func (e *poolEngine[T]) Leave(ctx context.Context, id, uid int64) (T, error) {
	return e.mutate(ctx, opLeave, id, uid,
		func(pool *domain.Pool) error { return e.policy.AuthorizeLeave(pool, uid) },
		func(now time.Time) error { return e.repo.RemoveParticipant(ctx, id, uid, now) },
		func(pool *domain.Pool, _ time.Time) { e.policy.Release(pool, uid) },
	)
}

// Delete 发起人删除无参与者的资源
func (e *poolEngine[T]) Delete(ctx context.Context, id, uid int64) error {
	_, err := e.mutate(ctx, opDelete, id, uid,
		func(pool *domain.Pool) error { return e.policy.AuthorizeDelete(pool, uid) },
		func(time.Time) error { return e.repo.Delete(ctx, id, uid) },
		func(*domain.Pool, time.Time) {},
	)
	return err
}

func (e *poolEngine[T]) mutate(
	ctx context.Context,
	op string,
	id, uid int64,
	guard func(pool *domain.Pool) error,
	write func(now time.Time) error,
	apply func(pool *domain.Pool, now time.Time),
) (T, error) {
	var zero T
	fields := []zap.Field{zap.String(logger.FieldAction, op), zap.Int64(logger.FieldPoolID, id), zap.Int64(logger.FieldUID, uid)}

	for round := 0; round <= e.conflicts; round++ {
		item, err := e.load(ctx, id)
		if err != nil {
			if !errors.Is(err, e.notFound) {
				metrics.ObservePoolOperation(e.kind(), op, metrics.OutcomeError)
			}
			return zero, err
		}

		pool := item.Base()
		if err := guard(pool); err != nil {
			return zero, e.rejected(op, err, fields)
		}

		now := e.clock.Now()
		err = write(now)
		switch {
		case err == nil:
			apply(pool, now)
			metrics.ObservePoolOperation(e.kind(), op, metrics.OutcomeOK)
			return item, nil
		case errors.Is(err, domain.ErrPoolConflict):
			metrics.ObservePoolOperation(e.kind(), op, metrics.OutcomeConflict)
			e.logger.Debug("conditional write missed, re-checking", append(fields, zap.Int(logger.FieldAttempt, round+1))...)
			continue
		default:
			metrics.ObservePoolOperation(e.kind(), op, metrics.OutcomeError)
			e.logger.Error("write failed", append(fields, zap.Error(err))...)
			return zero, code.ErrorDBUpdate
		}
	}

	e.logger.Warn("gave up after repeated concurrent changes", fields...)
	return zero, code.ErrorPoolBusy
}

// rejected 守卫拒绝属于预期结果，只记录 Debug 日志
func (e *poolEngine[T]) rejected(op string, err error, fields []zap.Field) error {
	rej, ok := domain.AsRejection(err)
	if !ok {
		return code.ErrorServerInternal
	}
	metrics.ObservePoolOperation(e.kind(), op, metrics.OutcomeRejected)
	metrics.ObserveRejection(e.kind(), string(rej.Reason))
	e.logger.Debug("request rejected", append(fields, zap.String(logger.FieldReason, string(rej.Reason)))...)

	if c, ok := rejectionCodes[rej.Reason]; ok {
		return c
	}
	return code.ErrorInvalidParams
}

// Search 只读搜索，过期判定只作用于返回结果
func (e *poolEngine[T]) Search(ctx context.Context, filter *domain.PoolFilter) ([]T, int64, error) {
	filter.Now = e.clock.Now()
	if filter.Limit <= 0 || filter.Limit > e.limit {
		filter.Limit = e.limit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	type page struct {
		items []T
		total int64
	}
	res, err := withRetry(ctx, e.retry, "Search", func() (page, error) {
		items, total, err := e.repo.Search(ctx, filter)
		return page{items: items, total: total}, err
	})
	if err != nil {
		metrics.ObservePoolOperation(e.kind(), opSearch, metrics.OutcomeError)
		e.logger.Error("search failed", zap.Error(err))
		return nil, 0, code.ErrorDBQuery
	}

	e.observe(res.items, filter.Now)
	metrics.ObservePoolOperation(e.kind(), opSearch, metrics.OutcomeOK)
	return res.items, res.total, nil
}

// Mine 并发读取用户发起和加入的资源
func (e *poolEngine[T]) Mine(ctx context.Context, uid int64) (created, joined []T, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		created, err = withRetry(gctx, e.retry, "ListByOwner", func() ([]T, error) {
			return e.repo.ListByOwner(gctx, uid)
		})
		return err
	})
	g.Go(func() error {
		var err error
		joined, err = withRetry(gctx, e.retry, "ListByParticipant", func() ([]T, error) {
			return e.repo.ListByParticipant(gctx, uid)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.ObservePoolOperation(e.kind(), opMine, metrics.OutcomeError)
		e.logger.Error("list mine failed", zap.Int64(logger.FieldUID, uid), zap.Error(err))
		return nil, nil, code.ErrorDBQuery
	}

	now := e.clock.Now()
	e.observe(created, now)
	e.observe(joined, now)
	metrics.ObservePoolOperation(e.kind(), opMine, metrics.OutcomeOK)
	return created, joined, nil
}

func (e *poolEngine[T]) observe(items []T, now time.Time) {
	for _, item := range items {
		domain.EvaluateExpiry(item.Base(), now)
	}
}

// Sweep 批量标记到期资源，返回本次置为过期的数量
func (e *poolEngine[T]) Sweep(ctx context.Context) (int64, error) {
	start := time.Now()
	now := e.clock.Now()
	n, err := withRetry(ctx, e.retry, "ExpireDue", func() (int64, error) {
		return e.repo.ExpireDue(ctx, now)
	})
	metrics.ObserveSweep(e.kind(), n, time.Since(start), err)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Listing 列表项的人均金额与状态，人数不足时金额为 0
func (e *poolEngine[T]) Listing(item T) (decimal.Decimal, domain.PoolState) {
	pool := item.Base()
	split, err := e.policy.ComputeSplit(pool)
	if err != nil {
		return decimal.Zero, e.policy.State(pool)
	}
	return split, e.policy.State(pool)
}
