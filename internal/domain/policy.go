package domain

import "time"

// CountStrategy 有效人数的计算方式
type CountStrategy int

const (
	// CountListPlusOwner 参与者数量 + 1（发起人隐式计入）
	CountListPlusOwner CountStrategy = iota
	// CountTracked 使用单独维护的计数器，初始值为 Baseline
	CountTracked
)

// Policy 描述一种资源类型的计数与容量规则
type Policy struct {
	Kind             PoolKind
	Count            CountStrategy
	Baseline         int64 // 创建时 HeadCount 的初始值
	CapacityRequired bool
	MinCapacity      int64
	MaxCapacity      int64 // 0 表示不设上界
}

// RidePolicy 拼车：座位数必填 1-10，发起人隐式计入
var RidePolicy = Policy{
	Kind:             PoolKindRide,
	Count:            CountListPlusOwner,
	Baseline:         0,
	CapacityRequired: true,
	MinCapacity:      1,
	MaxCapacity:      10,
}

// FoodPolicy 拼单：人数上限可选，计数器初始为 1 代表发起人
var FoodPolicy = Policy{
	Kind:             PoolKindFood,
	Count:            CountTracked,
	Baseline:         1,
	CapacityRequired: false,
	MinCapacity:      2,
}

// EffectiveCount 分摊用的有效人数
func (p Policy) EffectiveCount(pool *Pool) int64 {
	if p.Count == CountListPlusOwner {
		return int64(len(pool.Participants)) + 1
	}
	return pool.HeadCount
}

// ValidateCapacity 校验创建时的人数上限，0 表示未设置
func (p Policy) ValidateCapacity(limit int64) error {
	if limit == 0 {
		if p.CapacityRequired {
			return ErrInvalidCapacity
		}
		return nil
	}
	if limit < p.MinCapacity || (p.MaxCapacity > 0 && limit > p.MaxCapacity) {
		return ErrInvalidCapacity
	}
	return nil
}

// Init 以空参与者列表和基线计数初始化新资源
func (p Policy) Init(pool *Pool) {
	pool.Participants = []Participant{}
	pool.HeadCount = p.Baseline
	pool.Expired = false
}

// IsFull 设置了上限且有效人数已达上限
func (p Policy) IsFull(pool *Pool) bool {
	return pool.CapacityLimit > 0 && p.EffectiveCount(pool) >= pool.CapacityLimit
}

// State 在过期判定之后调用
func (p Policy) State(pool *Pool) PoolState {
	switch {
	case pool.Expired:
		return PoolStateExpired
	case p.IsFull(pool):
		return PoolStateFull
	default:
		return PoolStateOpen
	}
}

// Admit 追加参与者并同步计数，调用前须通过 AuthorizeJoin
func (p Policy) Admit(pool *Pool, uid int64, now time.Time) {
	pool.Participants = append(pool.Participants, Participant{UID: uid, JoinedAt: now})
	pool.HeadCount++
}

// Release 移除参与者并同步计数，调用前须通过 AuthorizeLeave
func (p Policy) Release(pool *Pool, uid int64) bool {
	i := pool.participantIndex(uid)
	if i < 0 {
		return false
	}
	pool.Participants = append(pool.Participants[:i:i], pool.Participants[i+1:]...)
	pool.HeadCount--
	return true
}
