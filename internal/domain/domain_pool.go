package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PoolKind 可分摊资源的类型
type PoolKind string

const (
	PoolKindRide PoolKind = "ride"
	PoolKindFood PoolKind = "food"
)

func (k PoolKind) String() string {
	return string(k)
}

// Participant 参与者
type Participant struct {
	UID      int64
	JoinedAt time.Time
}

// Pool 拼车与拼单共有的可分摊资源
//
// 发起人不在 Participants 中；HeadCount 是持久化的人数计数，
// 拼车为参与者数量（current_seats），拼单为包含发起人的人数（current_participants）。
type Pool struct {
	ID            int64
	OwnerUID      int64
	CapacityLimit int64 // 0 表示不限
	Participants  []Participant
	HeadCount     int64
	TotalPrice    decimal.Decimal
	ExpiryTime    time.Time
	Expired       bool
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Shareable 由 Ride 与 FoodOrder 实现
type Shareable interface {
	Base() *Pool
}

// Base 返回资源的公共部分
func (p *Pool) Base() *Pool {
	return p
}

// IsOwner 判断是否为发起人
func (p *Pool) IsOwner(uid int64) bool {
	return p.OwnerUID == uid
}

// HasParticipant 判断用户是否已加入
func (p *Pool) HasParticipant(uid int64) bool {
	return p.participantIndex(uid) >= 0
}

// ParticipantUIDs 返回参与者 UID 列表
func (p *Pool) ParticipantUIDs() []int64 {
	uids := make([]int64, 0, len(p.Participants))
	for _, pt := range p.Participants {
		uids = append(uids, pt.UID)
	}
	return uids
}

func (p *Pool) participantIndex(uid int64) int {
	for i, pt := range p.Participants {
		if pt.UID == uid {
			return i
		}
	}
	return -1
}

// PoolState 资源状态
type PoolState string

const (
	PoolStateOpen    PoolState = "open"
	PoolStateFull    PoolState = "full"
	PoolStateExpired PoolState = "expired"
)
