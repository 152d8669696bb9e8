// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"time"
)

// PoolFilter 搜索条件，字符串字段为不区分大小写的子串匹配，空值表示不过滤
type PoolFilter struct {
	// 拼车
	Destination string
	Date        *time.Time // 按创建日期 [Date, Date+1d) 过滤

	// 拼单
	Restaurant string
	Cuisine    string
	Location   string

	// IncludeExpired 为 false 时排除已过期及截止时间 <= Now 的资源
	IncludeExpired bool
	Now            time.Time
	Limit          int
	Offset         int
}

// PoolRepository 可分摊资源仓储接口
type PoolRepository[T Shareable] interface {
	// GetByID 获取资源及参与者，不存在时返回 gorm.ErrRecordNotFound
	GetByID(ctx context.Context, id int64) (T, error)

	// Search 按截止时间升序搜索，返回结果与总数
	Search(ctx context.Context, filter *PoolFilter) ([]T, int64, error)

	// ListByOwner 用户创建的资源，按创建时间倒序
	ListByOwner(ctx context.Context, uid int64) ([]T, error)

	// ListByParticipant 用户加入的资源，按创建时间倒序
	ListByParticipant(ctx context.Context, uid int64) ([]T, error)

	// Create 创建资源
	Create(ctx context.Context, pool T) (T, error)

	// MarkExpired 将未过期资源置为过期，返回是否发生变化
	MarkExpired(ctx context.Context, id int64) (bool, error)

	// AddParticipant 原子地追加参与者，条件不满足时返回 ErrPoolConflict
	AddParticipant(ctx context.Context, id, uid int64, now time.Time) error

	// RemoveParticipant 原子地移除参与者，条件不满足时返回 ErrPoolConflict
	RemoveParticipant(ctx context.Context, id, uid int64, now time.Time) error

	// Delete 仅当发起人匹配且无参与者时删除，否则返回 ErrPoolConflict
	Delete(ctx context.Context, id, ownerUID int64) error

	// ExpireDue 批量将截止时间 <= now 且未过期的资源置为过期，返回影响行数
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// RideRepository 拼车仓储接口
type RideRepository interface {
	PoolRepository[*Ride]
}

// FoodOrderRepository 拼单仓储接口
type FoodOrderRepository interface {
	PoolRepository[*FoodOrder]
}

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUID 根据UID获取用户
	GetByUID(ctx context.Context, uid int64) (*User, error)

	// GetByEmail 根据邮箱获取用户
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ListByUIDs 批量获取用户
	ListByUIDs(ctx context.Context, uids []int64) ([]*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)
}

// UserTokenRepository 刷新令牌仓储接口
type UserTokenRepository interface {
	// Create 登记刷新令牌
	Create(ctx context.Context, token *UserToken) error

	// GetByTokenID 根据令牌 ID 获取
	GetByTokenID(ctx context.Context, tokenID string) (*UserToken, error)

	// DeleteByTokenID 撤销单个令牌，返回是否存在
	DeleteByTokenID(ctx context.Context, tokenID string) (bool, error)

	// DeleteByUID 撤销用户的全部令牌
	DeleteByUID(ctx context.Context, uid int64) error

	// DeleteExpired 清理过期令牌
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
