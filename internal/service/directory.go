package service

import (
	"context"

	"github.com/haierkeys/campus-share-service/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// UserDirectory 发起人与参与者展示信息的缓存
// 用户注册后展示字段不再变化，缓存无需失效
type UserDirectory struct {
	repo  domain.UserRepository
	cache *lru.Cache[int64, *domain.User]
}

// NewUserDirectory 创建 UserDirectory，size <= 0 时使用默认容量
func NewUserDirectory(repo domain.UserRepository, size int) (*UserDirectory, error) {
	if size <= 0 {
		size = DefaultServiceConfig().User.DirectoryCacheSize
	}
	cache, err := lru.New[int64, *domain.User](size)
	if err != nil {
		return nil, err
	}
	return &UserDirectory{repo: repo, cache: cache}, nil
}

// Put 写入缓存
func (d *UserDirectory) Put(user *domain.User) {
	if user == nil {
		return
	}
	d.cache.Add(user.UID, user)
}

// Lookup 批量获取用户，未命中的一次性从仓储加载
func (d *UserDirectory) Lookup(ctx context.Context, uids []int64) (map[int64]*domain.User, error) {
	out := make(map[int64]*domain.User, len(uids))
	var missing []int64
	for _, uid := range uids {
		if _, seen := out[uid]; seen {
			continue
		}
		if u, ok := d.cache.Get(uid); ok {
			out[uid] = u
			continue
		}
		out[uid] = nil
		missing = append(missing, uid)
	}

	if len(missing) > 0 {
		users, err := d.repo.ListByUIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			d.cache.Add(u.UID, u)
			out[u.UID] = u
		}
	}

	for uid, u := range out {
		if u == nil {
			delete(out, uid)
		}
	}
	return out, nil
}
