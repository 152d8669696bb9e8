package dao

import (
	"context"
	"strings"
	"time"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/model"
	"github.com/haierkeys/campus-share-service/pkg/convert"
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"gorm.io/gorm"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

// user 获取用户表连接
func (r *userRepository) user(ctx context.Context) *gorm.DB {
	return r.dao.UseWithOnceFunc(func(g *gorm.DB) error {
		return model.AutoMigrate(g, "User")
	}, "user#user").WithContext(ctx)
}

// toDomain 将数据库模型转换为领域模型，字段同名直接复制
func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	user := &domain.User{}
	if err := convert.StructAssign(user, m); err != nil {
		return nil
	}
	return user
}

// GetByUID 根据UID获取用户
func (r *userRepository) GetByUID(ctx context.Context, uid int64) (*domain.User, error) {
	ctx, cancel := r.dao.WithTimeout(ctx)
	defer cancel()

	var m model.User
	if err := r.user(ctx).Where("uid = ?", uid).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByEmail 根据邮箱获取用户，邮箱不区分大小写
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := r.dao.WithTimeout(ctx)
	defer cancel()

	var m model.User
	if err := r.user(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// ListByUIDs 批量获取用户
func (r *userRepository) ListByUIDs(ctx context.Context, uids []int64) ([]*domain.User, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	ctx, cancel := r.dao.WithTimeout(ctx)
	defer cancel()

	var ms []*model.User
	if err := r.user(ctx).Where("uid IN ?", uids).Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, r.toDomain(m))
	}
	return out, nil
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := r.dao.WithTimeout(ctx)
	defer cancel()

	now := timex.Time(time.Now().UTC())
	m := &model.User{
		Name:      strings.TrimSpace(user.Name),
		Email:     strings.ToLower(strings.TrimSpace(user.Email)),
		Password:  user.Password,
		Phone:     user.Phone,
		StudentID: user.StudentID,
		Avatar:    user.Avatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.user(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// 确保 userRepository 实现了 domain.UserRepository 接口
var _ domain.UserRepository = (*userRepository)(nil)
