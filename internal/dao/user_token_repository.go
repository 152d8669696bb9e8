package dao

import (
	"context"
	"time"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/model"
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"gorm.io/gorm"
)

// userTokenRepository 实现 domain.UserTokenRepository 接口
type userTokenRepository struct {
	dao *Dao
}

// NewUserTokenRepository 创建 UserTokenRepository 实例
func NewUserTokenRepository(dao *Dao) domain.UserTokenRepository {
	return &userTokenRepository{dao: dao}
}

func (r *userTokenRepository) token(ctx context.Context) *gorm.DB {
	return r.dao.UseWithOnceFunc(func(g *gorm.DB) error {
		return model.AutoMigrate(g, "UserToken")
	}, "user#user_token").WithContext(ctx)
}

func (r *userTokenRepository) toDomain(m *model.UserToken) *domain.UserToken {
	return &domain.UserToken{
		ID:        m.ID,
		UID:       m.UID,
		TokenID:   m.TokenID,
		ExpiresAt: time.Time(m.ExpiresAt),
		CreatedAt: time.Time(m.CreatedAt),
	}
}

// Create 登记刷新令牌
func (r *userTokenRepository) Create(ctx context.Context, token *domain.UserToken) error {
	ctx, cancel := r.dao.WithTimeout(ctx)
	defer cancel()

	m := &model.UserToken{
		UID:       token.UID,
		TokenID:   token.TokenID,
		ExpiresAt: timex.Time(token.ExpiresAt.UTC()),
		CreatedAt: timex.Time(time.Now().UTC()),
	}
	if err := r.token(ctx).Create(m).Error; err != nil {
		return err
	}
	token.ID = m.ID
	return nil
}

// GetByTokenID 根据令牌 ID 获取
func (r *userTokenRepository) GetByTokenID(ctx context.Context, tokenID string) (*domain.UserToken, error) {
	ctx, cancel := r.dao.WithTimeout(ctx)
	defer cancel()

	var m model.UserToken
	if err := r.token(ctx).Where("token_id = ?", tokenID).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// DeleteByTokenID 撤销单个令牌
func (r *userTokenRepository) DeleteByTokenID(ctx context.Context, tokenID string) (bool, error) {
	ctx, cancel := r.dao.WithTimeout(ctx)
	defer cancel()

	res := r.token(ctx).Where("token_id = ?", tokenID).Delete(&model.UserToken{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteByUID 撤销用户的全部令牌
func (r *userTokenRepository) DeleteByUID(ctx context.Context, uid int64) error {
	ctx, cancel := r.dao.WithTimeout(ctx)
	defer cancel()

	return r.token(ctx).Where("uid = ?", uid).Delete(&model.UserToken{}).Error
}

// DeleteExpired 清理过期令牌
func (r *userTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.dao.WithTimeout(ctx)
	defer cancel()

	res := r.token(ctx).Where("expires_at <= ?", now.UTC()).Delete(&model.UserToken{})
	return res.RowsAffected, res.Error
}

var _ domain.UserTokenRepository = (*userTokenRepository)(nil)
