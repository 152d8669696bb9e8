package service

import (
	"context"
	"errors"
	"strings"

	"github.com/haierkeys/campus-share-service/internal/domain"
	"github.com/haierkeys/campus-share-service/internal/dto"
	"github.com/haierkeys/campus-share-service/pkg/app"
	"github.com/haierkeys/campus-share-service/pkg/code"
	"github.com/haierkeys/campus-share-service/pkg/logger"
	"github.com/haierkeys/campus-share-service/pkg/timex"
	"github.com/haierkeys/campus-share-service/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService 定义用户业务服务接口
type UserService interface {
	// Register 用户注册，成功后直接登录
	Register(ctx context.Context, params *dto.UserRegisterRequest, clientIP string) (*dto.AuthTokenDTO, error)

	// Login 用户登录
	Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.AuthTokenDTO, error)

	// Refresh 轮换刷新令牌，旧令牌立即失效
	Refresh(ctx context.Context, params *dto.UserRefreshRequest, clientIP string) (*dto.AuthTokenDTO, error)

	// Logout 撤销用户全部刷新令牌
	Logout(ctx context.Context, uid int64) error

	// GetInfo 获取用户信息
	GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error)

	// CleanupTokens 清理过期的刷新令牌
	CleanupTokens(ctx context.Context) (int64, error)
}

// userService 实现 UserService 接口
type userService struct {
	userRepo     domain.UserRepository
	tokenRepo    domain.UserTokenRepository
	tokenManager app.TokenManager
	directory    *UserDirectory
	clock        domain.Clock
	logger       *zap.Logger
	config       *ServiceConfig
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo domain.UserRepository, tokenRepo domain.UserTokenRepository, tokenManager app.TokenManager, directory *UserDirectory, clock domain.Clock, logger *zap.Logger, config *ServiceConfig) UserService {
	if clock == nil {
		clock = domain.SystemClock
	}
	return &userService{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		tokenManager: tokenManager,
		directory:    directory,
		clock:        clock,
		logger:       logger,
		config:       config.normalize(),
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *userService) domainToDTO(user *domain.User) *dto.UserDTO {
	if user == nil {
		return nil
	}
	return &dto.UserDTO{
		UID:       user.UID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		StudentID: user.StudentID,
		Avatar:    user.Avatar,
		UpdatedAt: timex.Time(user.UpdatedAt),
		CreatedAt: timex.Time(user.CreatedAt),
	}
}

// Register 用户注册
func (s *userService) Register(ctx context.Context, params *dto.UserRegisterRequest, clientIP string) (*dto.AuthTokenDTO, error) {
	// 检查注册是否启用
	if !s.config.User.RegisterIsEnable {
		return nil, code.ErrorUserRegisterIsDisable
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if !util.IsValidEmail(email) {
		return nil, code.ErrorInvalidParams.WithDetails("email is not valid")
	}

	// 检查邮箱是否已存在
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery
	}
	if existing != nil {
		return nil, code.ErrorUserEmailAlreadyExists
	}

	// 生成密码哈希
	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return nil, code.ErrorPasswordNotValid
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Name:      strings.TrimSpace(params.Name),
		Email:     email,
		Password:  password,
		Phone:     strings.TrimSpace(params.Phone),
		StudentID: strings.TrimSpace(params.StudentID),
	})
	if err != nil {
		// 并发注册同一邮箱时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, code.ErrorUserEmailAlreadyExists
		}
		return nil, code.ErrorUserRegister.WithDetails(err.Error())
	}
	s.directory.Put(user)

	return s.issue(ctx, user, clientIP)
}

// Login 用户登录
func (s *userService) Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.AuthTokenDTO, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(params.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不暴露用户是否存在
			return nil, code.ErrorUserLoginPasswordFailed
		}
		return nil, code.ErrorDBQuery
	}

	if !util.CheckPasswordHash(user.Password, params.Password) {
		return nil, code.ErrorUserLoginPasswordFailed
	}

	return s.issue(ctx, user, clientIP)
}

// Refresh 轮换刷新令牌
func (s *userService) Refresh(ctx context.Context, params *dto.UserRefreshRequest, clientIP string) (*dto.AuthTokenDTO, error) {
	claims, err := s.tokenManager.ParseRefresh(params.RefreshToken)
	if err != nil {
		return nil, code.ErrorInvalidRefreshToken
	}

	// 删除成功才视为有效，重复使用的令牌会在这里失败
	removed, err := s.tokenRepo.DeleteByTokenID(ctx, claims.ID)
	if err != nil {
		return nil, code.ErrorDBUpdate
	}
	if !removed {
		s.logger.Warn("refresh token reused or revoked", zap.Int64(logger.FieldUID, claims.UID))
		return nil, code.ErrorInvalidRefreshToken
	}

	user, err := s.userRepo.GetByUID(ctx, claims.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorUserNotFound
		}
		return nil, code.ErrorDBQuery
	}

	return s.issue(ctx, user, clientIP)
}

// Logout 撤销用户全部刷新令牌
func (s *userService) Logout(ctx context.Context, uid int64) error {
	if err := s.tokenRepo.DeleteByUID(ctx, uid); err != nil {
		return code.ErrorDBUpdate
	}
	return nil
}

// GetInfo 获取用户信息
func (s *userService) GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorUserNotFound
		}
		return nil, code.ErrorDBQuery
	}
	return s.domainToDTO(user), nil
}

// CleanupTokens 清理过期的刷新令牌
func (s *userService) CleanupTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.DeleteExpired(ctx, s.clock.Now())
}

// issue 签发访问令牌与刷新令牌，刷新令牌登记到仓储
func (s *userService) issue(ctx context.Context, user *domain.User, clientIP string) (*dto.AuthTokenDTO, error) {
	access, err := s.tokenManager.Generate(user.UID, user.Name, clientIP)
	if err != nil {
		return nil, code.ErrorTokenGenerate.WithDetails(err.Error())
	}
	refresh, err := s.tokenManager.GenerateRefresh(user.UID)
	if err != nil {
		return nil, code.ErrorTokenGenerate.WithDetails(err.Error())
	}

	if err := s.tokenRepo.Create(ctx, &domain.UserToken{
		UID:       user.UID,
		TokenID:   refresh.TokenID,
		ExpiresAt: refresh.ExpiresAt.UTC(),
	}); err != nil {
		s.logger.Error("store refresh token failed", zap.Int64(logger.FieldUID, user.UID), zap.Error(err))
		return nil, code.ErrorDBUpdate
	}

	return &dto.AuthTokenDTO{
		AccessToken:      access,
		RefreshToken:     refresh.Token,
		RefreshExpiresAt: timex.Time(refresh.ExpiresAt),
		User:             s.domainToDTO(user),
	}, nil
}
