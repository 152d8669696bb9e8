package app

import (
	"fmt"
	"time"

	"github.com/haierkeys/campus-share-service/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 默认 Token 签发者
const DefaultTokenIssuer = "campus-share-service"

const (
	subjectUserToken    = "user-token"
	subjectRefreshToken = "refresh-token"
)

// TokenConfig 定义 Token 管理器的配置
type TokenConfig struct {
	SecretKey     string        `yaml:"secret-key"`     // JWT 签名密钥
	Expiry        time.Duration `yaml:"expiry"`         // 访问令牌过期时间，默认 2 小时
	RefreshExpiry time.Duration `yaml:"refresh-expiry"` // 刷新令牌过期时间，默认 30 天
	Issuer        string        `yaml:"issuer"`         // Token 签发者
}

// TokenManager 定义 Token 管理接口
type TokenManager interface {
	Generate(uid int64, nickname, ip string) (string, error)
	Parse(token string) (*UserEntity, error)
	Validate(token string) error
	GenerateRefresh(uid int64) (*RefreshToken, error)
	ParseRefresh(token string) (*RefreshEntity, error)
	GetSecretKey() string
}

// tokenManager 实现 TokenManager 接口
type tokenManager struct {
	config TokenConfig
}

// NewTokenManager 创建一个新的 TokenManager 实例
func NewTokenManager(cfg TokenConfig) TokenManager {
	if cfg.Expiry == 0 {
		cfg.Expiry = 2 * time.Hour
	}
	if cfg.RefreshExpiry == 0 {
		cfg.RefreshExpiry = 30 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	return &tokenManager{config: cfg}
}

type UserEntity struct {
	UID      int64  `json:"uid"`
	Nickname string `json:"nickname"`
	IP       string `json:"ip"`
	jwt.RegisteredClaims
}

// RefreshEntity 刷新令牌的声明，ID 即服务端登记的 token id
type RefreshEntity struct {
	UID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// RefreshToken 新签发的刷新令牌
type RefreshToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

func (t *tokenManager) signingKey() []byte {
	return []byte(t.config.SecretKey + "_" + util.GetMachineID())
}

// Generate 生成一个新的访问令牌
func (t *tokenManager) Generate(uid int64, nickname, ip string) (string, error) {
	now := time.Now()
	claims := &UserEntity{
		UID:      uid,
		Nickname: nickname,
		IP:       ip,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.config.Issuer,
			Subject:   subjectUserToken,
			ID:        fmt.Sprintf("%d", uid),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.signingKey())
}

// Parse 解析访问令牌并返回用户信息
func (t *tokenManager) Parse(token string) (*UserEntity, error) {
	claims := &UserEntity{}
	if err := t.parse(token, claims); err != nil {
		return nil, err
	}
	if claims.Subject != subjectUserToken {
		return nil, fmt.Errorf("unexpected token subject: %s", claims.Subject)
	}
	return claims, nil
}

// Validate 验证 Token 是否有效
func (t *tokenManager) Validate(token string) error {
	_, err := t.Parse(token)
	return err
}

// GenerateRefresh 生成带唯一 ID 的刷新令牌
func (t *tokenManager) GenerateRefresh(uid int64) (*RefreshToken, error) {
	now := time.Now()
	expiresAt := now.Add(t.config.RefreshExpiry)
	tokenID := uuid.NewString()

	claims := &RefreshEntity{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    t.config.Issuer,
			Subject:   subjectRefreshToken,
			ID:        tokenID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.signingKey())
	if err != nil {
		return nil, err
	}
	return &RefreshToken{Token: signed, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}

// ParseRefresh 解析刷新令牌
func (t *tokenManager) ParseRefresh(token string) (*RefreshEntity, error) {
	claims := &RefreshEntity{}
	if err := t.parse(token, claims); err != nil {
		return nil, err
	}
	if claims.Subject != subjectRefreshToken {
		return nil, fmt.Errorf("unexpected token subject: %s", claims.Subject)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("refresh token without id")
	}
	return claims, nil
}

// GetSecretKey 获取密钥
func (t *tokenManager) GetSecretKey() string {
	return t.config.SecretKey
}

func (t *tokenManager) parse(token string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.signingKey(), nil
	}, jwt.WithIssuer(t.config.Issuer))
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

// GetUID extracts the user ID from the request context.
func GetUID(ctx *gin.Context) (out int64) {
	user, exist := ctx.Get("user_token")
	if exist {
		if userEntity, ok := user.(*UserEntity); ok {
			out = userEntity.UID
		}
	}
	return
}

// SetTokenToContext 解析访问令牌并写入 Context
func SetTokenToContext(ctx *gin.Context, tokenString string, tm TokenManager) error {
	user, err := tm.Parse(tokenString)
	if err != nil {
		return err
	}
	ctx.Set("user_token", user)
	return nil
}
