package dto

import "github.com/haierkeys/campus-share-service/pkg/timex"

// UserRegisterRequest User registration request parameters
// 用户注册请求参数
type UserRegisterRequest struct {
	Name      string `json:"name" form:"name" binding:"required,notblank,max=64"`           // Display name // 姓名
	Email     string `json:"email" form:"email" binding:"required,email"`                   // User email // 用户邮件
	Password  string `json:"password" form:"password" binding:"required,min=6,max=72"`      // User password // 用户密码
	Phone     string `json:"phone" form:"phone" binding:"required,notblank,max=32"`         // Phone number // 手机号
	StudentID string `json:"studentId" form:"studentId" binding:"required,notblank,max=32"` // Student ID // 学号
}

// UserLoginRequest User login request parameters
// 用户登录请求参数
type UserLoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"` // User email // 用户邮件
	Password string `json:"password" form:"password" binding:"required"` // Password // 密码
}

// UserRefreshRequest Refresh token rotation request
// 刷新令牌请求参数
type UserRefreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken" binding:"required"` // Refresh token // 刷新令牌
}

// ---------------- DTO / Response ----------------

// UserDTO User data transfer object
// UserDTO 用户数据传输对象
type UserDTO struct {
	UID       int64      `json:"uid"`       // User ID (primary key) // 用户唯一标识（主键）
	Name      string     `json:"name"`      // Display name // 姓名
	Email     string     `json:"email"`     // Email address // 邮件地址
	Phone     string     `json:"phone"`     // Phone number // 手机号
	StudentID string     `json:"studentId"` // Student ID // 学号
	Avatar    string     `json:"avatar"`    // Avatar URL // 头像地址
	UpdatedAt timex.Time `json:"updatedAt"` // Last updated time // 最后更新时间
	CreatedAt timex.Time `json:"createdAt"` // Account created time // 账号创建时间
}

// AuthTokenDTO Tokens issued on login, register and refresh
// AuthTokenDTO 登录、注册与刷新时签发的令牌
type AuthTokenDTO struct {
	AccessToken      string     `json:"accessToken"`      // Access token // 访问令牌
	RefreshToken     string     `json:"refreshToken"`     // Refresh token // 刷新令牌
	RefreshExpiresAt timex.Time `json:"refreshExpiresAt"` // Refresh token expiry // 刷新令牌过期时间
	User             *UserDTO   `json:"user"`             // Current user // 当前用户
}
