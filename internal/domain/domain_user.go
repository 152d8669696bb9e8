package domain

import "time"

// User 用户领域模型
type User struct {
	UID       int64
	Name      string
	Email     string
	Password  string
	Phone     string
	StudentID string
	Avatar    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAvatar 判断用户是否有头像
func (u *User) HasAvatar() bool {
	return u.Avatar != ""
}

// UserToken 已签发的刷新令牌
type UserToken struct {
	ID        int64
	UID       int64
	TokenID   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired 判断刷新令牌是否过期
func (t *UserToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
