package model

import "github.com/haierkeys/campus-share-service/pkg/timex"

const TableNameUser = "user"

// User mapped from table <user>
type User struct {
	UID       int64      `gorm:"column:uid;primaryKey;autoIncrement" json:"uid" form:"uid"`
	Name      string     `gorm:"column:name;size:100;not null" json:"name" form:"name"`
	Email     string     `gorm:"column:email;size:255;not null;uniqueIndex:uk_user_email" json:"email" form:"email"`
	Password  string     `gorm:"column:password;size:255;not null" json:"password" form:"password"`
	Phone     string     `gorm:"column:phone;size:32" json:"phone" form:"phone"`
	StudentID string     `gorm:"column:student_id;size:64" json:"studentId" form:"studentId"`
	Avatar    string     `gorm:"column:avatar;size:512" json:"avatar" form:"avatar"`
	CreatedAt timex.Time `gorm:"column:created_at;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName User's table name
func (*User) TableName() string {
	return TableNameUser
}

const TableNameUserToken = "user_token"

// UserToken mapped from table <user_token>
type UserToken struct {
	ID        int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	UID       int64      `gorm:"column:uid;not null;index:idx_user_token_uid" json:"uid" form:"uid"`
	TokenID   string     `gorm:"column:token_id;size:64;not null;uniqueIndex:uk_user_token_token_id" json:"tokenId" form:"tokenId"`
	ExpiresAt timex.Time `gorm:"column:expires_at;not null;index:idx_user_token_expires_at" json:"expiresAt" form:"expiresAt"`
	CreatedAt timex.Time `gorm:"column:created_at;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
}

// TableName UserToken's table name
func (*UserToken) TableName() string {
	return TableNameUserToken
}
