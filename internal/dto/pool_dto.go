package dto

import (
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"github.com/shopspring/decimal"
)

// PoolIDRequest Path parameter carrying a ride or food order ID
// 路径参数：拼车或拼单 ID
type PoolIDRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"` // Resource ID // 资源 ID
}

// ---------------- DTO / Response ----------------

// UserBriefDTO Display fields of owner and participants
// UserBriefDTO 发起人与参与者的展示字段
type UserBriefDTO struct {
	UID    int64  `json:"uid"`    // User ID // 用户 ID
	Name   string `json:"name"`   // Display name // 姓名
	Email  string `json:"email"`  // Email address // 邮件地址
	Phone  string `json:"phone"`  // Phone number // 手机号
	Avatar string `json:"avatar"` // Avatar URL // 头像地址
}

// ParticipantDTO Participant with join time
// ParticipantDTO 参与者及加入时间
type ParticipantDTO struct {
	UserBriefDTO
	JoinedAt timex.Time `json:"joinedAt"` // Join time // 加入时间
}

// PaymentSummaryDTO Cost split as seen by the viewer
// PaymentSummaryDTO 查看者视角的费用汇总
type PaymentSummaryDTO struct {
	SplitAmount       decimal.Decimal  `json:"splitAmount"`       // Amount per person // 人均金额
	TotalParticipants int64            `json:"totalParticipants"` // Effective participants including owner // 含发起人的有效人数
	IsExpired         bool             `json:"isExpired"`         // Expired flag // 是否已过期
	YourAmount        *decimal.Decimal `json:"yourAmount"`        // Viewer's share, null for outsiders // 查看者应付金额，非成员为 null
}
