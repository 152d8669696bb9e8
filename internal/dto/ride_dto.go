package dto

import (
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"github.com/shopspring/decimal"
)

// RideCreateRequest Request parameters for creating a ride
// 创建拼车请求参数
type RideCreateRequest struct {
	From           string           `json:"from" form:"from" binding:"required,notblank,max=255"`     // Departure // 出发地
	To             string           `json:"to" form:"to" binding:"required,notblank,max=255"`         // Destination // 目的地
	VehicleDetails string           `json:"vehicleDetails" form:"vehicleDetails" binding:"max=255"`   // Vehicle description // 车辆信息
	MaxSeats       int64            `json:"maxSeats" form:"maxSeats" binding:"required,min=1,max=10"` // Seat limit including owner // 座位数（含发起人）
	TotalPrice     *decimal.Decimal `json:"totalPrice" form:"totalPrice" binding:"required,gte=0"`    // Total cost // 总价
	ExpiryTime     timex.Time       `json:"expiryTime" form:"expiryTime"`                             // Deadline // 截止时间
	Notes          string           `json:"notes" form:"notes" binding:"max=500"`                     // Notes // 备注
}

// RideSearchRequest Ride search parameters
// 拼车搜索参数
type RideSearchRequest struct {
	To             string `json:"to" form:"to" binding:"required,notblank"`                 // Destination substring // 目的地关键字
	Date           string `json:"date" form:"date" binding:"omitempty,datetime=2006-01-02"` // Creation day // 发布日期
	IncludeExpired bool   `json:"includeExpired" form:"includeExpired"`                     // Include expired rides // 是否包含已过期
}

// ---------------- DTO / Response ----------------

// RideDTO Ride list item
// RideDTO 拼车列表项
type RideDTO struct {
	ID             int64           `json:"id"`             // Ride ID // 拼车 ID
	From           string          `json:"from"`           // Departure // 出发地
	To             string          `json:"to"`             // Destination // 目的地
	VehicleDetails string          `json:"vehicleDetails"` // Vehicle description // 车辆信息
	MaxSeats       int64           `json:"maxSeats"`       // Seat limit // 座位数
	CurrentSeats   int64           `json:"currentSeats"`   // Seats taken by participants // 已占用座位
	TotalPrice     decimal.Decimal `json:"totalPrice"`     // Total cost // 总价
	SplitAmount    decimal.Decimal `json:"splitAmount"`    // Amount per person // 人均金额
	State          string          `json:"state"`          // open, full or expired // 状态
	Expired        bool            `json:"expired"`        // Expired flag // 是否已过期
	ExpiryTime     timex.Time      `json:"expiryTime"`     // Deadline // 截止时间
	Notes          string          `json:"notes"`          // Notes // 备注
	Owner          *UserBriefDTO   `json:"owner"`          // Owner // 发起人
	CreatedAt      timex.Time      `json:"createdAt"`      // Created time // 创建时间
	UpdatedAt      timex.Time      `json:"updatedAt"`      // Updated time // 更新时间
}

// RideDetailDTO Ride detail with participants and payment summary
// RideDetailDTO 拼车详情，含参与者与费用汇总
type RideDetailDTO struct {
	RideDTO
	Participants   []*ParticipantDTO  `json:"participants"`   // Participants // 参与者
	PaymentSummary *PaymentSummaryDTO `json:"paymentSummary"` // Payment summary // 费用汇总
}

// MyRidesDTO Rides created and joined by the current user
// MyRidesDTO 当前用户发起与加入的拼车
type MyRidesDTO struct {
	CreatedRides []*RideDTO `json:"createdRides"` // Created by me // 我发起的
	JoinedRides  []*RideDTO `json:"joinedRides"`  // Joined by me // 我加入的
}
