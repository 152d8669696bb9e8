package dto

import (
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"github.com/shopspring/decimal"
)

// FoodOfferRequest Discount attached to a food order
// 拼单优惠参数
type FoodOfferRequest struct {
	IsPercentage bool            `json:"isPercentage" form:"isPercentage"`     // Amount is a percentage // 是否按百分比
	Amount       decimal.Decimal `json:"amount" form:"amount" binding:"gte=0"` // Discount value // 优惠额度
}

// FoodItemRequest Ordered dish
// 菜品参数
type FoodItemRequest struct {
	Name     string          `json:"name" form:"name" binding:"required,notblank,max=128"` // Dish name // 菜名
	Quantity int64           `json:"quantity" form:"quantity" binding:"required,min=1"`    // Quantity // 数量
	Price    decimal.Decimal `json:"price" form:"price" binding:"gte=0"`                   // Unit price // 单价
}

// FoodOrderCreateRequest Request parameters for creating a food order
// 创建拼单请求参数
type FoodOrderCreateRequest struct {
	Restaurant       string              `json:"restaurant" form:"restaurant" binding:"required,notblank,max=255"`             // Restaurant // 餐厅
	MinSpent         decimal.Decimal     `json:"minSpent" form:"minSpent" binding:"gte=0"`                                     // Minimum spend // 起送金额
	Offers           []*FoodOfferRequest `json:"offers" form:"offers" binding:"omitempty,max=10,dive"`                         // Discounts // 优惠
	MaxParticipants  int64               `json:"maxParticipants" form:"maxParticipants" binding:"omitempty,min=2"`             // Participant limit including owner, 0 for none // 人数上限（含发起人），0 为不限
	TotalPrice       *decimal.Decimal    `json:"totalPrice" form:"totalPrice" binding:"required,gte=0"`                        // Total cost // 总价
	DeliveryLocation string              `json:"deliveryLocation" form:"deliveryLocation" binding:"required,notblank,max=255"` // Delivery location // 送达地点
	Cuisine          string              `json:"cuisine" form:"cuisine" binding:"max=64"`                                      // Cuisine // 菜系
	Items            []*FoodItemRequest  `json:"items" form:"items" binding:"omitempty,max=50,dive"`                           // Dishes // 菜品
	ExpiryTime       timex.Time          `json:"expiryTime" form:"expiryTime"`                                                 // Deadline // 截止时间
	Notes            string              `json:"notes" form:"notes" binding:"max=500"`                                         // Notes // 备注
}

// FoodOrderSearchRequest Food order search parameters
// 拼单搜索参数
type FoodOrderSearchRequest struct {
	Restaurant     string `json:"restaurant" form:"restaurant"`         // Restaurant substring // 餐厅关键字
	Cuisine        string `json:"cuisine" form:"cuisine"`               // Cuisine substring // 菜系关键字
	Location       string `json:"location" form:"location"`             // Delivery location substring // 送达地点关键字
	IncludeExpired bool   `json:"includeExpired" form:"includeExpired"` // Include expired orders // 是否包含已过期
}

// ---------------- DTO / Response ----------------

// FoodOfferDTO Discount
// FoodOfferDTO 优惠
type FoodOfferDTO struct {
	IsPercentage bool            `json:"isPercentage"` // Amount is a percentage // 是否按百分比
	Amount       decimal.Decimal `json:"amount"`       // Discount value // 优惠额度
}

// FoodItemDTO Dish
// FoodItemDTO 菜品
type FoodItemDTO struct {
	Name     string          `json:"name"`     // Dish name // 菜名
	Quantity int64           `json:"quantity"` // Quantity // 数量
	Price    decimal.Decimal `json:"price"`    // Unit price // 单价
}

// FoodOrderDTO Food order list item
// FoodOrderDTO 拼单列表项
type FoodOrderDTO struct {
	ID                  int64           `json:"id"`                  // Order ID // 拼单 ID
	Restaurant          string          `json:"restaurant"`          // Restaurant // 餐厅
	MinSpent            decimal.Decimal `json:"minSpent"`            // Minimum spend // 起送金额
	Offers              []*FoodOfferDTO `json:"offers"`              // Discounts // 优惠
	CurrentParticipants int64           `json:"currentParticipants"` // Participants including owner // 当前人数（含发起人）
	MaxParticipants     int64           `json:"maxParticipants"`     // Participant limit, 0 for none // 人数上限，0 为不限
	TotalPrice          decimal.Decimal `json:"totalPrice"`          // Total cost // 总价
	SplitAmount         decimal.Decimal `json:"splitAmount"`         // Amount per person // 人均金额
	DeliveryLocation    string          `json:"deliveryLocation"`    // Delivery location // 送达地点
	Cuisine             string          `json:"cuisine"`             // Cuisine // 菜系
	Items               []*FoodItemDTO  `json:"items"`               // Dishes // 菜品
	State               string          `json:"state"`               // open, full or expired // 状态
	Expired             bool            `json:"expired"`             // Expired flag // 是否已过期
	ExpiryTime          timex.Time      `json:"expiryTime"`          // Deadline // 截止时间
	Notes               string          `json:"notes"`               // Notes // 备注
	Owner               *UserBriefDTO   `json:"owner"`               // Owner // 发起人
	CreatedAt           timex.Time      `json:"createdAt"`           // Created time // 创建时间
	UpdatedAt           timex.Time      `json:"updatedAt"`           // Updated time // 更新时间
}

// FoodPaymentSummaryDTO Payment summary with minimum spend and first offer
// FoodPaymentSummaryDTO 拼单费用汇总，附带起送金额与优惠
type FoodPaymentSummaryDTO struct {
	PaymentSummaryDTO
	MinSpent decimal.Decimal `json:"minSpent"` // Minimum spend // 起送金额
	Offer    *FoodOfferDTO   `json:"offer"`    // First offer, null when none // 首个优惠，无则为 null
}

// FoodOrderDetailDTO Food order detail with participants and payment summary
// FoodOrderDetailDTO 拼单详情，含参与者与费用汇总
type FoodOrderDetailDTO struct {
	FoodOrderDTO
	Participants   []*ParticipantDTO      `json:"participants"`   // Participants // 参与者
	PaymentSummary *FoodPaymentSummaryDTO `json:"paymentSummary"` // Payment summary // 费用汇总
}

// MyFoodOrdersDTO Food orders created and joined by the current user
// MyFoodOrdersDTO 当前用户发起与加入的拼单
type MyFoodOrdersDTO struct {
	CreatedOrders []*FoodOrderDTO `json:"createdOrders"` // Created by me // 我发起的
	JoinedOrders  []*FoodOrderDTO `json:"joinedOrders"`  // Joined by me // 我加入的
}
