package model

import (
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	TableNameFoodOrder            = "food_order"
	TableNameFoodOrderParticipant = "food_order_participant"
)

// FoodOffer 存储在 offers JSON 列中
type FoodOffer struct {
	IsPercentage bool            `json:"isPercentage"`
	Amount       decimal.Decimal `json:"amount"`
}

// FoodItem 存储在 items JSON 列中
type FoodItem struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// FoodOrder mapped from table <food_order>
type FoodOrder struct {
	ID                  int64                          `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	CreatedBy           int64                          `gorm:"column:created_by;not null;index:idx_food_order_created_by" json:"createdBy" form:"createdBy"`
	Restaurant          string                         `gorm:"column:restaurant;size:255;not null;index:idx_food_order_restaurant" json:"restaurant" form:"restaurant"`
	MinSpent            decimal.Decimal                `gorm:"column:min_spent;type:decimal(12,2);not null" json:"minSpent" form:"minSpent"`
	Offers              datatypes.JSONSlice[FoodOffer] `gorm:"column:offers" json:"offers" form:"offers"`
	CurrentParticipants int64                          `gorm:"column:current_participants;not null;default:1" json:"currentParticipants" form:"currentParticipants"`
	MaxParticipants     int64                          `gorm:"column:max_participants;not null;default:0" json:"maxParticipants" form:"maxParticipants"`
	TotalPrice          decimal.Decimal                `gorm:"column:total_price;type:decimal(12,2);not null" json:"totalPrice" form:"totalPrice"`
	DeliveryLocation    string                         `gorm:"column:delivery_location;size:255;not null" json:"deliveryLocation" form:"deliveryLocation"`
	Cuisine             string                         `gorm:"column:cuisine;size:100" json:"cuisine" form:"cuisine"`
	Items               datatypes.JSONSlice[FoodItem]  `gorm:"column:items" json:"items" form:"items"`
	ExpiryTime          timex.Time                     `gorm:"column:expiry_time;not null;index:idx_food_order_expiry,priority:2" json:"expiryTime" form:"expiryTime"`
	Expired             int64                          `gorm:"column:expired;not null;default:0;index:idx_food_order_expiry,priority:1" json:"expired" form:"expired"`
	Notes               string                         `gorm:"column:notes;size:500" json:"notes" form:"notes"`
	CreatedAt           timex.Time                     `gorm:"column:created_at;default:NULL;autoCreateTime:false;index:idx_food_order_created_at" json:"createdAt" form:"createdAt"`
	UpdatedAt           timex.Time                     `gorm:"column:updated_at;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName FoodOrder's table name
func (*FoodOrder) TableName() string {
	return TableNameFoodOrder
}

// FoodOrderParticipant mapped from table <food_order_participant>
type FoodOrderParticipant struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	FoodOrderID int64      `gorm:"column:food_order_id;not null;uniqueIndex:uk_food_order_participant,priority:1" json:"foodOrderId" form:"foodOrderId"`
	UID         int64      `gorm:"column:uid;not null;uniqueIndex:uk_food_order_participant,priority:2;index:idx_food_order_participant_uid" json:"uid" form:"uid"`
	JoinedAt    timex.Time `gorm:"column:joined_at;not null" json:"joinedAt" form:"joinedAt"`
}

// TableName FoodOrderParticipant's table name
func (*FoodOrderParticipant) TableName() string {
	return TableNameFoodOrderParticipant
}
