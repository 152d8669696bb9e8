package domain

import "github.com/shopspring/decimal"

// FoodOffer 优惠，IsPercentage 为 true 时 Amount 为百分比
type FoodOffer struct {
	IsPercentage bool            `json:"isPercentage"`
	Amount       decimal.Decimal `json:"amount"`
}

// FoodItem 菜品
type FoodItem struct {
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// FoodOrder 拼单
type FoodOrder struct {
	Pool
	Restaurant       string
	MinSpent         decimal.Decimal
	Offers           []FoodOffer
	DeliveryLocation string
	Cuisine          string
	Items            []FoodItem
}

// CurrentParticipants 包含发起人的人数
func (f *FoodOrder) CurrentParticipants() int64 {
	return f.HeadCount
}

// MaxParticipants 人数上限，0 表示不限
func (f *FoodOrder) MaxParticipants() int64 {
	return f.CapacityLimit
}
