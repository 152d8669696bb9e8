package model

import (
	"github.com/haierkeys/campus-share-service/pkg/timex"

	"github.com/shopspring/decimal"
)

const (
	TableNameRide            = "ride"
	TableNameRideParticipant = "ride_participant"
)

// Ride mapped from table <ride>
type Ride struct {
	ID             int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	CreatedBy      int64           `gorm:"column:created_by;not null;index:idx_ride_created_by" json:"createdBy" form:"createdBy"`
	FromLocation   string          `gorm:"column:from_location;size:255;not null" json:"from" form:"from"`
	ToLocation     string          `gorm:"column:to_location;size:255;not null;index:idx_ride_to_location" json:"to" form:"to"`
	VehicleDetails string          `gorm:"column:vehicle_details;size:255" json:"vehicleDetails" form:"vehicleDetails"`
	MaxSeats       int64           `gorm:"column:max_seats;not null" json:"maxSeats" form:"maxSeats"`
	CurrentSeats   int64           `gorm:"column:current_seats;not null;default:0" json:"currentSeats" form:"currentSeats"`
	TotalPrice     decimal.Decimal `gorm:"column:total_price;type:decimal(12,2);not null" json:"totalPrice" form:"totalPrice"`
	ExpiryTime     timex.Time      `gorm:"column:expiry_time;not null;index:idx_ride_expiry,priority:2" json:"expiryTime" form:"expiryTime"`
	Expired        int64           `gorm:"column:expired;not null;default:0;index:idx_ride_expiry,priority:1" json:"expired" form:"expired"`
	Notes          string          `gorm:"column:notes;size:500" json:"notes" form:"notes"`
	CreatedAt      timex.Time      `gorm:"column:created_at;default:NULL;autoCreateTime:false;index:idx_ride_created_at" json:"createdAt" form:"createdAt"`
	UpdatedAt      timex.Time      `gorm:"column:updated_at;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Ride's table name
func (*Ride) TableName() string {
	return TableNameRide
}

// RideParticipant mapped from table <ride_participant>
type RideParticipant struct {
	ID       int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	RideID   int64      `gorm:"column:ride_id;not null;uniqueIndex:uk_ride_participant,priority:1" json:"rideId" form:"rideId"`
	UID      int64      `gorm:"column:uid;not null;uniqueIndex:uk_ride_participant,priority:2;index:idx_ride_participant_uid" json:"uid" form:"uid"`
	JoinedAt timex.Time `gorm:"column:joined_at;not null" json:"joinedAt" form:"joinedAt"`
}

// TableName RideParticipant's table name
func (*RideParticipant) TableName() string {
	return TableNameRideParticipant
}
