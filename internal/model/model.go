// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 按模型名迁移表结构
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "User":
		return db.AutoMigrate(User{})
	case "UserToken":
		return db.AutoMigrate(UserToken{})
	case "Ride":
		return db.AutoMigrate(Ride{}, RideParticipant{})
	case "FoodOrder":
		return db.AutoMigrate(FoodOrder{}, FoodOrderParticipant{})
	}
	return nil
}

// AutoMigrateAll 迁移全部表
func AutoMigrateAll(db *gorm.DB) error {
	for _, key := range []string{"User", "UserToken", "Ride", "FoodOrder"} {
		if err := AutoMigrate(db, key); err != nil {
			return err
		}
	}
	return nil
}
