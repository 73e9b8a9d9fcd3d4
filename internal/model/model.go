// Package model 数据库模型
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 创建或补齐数据表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Note{})
}
