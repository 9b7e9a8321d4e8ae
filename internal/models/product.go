package models

import "time"

// Product represents a catalog item.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text;not null;default:''"`
	Image       string    `json:"image" gorm:"type:text;not null"`
	Version     int       `json:"version" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime:false;index"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// TableName pins the table name regardless of naming strategy.
func (Product) TableName() string { return "products" }
