package model

import (
	"time"
)

type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"not null;size:255;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"not null;check:chk_products_price,price >= 0" json:"price"`
	Stock       int       `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	ImageURL    *string   `gorm:"size:1024" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
