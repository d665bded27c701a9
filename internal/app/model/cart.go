package model

import (
	"time"
)

// Cart is the single mutable basket a user owns.
type Cart struct {
	ID     uint `gorm:"primarykey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	// Version is bumped on every mutation, under the cart row lock.
	Version   int        `gorm:"not null;default:0" json:"version"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	// TotalPrice is derived from Items, never stored.
	TotalPrice float64 `gorm:"-" json:"total_price"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is one line of a cart. Price is the unit price times quantity at
// the moment the line was first added and is never recomputed.
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CartID    uint      `gorm:"not null;index" json:"-"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	Price     float64   `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
