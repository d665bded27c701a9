package model

import (
	"time"
)

// Order is an immutable snapshot of line items and their captured prices.
type Order struct {
	ID         uint        `gorm:"primarykey" json:"id"`
	UserID     uint        `gorm:"not null;index" json:"user_id"`
	TotalPrice float64     `gorm:"not null" json:"total_price"`
	Items      []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time   `gorm:"index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem has no foreign key to products so history survives catalog deletes.
type OrderItem struct {
	ID        uint    `gorm:"primarykey" json:"-"`
	OrderID   uint    `gorm:"not null;index" json:"-"`
	Position  int     `gorm:"not null" json:"-"`
	ProductID uint    `gorm:"not null" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
