package model

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus 订单状态机：draft → completed / voided，completed → voided。
// 两个终态都不可再流转（voided 上的再次作废按幂等成功处理）。
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderCompleted OrderStatus = "completed"
	OrderVoided    OrderStatus = "voided"
)

// Order 销售订单
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderNo string `gorm:"size:64;uniqueIndex;not null" json:"order_no"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	// TotalAmount 为折后总额；draft 阶段恒为 0，finalize 时重算。
	TotalAmount     float64     `gorm:"not null;default:0" json:"total_amount"`
	DiscountPercent float64     `gorm:"not null;default:0" json:"discount_percent"`
	Status          OrderStatus `gorm:"size:16;not null;default:draft;index" json:"status"`
	PaymentMethod   string      `gorm:"size:32" json:"payment_method"`
	OrderName       string      `gorm:"size:128" json:"order_name"`

	CompletedAt *time.Time `json:"completed_at"`
	VoidedAt    *time.Time `json:"voided_at"`
	VoidReason  string     `gorm:"size:255" json:"void_reason"`
	VoidedBy    *uint      `json:"voided_by"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 订单行。订单离开 draft 后不再变更。
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
	Subtotal  float64 `gorm:"not null" json:"subtotal"`
}

func (OrderItem) TableName() string { return "order_items" }
