package model

import "time"

// PaymentStatus 收款记录状态。
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentVoided   PaymentStatus = "voided"
)

// Payment 订单收款记录，归属订单、只追加。
type Payment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OrderID uint          `gorm:"not null;index" json:"order_id"`
	Method  string        `gorm:"size:32;not null" json:"method"`
	Amount  float64       `gorm:"not null" json:"amount"`
	Status  PaymentStatus `gorm:"size:16;not null" json:"status"`
	// Reference 线上支付凭证号（GCash/银行转账），现金为空。
	Reference string `gorm:"size:64" json:"reference"`
}

func (Payment) TableName() string { return "payments" }
