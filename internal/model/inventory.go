package model

import (
	"time"

	"gorm.io/gorm"
)

// InventoryLot 一批原料库存：独立数量与可选到期时间。
// 批次数量永不为负；扣减到 0 即删除整批。
type InventoryLot struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	IngredientID uint    `gorm:"not null;index" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
	Unit         string  `gorm:"size:16;not null" json:"unit"`
	// ExpiresAt 为空表示不过期；消耗顺序上有到期时间的批次优先。
	ExpiresAt   *time.Time `gorm:"index" json:"expires_at"`
	RestockedAt time.Time  `gorm:"not null;index" json:"restocked_at"`
	Supplier    string     `gorm:"size:128" json:"supplier"`
	Location    string     `gorm:"size:64" json:"location"`
}

func (InventoryLot) TableName() string { return "inventory_lots" }

// MovementKind 台账变动类型。
type MovementKind string

const (
	MovementConsume MovementKind = "consume" // 销售扣减
	MovementRefund  MovementKind = "refund"  // 作废回补
	MovementRestock MovementKind = "restock" // 进货
	MovementAdjust  MovementKind = "adjust"  // 人工盘点调整
	MovementWaste   MovementKind = "waste"   // 报损
)

// InventoryMovement 台账变动的不可变审计记录。
// 只追加、不更新、不删除；作废回补的数量就是从这里重放出来的。
type InventoryMovement struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	IngredientID uint `gorm:"not null;index" json:"ingredient_id"`
	// Quantity 带符号：consume/waste 为负，refund/restock 为正，adjust 取差值符号。
	Quantity float64      `gorm:"not null" json:"quantity"`
	Unit     string       `gorm:"size:16;not null" json:"unit"`
	Kind     MovementKind `gorm:"size:16;not null;index" json:"kind"`
	// OrderID 关联触发变动的订单；人工操作为空。
	OrderID *uint `gorm:"index" json:"order_id"`
	UserID  uint  `gorm:"not null" json:"user_id"`
	// Reference 外部幂等标识（如供货单号），用于去重。
	Reference string `gorm:"size:64;index" json:"reference"`
	Reason    string `gorm:"size:255" json:"reason"`
}

func (InventoryMovement) TableName() string { return "inventory_movements" }
