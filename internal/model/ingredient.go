package model

import (
	"time"

	"gorm.io/gorm"
)

// Ingredient 库存原料：计量单位 + 补货阈值
type Ingredient struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Unit string `gorm:"size:16;not null" json:"unit"`
	// CostPerUnit 每 Unit 的进货成本，用于库存价值报表。
	CostPerUnit float64 `gorm:"not null;default:0" json:"cost_per_unit"`
	// ReorderLevel 低库存告警线（按 Unit 计）。
	ReorderLevel float64 `gorm:"not null;default:10" json:"reorder_level"`
	// IsActive 软停用：停用原料不再出现在新配方里，但不阻止历史台账回补。
	IsActive bool `gorm:"not null;default:true" json:"is_active"`
}

func (Ingredient) TableName() string { return "ingredients" }
