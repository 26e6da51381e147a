package model

import (
	"time"

	"gorm.io/gorm"
)

// Product 在售商品：名称、分类、单价、上下架状态
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string  `gorm:"size:128;uniqueIndex;not null" json:"name"`
	Category string  `gorm:"size:64;not null;index" json:"category"`
	Price    float64 `gorm:"not null" json:"price"`
	// IsActive 为软下架标记：历史订单行仍引用该商品，下架只影响新订单。
	IsActive bool `gorm:"not null;default:true" json:"is_active"`
}

func (Product) TableName() string { return "products" }

// Recipe 商品配方，与在售商品一一对应。
type Recipe struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProductID uint    `gorm:"uniqueIndex;not null" json:"product_id"`
	YieldQty  float64 `gorm:"not null;default:1" json:"yield_qty"`
	YieldUnit string  `gorm:"size:16" json:"yield_unit"`
}

func (Recipe) TableName() string { return "recipes" }

// RecipeItem 配方明细：每产出单位消耗多少某原料。
// 同一配方内引用同一原料的明细必须使用同一单位。
type RecipeItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RecipeID     uint    `gorm:"not null;index" json:"recipe_id"`
	IngredientID uint    `gorm:"not null;index" json:"ingredient_id"`
	Quantity     float64 `gorm:"not null" json:"quantity"`
	Unit         string  `gorm:"size:16;not null" json:"unit"`
	// WastageFactor 损耗系数，0.05 表示额外消耗 5%。
	WastageFactor float64 `gorm:"not null;default:0" json:"wastage_factor"`
}

func (RecipeItem) TableName() string { return "recipe_items" }
