package pos

import (
	"context"

	"cafecraft/internal/model"
)

// CartLine 购物车行。Quantity > 0 由调用方保证。
type CartLine struct {
	ProductID uint `json:"product_id" binding:"required,min=1"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// Requirement 聚合后的单原料需求量。
type Requirement struct {
	Quantity float64
	Unit     string
}

// Requirements 原料 id → 需求量。
type Requirements map[uint]Requirement

// Catalog 商品目录只读接口。商品/配方缺失时返回 nil 而不是错误，
// 由解析器决定缺失的语义。
type Catalog interface {
	GetProduct(id uint) (*model.Product, error)
	GetRecipe(productID uint) (*model.Recipe, []model.RecipeItem, error)
	GetIngredient(id uint) (*model.Ingredient, error)
}

// Ledger 库存台账接口。批次的任何变更都必须经由这里发生。
type Ledger interface {
	SumAvailable(ingredientID uint) (float64, error)
	// ListLotsOrdered 按消耗顺序返回批次：有到期时间的在前、到期早的在前、
	// 进货早的在前，最后按 id 兜底，保证顺序确定。
	ListLotsOrdered(ingredientID uint) ([]model.InventoryLot, error)
	GetLot(lotID uint) (*model.InventoryLot, error)
	ReduceLot(lotID uint, newQty float64) error
	DeleteLot(lotID uint) error
	CreateLot(lot *model.InventoryLot) error
}

// ConsumedTotal 某订单在某原料上的历史消耗合计（按原料+单位分组）。
type ConsumedTotal struct {
	IngredientID uint
	Unit         string
	Quantity     float64
}

// MovementLog 台账变动记录接口，只追加。
type MovementLog interface {
	Record(m *model.InventoryMovement) error
	// SumConsumed 汇总订单的全部 consume 变动，作废回补以此为准。
	SumConsumed(orderID uint) ([]ConsumedTotal, error)
	// HasReference 判断某外部幂等标识是否已入账。
	HasReference(kind model.MovementKind, reference string) (bool, error)
}

// OrderStore 订单/订单行/收款的存取接口。
type OrderStore interface {
	CreateOrder(o *model.Order) error
	GetOrder(id uint) (*model.Order, error)
	CreateOrderItems(items []model.OrderItem) error
	ListOrderItems(orderID uint) ([]model.OrderItem, error)
	// UpdateStatusGuarded 带状态前置条件的更新：只有当前状态等于 expect 时
	// 才写入 fields，返回命中的行数。
	UpdateStatusGuarded(orderID uint, expect model.OrderStatus, fields map[string]any) (int64, error)
	CreatePayment(p *model.Payment) error
}

// AuditLog 审计日志接口，只追加。
type AuditLog interface {
	Record(e *model.AuditEntry) error
}

// Store 一次工作单元内可见的全部端口。实现方保证同一 Store
// 上的所有操作落在同一个事务里。
type Store interface {
	Catalog() Catalog
	Ledger() Ledger
	Movements() MovementLog
	Orders() OrderStore
	Audit() AuditLog
}

// TxRunner 以单个可串行化事务执行 fn；fn 返回错误则整体回滚，
// 不留下任何部分写入。
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(s Store) error) error
}
