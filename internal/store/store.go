// Package store 是 pos 端口的 GORM/SQLite 实现。
// 所有生命周期操作都通过 RunInTx 的可串行化事务进入，
// 同一 Store 视图内的读写都落在同一个事务里。
package store

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"cafecraft/internal/model"
	"cafecraft/internal/pos"
)

// Store 外层句柄：事务入口 + 只读查询。
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store { return &Store{db: db} }

// AutoMigrate 建全部表。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Ingredient{},
		&model.Recipe{},
		&model.RecipeItem{},
		&model.InventoryLot{},
		&model.InventoryMovement{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.AuditEntry{},
	)
}

// RunInTx 以可串行化隔离级别执行 fn；fn 报错整体回滚。
func (s *Store) RunInTx(ctx context.Context, fn func(ps pos.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

var _ pos.TxRunner = (*Store)(nil)

// txStore 单事务视图，实现 pos 的全部端口。
type txStore struct {
	db *gorm.DB
}

var _ pos.Store = (*txStore)(nil)

func (t *txStore) Catalog() pos.Catalog       { return t }
func (t *txStore) Ledger() pos.Ledger         { return t }
func (t *txStore) Movements() pos.MovementLog { return movementLog{db: t.db} }
func (t *txStore) Orders() pos.OrderStore     { return t }
func (t *txStore) Audit() pos.AuditLog        { return auditLog{db: t.db} }

// ---- Catalog ----

func (t *txStore) GetProduct(id uint) (*model.Product, error) {
	var p model.Product
	if err := t.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (t *txStore) GetRecipe(productID uint) (*model.Recipe, []model.RecipeItem, error) {
	var r model.Recipe
	if err := t.db.Where("product_id = ?", productID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	var items []model.RecipeItem
	if err := t.db.Where("recipe_id = ?", r.ID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return &r, items, nil
}

func (t *txStore) GetIngredient(id uint) (*model.Ingredient, error) {
	var ing model.Ingredient
	if err := t.db.First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ing, nil
}

// ---- Ledger ----

func (t *txStore) SumAvailable(ingredientID uint) (float64, error) {
	var total float64
	err := t.db.Model(&model.InventoryLot{}).
		Where("ingredient_id = ?", ingredientID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return total, err
}

func (t *txStore) ListLotsOrdered(ingredientID uint) ([]model.InventoryLot, error) {
	var lots []model.InventoryLot
	// 先到期先消耗：无到期时间的批次排最后，id 兜底保证顺序确定。
	err := t.db.Where("ingredient_id = ?", ingredientID).
		Order("expires_at IS NULL, expires_at ASC, restocked_at ASC, id ASC").
		Find(&lots).Error
	return lots, err
}

func (t *txStore) GetLot(lotID uint) (*model.InventoryLot, error) {
	var lot model.InventoryLot
	if err := t.db.First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lot, nil
}

func (t *txStore) ReduceLot(lotID uint, newQty float64) error {
	return t.db.Model(&model.InventoryLot{}).
		Where("id = ?", lotID).
		Update("quantity", newQty).Error
}

func (t *txStore) DeleteLot(lotID uint) error {
	return t.db.Delete(&model.InventoryLot{}, lotID).Error
}

func (t *txStore) CreateLot(lot *model.InventoryLot) error {
	return t.db.Create(lot).Error
}

// ---- MovementLog ----

type movementLog struct {
	db *gorm.DB
}

func (m movementLog) Record(mv *model.InventoryMovement) error {
	return m.db.Create(mv).Error
}

func (m movementLog) SumConsumed(orderID uint) ([]pos.ConsumedTotal, error) {
	var out []pos.ConsumedTotal
	// consume 的 Quantity 为负，取反得到消耗量。
	err := m.db.Model(&model.InventoryMovement{}).
		Where("order_id = ? AND kind = ?", orderID, model.MovementConsume).
		Select("ingredient_id, unit, COALESCE(SUM(-quantity), 0) AS quantity").
		Group("ingredient_id, unit").
		Order("ingredient_id ASC").
		Scan(&out).Error
	return out, err
}

func (m movementLog) HasReference(kind model.MovementKind, reference string) (bool, error) {
	var n int64
	err := m.db.Model(&model.InventoryMovement{}).
		Where("kind = ? AND reference = ?", kind, reference).
		Count(&n).Error
	return n > 0, err
}

// ---- OrderStore ----

func (t *txStore) CreateOrder(o *model.Order) error { return t.db.Create(o).Error }

func (t *txStore) GetOrder(id uint) (*model.Order, error) {
	var o model.Order
	if err := t.db.First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (t *txStore) CreateOrderItems(items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return t.db.Create(&items).Error
}

func (t *txStore) ListOrderItems(orderID uint) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := t.db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error
	return items, err
}

func (t *txStore) UpdateStatusGuarded(orderID uint, expect model.OrderStatus, fields map[string]any) (int64, error) {
	res := t.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, expect).
		Updates(fields)
	return res.RowsAffected, res.Error
}

func (t *txStore) CreatePayment(p *model.Payment) error { return t.db.Create(p).Error }

// ---- AuditLog ----

type auditLog struct {
	db *gorm.DB
}

func (a auditLog) Record(e *model.AuditEntry) error { return a.db.Create(e).Error }
