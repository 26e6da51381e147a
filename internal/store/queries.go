package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"cafecraft/internal/model"
)

// 本文件是 HTTP 层用到的只读查询和目录维护写入。
// 这些操作不经过生命周期引擎，也不触碰库存批次。

func (s *Store) ListProducts(activeOnly bool) ([]model.Product, error) {
	var list []model.Product
	q := s.db.Order("category ASC, name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&list).Error
	return list, err
}

func (s *Store) CreateProduct(p *model.Product) error { return s.db.Create(p).Error }

// DeactivateProduct 软下架：历史订单行不受影响。
func (s *Store) DeactivateProduct(id uint) (int64, error) {
	res := s.db.Model(&model.Product{}).Where("id = ?", id).Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (s *Store) ListIngredients() ([]model.Ingredient, error) {
	var list []model.Ingredient
	err := s.db.Order("name ASC").Find(&list).Error
	return list, err
}

func (s *Store) CreateIngredient(ing *model.Ingredient) error { return s.db.Create(ing).Error }

// SetRecipe 覆盖式写入商品配方：旧配方明细整体换新。
func (s *Store) SetRecipe(productID uint, yieldQty float64, yieldUnit string, items []model.RecipeItem) (*model.Recipe, error) {
	var recipe model.Recipe
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("product_id = ?", productID).First(&recipe).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			recipe = model.Recipe{ProductID: productID, YieldQty: yieldQty, YieldUnit: yieldUnit}
			if err := tx.Create(&recipe).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			recipe.YieldQty = yieldQty
			recipe.YieldUnit = yieldUnit
			if err := tx.Save(&recipe).Error; err != nil {
				return err
			}
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&model.RecipeItem{}).Error; err != nil {
				return err
			}
		}
		for i := range items {
			items[i].RecipeID = recipe.ID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *Store) ListLots(ingredientID uint) ([]model.InventoryLot, error) {
	var lots []model.InventoryLot
	q := s.db.Order("ingredient_id ASC, expires_at IS NULL, expires_at ASC, id ASC")
	if ingredientID > 0 {
		q = q.Where("ingredient_id = ?", ingredientID)
	}
	err := q.Find(&lots).Error
	return lots, err
}

func (s *Store) ListMovements(orderID uint, limit int) ([]model.InventoryMovement, error) {
	var moves []model.InventoryMovement
	q := s.db.Order("id DESC")
	if orderID > 0 {
		q = q.Where("order_id = ?", orderID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&moves).Error
	return moves, err
}

// LowStockRow 低库存告警行：原料现存总量已低于补货线。
type LowStockRow struct {
	IngredientID uint    `json:"ingredient_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	ReorderLevel float64 `json:"reorder_level"`
	Available    float64 `json:"available"`
}

func (s *Store) LowStock() ([]LowStockRow, error) {
	var rows []LowStockRow
	err := s.db.Model(&model.Ingredient{}).
		Select(`ingredients.id AS ingredient_id, ingredients.name, ingredients.unit,
			ingredients.reorder_level,
			COALESCE((SELECT SUM(l.quantity) FROM inventory_lots l
				WHERE l.ingredient_id = ingredients.id AND l.deleted_at IS NULL), 0) AS available`).
		Where("ingredients.is_active = ?", true).
		Having("available < ingredients.reorder_level").
		Group("ingredients.id").
		Order("ingredients.name ASC").
		Scan(&rows).Error
	return rows, err
}

// InventoryValueRow 单个原料的库存价值：现存总量 × 单位成本。
type InventoryValueRow struct {
	IngredientID uint    `json:"ingredient_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	CostPerUnit  float64 `json:"cost_per_unit"`
	Available    float64 `json:"available"`
	Value        float64 `json:"value"`
}

// InventoryValue 按原料汇总在库价值，并返回合计金额。
func (s *Store) InventoryValue() ([]InventoryValueRow, float64, error) {
	var rows []InventoryValueRow
	err := s.db.Model(&model.Ingredient{}).
		Select(`ingredients.id AS ingredient_id, ingredients.name, ingredients.unit,
			ingredients.cost_per_unit,
			COALESCE((SELECT SUM(l.quantity) FROM inventory_lots l
				WHERE l.ingredient_id = ingredients.id AND l.deleted_at IS NULL), 0) AS available,
			ingredients.cost_per_unit * COALESCE((SELECT SUM(l.quantity) FROM inventory_lots l
				WHERE l.ingredient_id = ingredients.id AND l.deleted_at IS NULL), 0) AS value`).
		Where("ingredients.is_active = ?", true).
		Group("ingredients.id").
		Order("ingredients.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	total := 0.0
	for _, r := range rows {
		total += r.Value
	}
	return rows, total, nil
}

func (s *Store) RecentOrders(limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	var orders []model.Order
	err := s.db.Order("id DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

// OrderDetails 订单 + 订单行 + 收款记录。
type OrderDetails struct {
	Order    model.Order       `json:"order"`
	Items    []model.OrderItem `json:"items"`
	Payments []model.Payment   `json:"payments"`
}

func (s *Store) GetOrderDetails(id uint) (*OrderDetails, error) {
	var o model.Order
	if err := s.db.First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var d OrderDetails
	d.Order = o
	if err := s.db.Where("order_id = ?", id).Order("id ASC").Find(&d.Items).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("order_id = ?", id).Order("id ASC").Find(&d.Payments).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// DailySales 当日已完成订单的笔数与总额。
type DailySales struct {
	Date       string  `json:"date"`
	OrderCount int64   `json:"order_count"`
	TotalSales float64 `json:"total_sales"`
}

func (s *Store) GetDailySales(day time.Time) (DailySales, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var out DailySales
	err := s.db.Model(&model.Order{}).
		Where("status = ? AND completed_at >= ? AND completed_at < ?", model.OrderCompleted, start, end).
		Select("COUNT(id) AS order_count, COALESCE(SUM(total_amount), 0) AS total_sales").
		Scan(&out).Error
	// Scan 会整体覆盖目标结构，日期要在扫描之后再填。
	out.Date = start.Format("2006-01-02")
	return out, err
}

func (s *Store) GetUser(id uint) (*model.User, error) {
	var u model.User
	if err := s.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(u *model.User) error { return s.db.Create(u).Error }

func (s *Store) CountProducts() (int64, error) {
	var n int64
	err := s.db.Model(&model.Product{}).Count(&n).Error
	return n, err
}
