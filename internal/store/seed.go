package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"cafecraft/internal/model"
	"cafecraft/internal/rbac"
)

// SeedDemo 写入一套演示数据：操作员、原料、商品配方与初始批次。
// 已有商品时直接跳过，可重复调用。
func (s *Store) SeedDemo() (bool, error) {
	n, err := s.CountProducts()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := []model.User{
			{Username: "owner", FullName: "老板", Role: rbac.RoleOwner, IsActive: true},
			{Username: "cashier", FullName: "收银员", Role: rbac.RoleCashier, IsActive: true},
			{Username: "stock", FullName: "库管", Role: rbac.RoleInventoryStaff, IsActive: true},
		}
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("创建演示用户失败: %w", err)
		}

		ingredients := []model.Ingredient{
			{Name: "咖啡豆", Unit: "kg", CostPerUnit: 120, ReorderLevel: 1, IsActive: true},
			{Name: "牛奶", Unit: "L", CostPerUnit: 12, ReorderLevel: 5, IsActive: true},
			{Name: "糖浆", Unit: "L", CostPerUnit: 45, ReorderLevel: 1, IsActive: true},
			{Name: "纸杯", Unit: "pcs", CostPerUnit: 0.8, ReorderLevel: 50, IsActive: true},
		}
		if err := tx.Create(&ingredients).Error; err != nil {
			return fmt.Errorf("创建演示原料失败: %w", err)
		}

		products := []model.Product{
			{Name: "拿铁", Category: "咖啡", Price: 28, IsActive: true},
			{Name: "美式", Category: "咖啡", Price: 22, IsActive: true},
			{Name: "香草糖浆拿铁", Category: "咖啡", Price: 32, IsActive: true},
		}
		if err := tx.Create(&products).Error; err != nil {
			return fmt.Errorf("创建演示商品失败: %w", err)
		}

		recipes := map[uint][]model.RecipeItem{
			products[0].ID: {
				{IngredientID: ingredients[0].ID, Quantity: 0.018, Unit: "kg", WastageFactor: 0.05},
				{IngredientID: ingredients[1].ID, Quantity: 0.2, Unit: "L", WastageFactor: 0.02},
				{IngredientID: ingredients[3].ID, Quantity: 1, Unit: "pcs"},
			},
			products[1].ID: {
				{IngredientID: ingredients[0].ID, Quantity: 0.018, Unit: "kg", WastageFactor: 0.05},
				{IngredientID: ingredients[3].ID, Quantity: 1, Unit: "pcs"},
			},
			products[2].ID: {
				{IngredientID: ingredients[0].ID, Quantity: 0.018, Unit: "kg", WastageFactor: 0.05},
				{IngredientID: ingredients[1].ID, Quantity: 0.2, Unit: "L", WastageFactor: 0.02},
				{IngredientID: ingredients[2].ID, Quantity: 0.02, Unit: "L"},
				{IngredientID: ingredients[3].ID, Quantity: 1, Unit: "pcs"},
			},
		}
		for productID, items := range recipes {
			recipe := model.Recipe{ProductID: productID, YieldQty: 1, YieldUnit: "cup"}
			if err := tx.Create(&recipe).Error; err != nil {
				return fmt.Errorf("创建演示配方失败: %w", err)
			}
			for i := range items {
				items[i].RecipeID = recipe.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("创建演示配方明细失败: %w", err)
			}
		}

		weekOut := time.Now().AddDate(0, 0, 7)
		lots := []model.InventoryLot{
			{IngredientID: ingredients[0].ID, Quantity: 5, Unit: "kg", RestockedAt: time.Now(), Supplier: "演示供应商"},
			{IngredientID: ingredients[1].ID, Quantity: 20, Unit: "L", ExpiresAt: &weekOut, RestockedAt: time.Now(), Supplier: "演示供应商"},
			{IngredientID: ingredients[2].ID, Quantity: 2, Unit: "L", RestockedAt: time.Now(), Supplier: "演示供应商"},
			{IngredientID: ingredients[3].ID, Quantity: 500, Unit: "pcs", RestockedAt: time.Now(), Supplier: "演示供应商"},
		}
		if err := tx.Create(&lots).Error; err != nil {
			return fmt.Errorf("创建演示批次失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
