package pos

import (
	"sort"

	"cafecraft/internal/model"
)

// 纯内存的端口假实现，只给解析/校验/扣减的单元测试用。
// 生命周期级别的测试走真实 SQLite，见 engine_test。

type fakeCatalog struct {
	products    map[uint]*model.Product
	recipes     map[uint]*model.Recipe
	recipeItems map[uint][]model.RecipeItem // key: productID
	ingredients map[uint]*model.Ingredient

	ingredientErr error
}

func (f *fakeCatalog) GetProduct(id uint) (*model.Product, error) { return f.products[id], nil }

func (f *fakeCatalog) GetRecipe(productID uint) (*model.Recipe, []model.RecipeItem, error) {
	r := f.recipes[productID]
	if r == nil {
		return nil, nil, nil
	}
	return r, f.recipeItems[productID], nil
}

func (f *fakeCatalog) GetIngredient(id uint) (*model.Ingredient, error) {
	if f.ingredientErr != nil {
		return nil, f.ingredientErr
	}
	return f.ingredients[id], nil
}

type fakeLedger struct {
	lots   map[uint]*model.InventoryLot
	nextID uint
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{lots: map[uint]*model.InventoryLot{}, nextID: 1}
}

func (f *fakeLedger) add(lot model.InventoryLot) uint {
	lot.ID = f.nextID
	f.nextID++
	f.lots[lot.ID] = &lot
	return lot.ID
}

func (f *fakeLedger) SumAvailable(ingredientID uint) (float64, error) {
	total := 0.0
	for _, lot := range f.lots {
		if lot.IngredientID == ingredientID {
			total += lot.Quantity
		}
	}
	return total, nil
}

func (f *fakeLedger) ListLotsOrdered(ingredientID uint) ([]model.InventoryLot, error) {
	var out []model.InventoryLot
	for _, lot := range f.lots {
		if lot.IngredientID == ingredientID {
			out = append(out, *lot)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt != nil:
			return false
		case a.ExpiresAt != nil && b.ExpiresAt == nil:
			return true
		case a.ExpiresAt != nil && b.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.ExpiresAt.Before(*b.ExpiresAt)
		case !a.RestockedAt.Equal(b.RestockedAt):
			return a.RestockedAt.Before(b.RestockedAt)
		default:
			return a.ID < b.ID
		}
	})
	return out, nil
}

func (f *fakeLedger) GetLot(lotID uint) (*model.InventoryLot, error) { return f.lots[lotID], nil }

func (f *fakeLedger) ReduceLot(lotID uint, newQty float64) error {
	f.lots[lotID].Quantity = newQty
	return nil
}

func (f *fakeLedger) DeleteLot(lotID uint) error {
	delete(f.lots, lotID)
	return nil
}

func (f *fakeLedger) CreateLot(lot *model.InventoryLot) error {
	lot.ID = f.nextID
	f.nextID++
	f.lots[lot.ID] = lot
	return nil
}

type fakeMovements struct {
	records []model.InventoryMovement
}

func (f *fakeMovements) Record(m *model.InventoryMovement) error {
	f.records = append(f.records, *m)
	return nil
}

func (f *fakeMovements) SumConsumed(orderID uint) ([]ConsumedTotal, error) {
	byKey := map[uint]*ConsumedTotal{}
	for _, m := range f.records {
		if m.Kind != model.MovementConsume || m.OrderID == nil || *m.OrderID != orderID {
			continue
		}
		t, ok := byKey[m.IngredientID]
		if !ok {
			t = &ConsumedTotal{IngredientID: m.IngredientID, Unit: m.Unit}
			byKey[m.IngredientID] = t
		}
		t.Quantity += -m.Quantity
	}
	var out []ConsumedTotal
	for _, t := range byKey {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IngredientID < out[j].IngredientID })
	return out, nil
}

func (f *fakeMovements) HasReference(kind model.MovementKind, reference string) (bool, error) {
	for _, m := range f.records {
		if m.Kind == kind && m.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}
