package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafecraft/internal/model"
)

func latteCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[uint]*model.Product{
			1: {ID: 1, Name: "拿铁", Price: 28, IsActive: true},
			2: {ID: 2, Name: "限定特调", Price: 36, IsActive: true}, // 无配方
			3: {ID: 3, Name: "下架单品", Price: 18, IsActive: false},
		},
		recipes: map[uint]*model.Recipe{
			1: {ID: 1, ProductID: 1, YieldQty: 1, YieldUnit: "cup"},
		},
		recipeItems: map[uint][]model.RecipeItem{
			1: {
				{IngredientID: 10, Quantity: 0.03, Unit: "kg", WastageFactor: 0.05},
				{IngredientID: 11, Quantity: 0.2, Unit: "L"},
			},
		},
		ingredients: map[uint]*model.Ingredient{
			10: {ID: 10, Name: "咖啡豆", Unit: "kg"},
			11: {ID: 11, Name: "牛奶", Unit: "L"},
		},
	}
}

func TestResolveAppliesWastageAndAggregates(t *testing.T) {
	cat := latteCatalog()

	req, errs := Resolve(cat, []CartLine{{ProductID: 1, Quantity: 3}}, true)
	require.Empty(t, errs)

	// 0.03 * 3 * 1.05 = 0.0945
	assert.InDelta(t, 0.0945, req[10].Quantity, Epsilon)
	assert.Equal(t, "kg", req[10].Unit)
	assert.InDelta(t, 0.6, req[11].Quantity, Epsilon)
}

func TestResolveAggregatesAcrossLines(t *testing.T) {
	cat := latteCatalog()

	req, errs := Resolve(cat, []CartLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 1, Quantity: 2},
	}, true)
	require.Empty(t, errs)

	assert.InDelta(t, 0.0945, req[10].Quantity, Epsilon)
}

func TestResolveMissingRecipeStrict(t *testing.T) {
	cat := latteCatalog()

	_, errs := Resolve(cat, []CartLine{{ProductID: 2, Quantity: 1}}, true)
	require.Len(t, errs, 1)
	assert.Equal(t, KindMissingRecipe, errs[0].Kind)
}

func TestResolveMissingRecipeLenientSkips(t *testing.T) {
	cat := latteCatalog()

	req, errs := Resolve(cat, []CartLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 5},
	}, false)
	assert.Empty(t, errs)
	// 无配方商品不占库存，拿铁的需求照常算。
	assert.InDelta(t, 0.0315, req[10].Quantity, Epsilon)
}

func TestResolveInactiveProduct(t *testing.T) {
	cat := latteCatalog()

	_, errs := Resolve(cat, []CartLine{{ProductID: 3, Quantity: 1}}, true)
	require.Len(t, errs, 1)
	assert.Equal(t, KindInvalidProduct, errs[0].Kind)
}

func TestResolveUnknownProduct(t *testing.T) {
	cat := latteCatalog()

	_, errs := Resolve(cat, []CartLine{{ProductID: 99, Quantity: 1}}, true)
	require.Len(t, errs, 1)
	assert.Equal(t, KindInvalidProduct, errs[0].Kind)
}

func TestResolveUnitMismatch(t *testing.T) {
	cat := latteCatalog()
	cat.products[4] = &model.Product{ID: 4, Name: "冲突套餐", Price: 10, IsActive: true}
	cat.recipes[4] = &model.Recipe{ID: 4, ProductID: 4, YieldQty: 1}
	cat.recipeItems[4] = []model.RecipeItem{
		{IngredientID: 10, Quantity: 30, Unit: "g"}, // 与拿铁配方的 kg 冲突
	}

	_, errs := Resolve(cat, []CartLine{
		{ProductID: 1, Quantity: 1},
		{ProductID: 4, Quantity: 1},
	}, true)
	require.Len(t, errs, 1)
	assert.Equal(t, KindUnitMismatch, errs[0].Kind)
}
