package pos

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafecraft/internal/model"
)

func TestValidateReportsAllShortages(t *testing.T) {
	cat := latteCatalog()
	led := newFakeLedger()
	led.add(model.InventoryLot{IngredientID: 10, Quantity: 0.02, Unit: "kg", RestockedAt: time.Now()})
	led.add(model.InventoryLot{IngredientID: 11, Quantity: 0.5, Unit: "L", RestockedAt: time.Now()})

	shortages, err := Validate(led, cat, Requirements{
		10: {Quantity: 0.0945, Unit: "kg"},
		11: {Quantity: 0.63, Unit: "L"},
	})
	require.NoError(t, err)
	require.Len(t, shortages, 2)

	assert.Equal(t, uint(10), shortages[0].IngredientID)
	assert.Equal(t, "咖啡豆", shortages[0].Name)
	assert.InDelta(t, 0.0745, shortages[0].Shortfall, Epsilon)

	assert.Equal(t, uint(11), shortages[1].IngredientID)
	assert.InDelta(t, 0.63, shortages[1].Needed, Epsilon)
	assert.InDelta(t, 0.5, shortages[1].Available, Epsilon)
	assert.InDelta(t, 0.13, shortages[1].Shortfall, Epsilon)
	assert.Equal(t, "L", shortages[1].Unit)
}

func TestValidateEpsilonTolerance(t *testing.T) {
	cat := latteCatalog()
	led := newFakeLedger()
	// 可用量比需求少一个远小于容差的尾差，不算缺口。
	led.add(model.InventoryLot{IngredientID: 10, Quantity: 0.0945 - 1e-12, Unit: "kg", RestockedAt: time.Now()})

	shortages, err := Validate(led, cat, Requirements{10: {Quantity: 0.0945, Unit: "kg"}})
	require.NoError(t, err)
	assert.Empty(t, shortages)
}

func TestValidateExactMatch(t *testing.T) {
	cat := latteCatalog()
	led := newFakeLedger()
	led.add(model.InventoryLot{IngredientID: 10, Quantity: 0.0945, Unit: "kg", RestockedAt: time.Now()})

	shortages, err := Validate(led, cat, Requirements{10: {Quantity: 0.0945, Unit: "kg"}})
	require.NoError(t, err)
	assert.Empty(t, shortages)
}

func TestValidatePropagatesIngredientLookupError(t *testing.T) {
	cat := latteCatalog()
	cat.ingredientErr = errors.New("catalog unavailable")
	led := newFakeLedger()
	led.add(model.InventoryLot{IngredientID: 10, Quantity: 0.01, Unit: "kg", RestockedAt: time.Now()})

	_, err := Validate(led, cat, Requirements{10: {Quantity: 0.0945, Unit: "kg"}})
	assert.ErrorIs(t, err, cat.ingredientErr)
}

func TestValidateZeroAvailable(t *testing.T) {
	cat := latteCatalog()
	led := newFakeLedger()

	shortages, err := Validate(led, cat, Requirements{11: {Quantity: 0.2, Unit: "L"}})
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	assert.InDelta(t, 0.2, shortages[0].Shortfall, Epsilon)
	assert.Zero(t, shortages[0].Available)
}
