package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cafecraft/internal/config"
	"cafecraft/internal/model"
	"cafecraft/internal/pos"
	"cafecraft/internal/rbac"
	"cafecraft/internal/router"
	"cafecraft/internal/store"
)

var routerTestSeq int

// newTestServer 起一套无 Redis/Kafka 的最小服务：限流和缓存自动降级。
func newTestServer(t *testing.T) (*gin.Engine, *store.Store, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	routerTestSeq++
	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", routerTestSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, store.AutoMigrate(db))

	st := store.New(db)
	engine := pos.NewEngine(st)
	cfg := config.AppConfig{AdminToken: "test-token"}

	r := gin.New()
	router.Setup(r, st, engine, nil, cfg)
	return r, st, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedCashierAndLatte(t *testing.T, st *store.Store, db *gorm.DB) (cashier model.User, latte model.Product) {
	t.Helper()
	cashier = model.User{Username: "cashier", FullName: "收银员", Role: rbac.RoleCashier, IsActive: true}
	require.NoError(t, st.CreateUser(&cashier))

	beans := model.Ingredient{Name: "咖啡豆", Unit: "kg", ReorderLevel: 1, IsActive: true}
	require.NoError(t, st.CreateIngredient(&beans))

	latte = model.Product{Name: "拿铁", Category: "咖啡", Price: 28, IsActive: true}
	require.NoError(t, st.CreateProduct(&latte))
	_, err := st.SetRecipe(latte.ID, 1, "cup", []model.RecipeItem{
		{IngredientID: beans.ID, Quantity: 0.03, Unit: "kg", WastageFactor: 0.05},
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&model.InventoryLot{
		IngredientID: beans.ID, Quantity: 1, Unit: "kg", RestockedAt: time.Now(),
	}).Error)
	return cashier, latte
}

func TestCheckoutEndpoint(t *testing.T) {
	r, st, db := newTestServer(t)
	cashier, latte := seedCashierAndLatte(t, st, db)

	w := doJSON(t, r, http.MethodPost, "/api/orders/checkout", gin.H{
		"user_id":        cashier.ID,
		"payment_method": "cash",
		"items":          []gin.H{{"product_id": latte.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Code int `json:"code"`
		Data struct {
			OrderNo     string  `json:"order_no"`
			TotalAmount float64 `json:"total_amount"`
			Status      string  `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Code)
	assert.Equal(t, "completed", resp.Data.Status)
	assert.InDelta(t, 56.0, resp.Data.TotalAmount, 1e-9)
	assert.Contains(t, resp.Data.OrderNo, "ORD-")
}

func TestCheckoutInsufficientInventoryPayload(t *testing.T) {
	r, st, db := newTestServer(t)
	cashier, latte := seedCashierAndLatte(t, st, db)

	// 1kg 豆子最多 31 杯（0.0315/杯），点 50 杯必然不足。
	w := doJSON(t, r, http.MethodPost, "/api/orders/checkout", gin.H{
		"user_id":        cashier.ID,
		"payment_method": "cash",
		"items":          []gin.H{{"product_id": latte.ID, "quantity": 50}},
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Kind      string `json:"kind"`
		Shortages []struct {
			IngredientID uint    `json:"ingredient_id"`
			Shortfall    float64 `json:"shortfall"`
		} `json:"shortages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(pos.KindInsufficientInventory), resp.Kind)
	require.Len(t, resp.Shortages, 1)
	assert.InDelta(t, 0.575, resp.Shortages[0].Shortfall, 1e-9)
}

func TestCheckoutForbiddenForInventoryStaff(t *testing.T) {
	r, st, db := newTestServer(t)
	_, latte := seedCashierAndLatte(t, st, db)

	staff := model.User{Username: "stock", FullName: "库管", Role: rbac.RoleInventoryStaff, IsActive: true}
	require.NoError(t, st.CreateUser(&staff))

	w := doJSON(t, r, http.MethodPost, "/api/orders/checkout", gin.H{
		"user_id":        staff.ID,
		"payment_method": "cash",
		"items":          []gin.H{{"product_id": latte.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHoldThenFinalizeThenVoid(t *testing.T) {
	r, st, db := newTestServer(t)
	cashier, latte := seedCashierAndLatte(t, st, db)

	w := doJSON(t, r, http.MethodPost, "/api/orders/hold", gin.H{
		"user_id":    cashier.ID,
		"order_name": "3号桌",
		"items":      []gin.H{{"product_id": latte.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var held struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &held))

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/orders/%d/finalize", held.Data.ID), gin.H{
		"user_id":        cashier.ID,
		"payment_method": "card",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 二次 finalize 报 not_a_draft。
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/orders/%d/finalize", held.Data.ID), gin.H{
		"user_id":        cashier.ID,
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/orders/%d/void", held.Data.ID), gin.H{
		"user_id": cashier.ID,
		"reason":  "顾客退单",
		"restock": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/orders/%d", held.Data.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Data struct {
			Order struct {
				Status string `json:"status"`
			} `json:"order"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "voided", detail.Data.Order.Status)
}

func TestVoidUnknownOrderReturns404(t *testing.T) {
	r, st, db := newTestServer(t)
	cashier, _ := seedCashierAndLatte(t, st, db)

	w := doJSON(t, r, http.MethodPost, "/api/orders/9999/void", gin.H{
		"user_id": cashier.ID,
		"reason":  "x",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeedEndpointRequiresToken(t *testing.T) {
	r, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/seed", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/seed", nil)
	req.Header.Set("X-Admin-Token", "test-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRestockEndpointIdempotent(t *testing.T) {
	r, st, db := newTestServer(t)
	_, _ = seedCashierAndLatte(t, st, db)

	staff := model.User{Username: "stock", FullName: "库管", Role: rbac.RoleInventoryStaff, IsActive: true}
	require.NoError(t, st.CreateUser(&staff))

	body := gin.H{
		"user_id":       staff.ID,
		"ingredient_id": 1,
		"quantity":      5,
		"reference":     "PO-7",
	}
	w := doJSON(t, r, http.MethodPost, "/api/inventory/restock", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPost, "/api/inventory/restock", body)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Created bool `json:"created"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Created)

	var n int64
	require.NoError(t, db.Model(&model.InventoryMovement{}).
		Where("kind = ? AND reference = ?", model.MovementRestock, "PO-7").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestDailySalesRequiresReportsCapability(t *testing.T) {
	r, st, db := newTestServer(t)
	cashier, _ := seedCashierAndLatte(t, st, db)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/reports/daily_sales?user_id=%d", cashier.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	owner := model.User{Username: "owner", FullName: "老板", Role: rbac.RoleOwner, IsActive: true}
	require.NoError(t, st.CreateUser(&owner))
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/reports/daily_sales?user_id=%d", owner.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
