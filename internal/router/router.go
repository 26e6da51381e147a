package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"

	"cafecraft/internal/config"
	"cafecraft/internal/middleware"
	"cafecraft/internal/model"
	"cafecraft/internal/pos"
	"cafecraft/internal/rbac"
	"cafecraft/internal/store"
)

// Handlers 汇集路由依赖。rdb 允许为 nil（测试或无 Redis 环境），
// 此时限流与菜单缓存自动降级为直连数据库。
type Handlers struct {
	st     *store.Store
	engine *pos.Engine
	rdb    *rd.Client
	cfg    config.AppConfig
}

// Setup 注册全部 HTTP 路由。
func Setup(r *gin.Engine, st *store.Store, engine *pos.Engine, rdb *rd.Client, cfg config.AppConfig) {
	h := &Handlers{st: st, engine: engine, rdb: rdb, cfg: cfg}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	// Catalog
	r.GET("/api/products", h.listProducts)
	r.POST("/api/products", h.createProduct)
	r.POST("/api/products/:id/deactivate", h.deactivateProduct)
	r.PUT("/api/products/:id/recipe", h.setRecipe)
	r.GET("/api/ingredients", h.listIngredients)
	r.POST("/api/ingredients", h.createIngredient)

	// Orders
	checkout := r.Group("/api/orders")
	if rdb != nil {
		checkout.Use(middleware.CheckoutRateLimit(rdb, cfg.CheckoutRateLimit, cfg.CheckoutRateWindow))
	}
	checkout.POST("/checkout", h.checkout)
	checkout.POST("/hold", h.holdOrder)
	r.POST("/api/orders/:id/finalize", h.finalizeDraft)
	r.POST("/api/orders/:id/void", h.voidOrder)
	r.GET("/api/orders/:id", h.getOrder)
	r.GET("/api/orders", h.recentOrders)

	// Inventory
	r.GET("/api/inventory/lots", h.listLots)
	r.POST("/api/inventory/restock", h.restock)
	r.POST("/api/inventory/lots/:id/adjust", h.adjustLot)
	r.POST("/api/inventory/lots/:id/waste", h.recordWaste)
	r.GET("/api/inventory/low_stock", h.lowStock)
	r.GET("/api/inventory/movements", h.listMovements)

	// Reports
	r.GET("/api/reports/daily_sales", h.dailySales)
	r.GET("/api/reports/inventory_value", h.inventoryValue)

	// Admin
	r.POST("/api/admin/seed", h.seedDemo)
}

// respondErr 把核心层错误映射为 HTTP 状态。调用方 UI 按 kind 分支展示。
func respondErr(c *gin.Context, err error) {
	if kind, ok := pos.KindOf(err); ok {
		var e *pos.Error
		errors.As(err, &e)
		switch kind {
		case pos.KindInvalidProduct, pos.KindMissingRecipe, pos.KindUnitMismatch:
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "kind": kind, "msg": e.Msg})
		case pos.KindInsufficientInventory:
			c.JSON(http.StatusConflict, gin.H{"code": 409, "kind": kind, "msg": e.Msg, "shortages": e.Shortages})
		case pos.KindNotADraft:
			c.JSON(http.StatusConflict, gin.H{"code": 409, "kind": kind, "msg": e.Msg})
		case pos.KindOrderNotFound:
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "kind": kind, "msg": e.Msg})
		case pos.KindInventoryRace:
			// 一致性事件：事务已整体回滚，调用方可安全重试。
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "kind": kind, "msg": e.Msg, "retryable": true})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "kind": kind, "msg": e.Msg})
		}
		return
	}
	if errors.Is(err, pos.ErrLotNotFound) || errors.Is(err, pos.ErrIngredientNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
}

// requireUser 加载操作员并检查能力开关；失败时已写响应，返回 nil。
func (h *Handlers) requireUser(c *gin.Context, userID uint, can func(rbac.Role) bool) *model.User {
	if userID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "user_id 必填"})
		return nil
	}
	u, err := h.st.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return nil
	}
	if u == nil || !u.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"code": 403, "msg": "操作员不存在或已停用"})
		return nil
	}
	if !can(u.Role) {
		c.JSON(http.StatusForbidden, gin.H{"code": 403, "msg": "当前角色无权执行该操作"})
		return nil
	}
	return u
}
