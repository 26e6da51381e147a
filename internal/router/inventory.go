package router

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cafecraft/internal/pos"
	"cafecraft/internal/rbac"
	"cafecraft/internal/store"
	"cafecraft/pkg/rediscache"
)

func (h *Handlers) listLots(c *gin.Context) {
	var ingredientID uint
	if v := c.Query("ingredient_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "无效的 ingredient_id"})
			return
		}
		ingredientID = uint(id)
	}
	lots, err := h.st.ListLots(ingredientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": lots})
}

type restockReq struct {
	UserID       uint       `json:"user_id" binding:"required"`
	IngredientID uint       `json:"ingredient_id" binding:"required"`
	Quantity     float64    `json:"quantity" binding:"required,gt=0"`
	Unit         string     `json:"unit"`
	ExpiresAt    *time.Time `json:"expires_at"`
	Supplier     string     `json:"supplier"`
	Location     string     `json:"location"`
	Reference    string     `json:"reference"`
}

func (h *Handlers) restock(c *gin.Context) {
	var req restockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanInventory) == nil {
		return
	}
	lot, created, err := h.engine.ReceiveStock(c.Request.Context(), pos.ReceiveStockInput{
		UserID:       req.UserID,
		IngredientID: req.IngredientID,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		ExpiresAt:    req.ExpiresAt,
		Supplier:     req.Supplier,
		Location:     req.Location,
		Reference:    req.Reference,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": lot, "created": created})
}

type adjustReq struct {
	UserID   uint    `json:"user_id" binding:"required"`
	Quantity float64 `json:"quantity" binding:"gte=0"`
	Reason   string  `json:"reason" binding:"required"`
}

func (h *Handlers) adjustLot(c *gin.Context) {
	lotID, ok := paramID(c)
	if !ok {
		return
	}
	var req adjustReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanInventory) == nil {
		return
	}
	if err := h.engine.AdjustLot(c.Request.Context(), req.UserID, lotID, req.Quantity, req.Reason); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "已调整"})
}

type wasteReq struct {
	UserID   uint    `json:"user_id" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Reason   string  `json:"reason" binding:"required"`
}

func (h *Handlers) recordWaste(c *gin.Context) {
	lotID, ok := paramID(c)
	if !ok {
		return
	}
	var req wasteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanInventory) == nil {
		return
	}
	if err := h.engine.RecordWaste(c.Request.Context(), req.UserID, lotID, req.Quantity, req.Reason); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "msg": "已记录报损"})
}

func (h *Handlers) lowStock(c *gin.Context) {
	rows, err := h.st.LowStock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": rows})
}

func (h *Handlers) listMovements(c *gin.Context) {
	var orderID uint
	if v := c.Query("order_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "无效的 order_id"})
			return
		}
		orderID = uint(id)
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	moves, err := h.st.ListMovements(orderID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": moves})
}

// inventoryValue 在库价值报表：按原料的现存总量 × 单位成本。
func (h *Handlers) inventoryValue(c *gin.Context) {
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if h.requireUser(c, uint(userID), rbac.CanReports) == nil {
		return
	}
	rows, total, err := h.st.InventoryValue()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": gin.H{"items": rows, "total_value": total}})
}

// dailySales 按日汇总营收。历史日期结果不再变化，缓存到 Redis。
func (h *Handlers) dailySales(c *gin.Context) {
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if h.requireUser(c, uint(userID), rbac.CanReports) == nil {
		return
	}
	dateStr := c.DefaultQuery("date", time.Now().Format("2006-01-02"))
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "日期格式应为 YYYY-MM-DD"})
		return
	}
	ctx := c.Request.Context()
	closed := day.Before(time.Now().Truncate(24 * time.Hour))

	if h.rdb != nil && closed {
		if raw, err := h.rdb.Get(ctx, rediscache.DailySalesKey(dateStr)).Result(); err == nil {
			var cached store.DailySales
			if json.Unmarshal([]byte(raw), &cached) == nil {
				c.JSON(http.StatusOK, gin.H{"code": 0, "data": cached, "cached": true})
				return
			}
		}
	}

	sales, err := h.st.GetDailySales(day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	if h.rdb != nil && closed {
		if raw, err := json.Marshal(sales); err == nil {
			if err := h.rdb.Set(ctx, rediscache.DailySalesKey(dateStr), raw, 24*time.Hour).Err(); err != nil {
				log.Printf("日报缓存写入失败: %v", err)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": sales})
}
