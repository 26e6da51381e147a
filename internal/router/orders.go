package router

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cafecraft/internal/model"
	"cafecraft/internal/pos"
	"cafecraft/internal/queue"
	"cafecraft/internal/rbac"
)

type checkoutReq struct {
	UserID           uint           `json:"user_id" binding:"required"`
	Items            []pos.CartLine `json:"items" binding:"required,min=1,dive"`
	DiscountPercent  float64        `json:"discount_percent"`
	PaymentMethod    string         `json:"payment_method" binding:"required"`
	PaymentReference string         `json:"payment_reference"`
	OrderName        string         `json:"order_name"`
}

func (h *Handlers) checkout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanPOS) == nil {
		return
	}
	order, err := h.engine.Checkout(c.Request.Context(), pos.CheckoutInput{
		UserID:           req.UserID,
		Lines:            req.Items,
		DiscountPercent:  req.DiscountPercent,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		OrderName:        req.OrderName,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	h.emitOrderEvent(c, queue.EventOrderCompleted, order)
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": order})
}

type holdReq struct {
	UserID          uint           `json:"user_id" binding:"required"`
	Items           []pos.CartLine `json:"items" binding:"required,min=1,dive"`
	DiscountPercent float64        `json:"discount_percent"`
	OrderName       string         `json:"order_name"`
}

func (h *Handlers) holdOrder(c *gin.Context) {
	var req holdReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanPOS) == nil {
		return
	}
	order, err := h.engine.HoldOrder(c.Request.Context(), pos.HoldInput{
		UserID:          req.UserID,
		Lines:           req.Items,
		DiscountPercent: req.DiscountPercent,
		OrderName:       req.OrderName,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": order})
}

type finalizeReq struct {
	UserID           uint   `json:"user_id" binding:"required"`
	PaymentMethod    string `json:"payment_method" binding:"required"`
	PaymentReference string `json:"payment_reference"`
}

func (h *Handlers) finalizeDraft(c *gin.Context) {
	orderID, ok := paramID(c)
	if !ok {
		return
	}
	var req finalizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanPOS) == nil {
		return
	}
	order, err := h.engine.FinalizeDraft(c.Request.Context(), pos.FinalizeInput{
		OrderID:          orderID,
		UserID:           req.UserID,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	h.emitOrderEvent(c, queue.EventOrderCompleted, order)
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": order})
}

type voidReq struct {
	UserID  uint   `json:"user_id" binding:"required"`
	Reason  string `json:"reason" binding:"required"`
	Restock bool   `json:"restock"`
}

func (h *Handlers) voidOrder(c *gin.Context) {
	orderID, ok := paramID(c)
	if !ok {
		return
	}
	var req voidReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "参数错误: " + err.Error()})
		return
	}
	if h.requireUser(c, req.UserID, rbac.CanPOS) == nil {
		return
	}
	order, err := h.engine.Void(c.Request.Context(), pos.VoidInput{
		OrderID: orderID,
		UserID:  req.UserID,
		Reason:  req.Reason,
		Restock: req.Restock,
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	h.emitOrderEvent(c, queue.EventOrderVoided, order)
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": order})
}

func (h *Handlers) getOrder(c *gin.Context) {
	orderID, ok := paramID(c)
	if !ok {
		return
	}
	detail, err := h.st.GetOrderDetails(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	if detail == nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": "订单不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": detail})
}

func (h *Handlers) recentOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	orders, err := h.st.RecentOrders(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": orders})
}

// emitOrderEvent 把生命周期事件写入 Redis Stream 发件箱，由 Relay 异步投递 Kafka。
// 订单事务已提交，发件失败只记日志，不影响响应。
func (h *Handlers) emitOrderEvent(c *gin.Context, eventType string, order *model.Order) {
	if h.rdb == nil {
		return
	}
	ev := queue.OrderEvent{
		EventType:   eventType,
		OrderID:     order.ID,
		OrderNo:     order.OrderNo,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
	}
	if err := queue.AppendOrderEvent(c.Request.Context(), h.rdb, h.cfg.OrderEventStream, ev); err != nil {
		log.Printf("订单事件入队失败 order_no=%s: %v", order.OrderNo, err)
	}
}

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "无效的 ID"})
		return 0, false
	}
	return uint(id), true
}
