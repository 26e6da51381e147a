package queue

import "fmt"

// 订单生命周期事件类型。
const (
	EventOrderCompleted = "order_completed"
	EventOrderVoided    = "order_voided"
)

// OrderEvent 是对外发布的订单生命周期事件。
type OrderEvent struct {
	EventType   string  `json:"event_type"`
	OrderID     uint    `json:"order_id"`
	OrderNo     string  `json:"order_no"`
	UserID      uint    `json:"user_id"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`
}

// Validate 做最小字段校验，防止下游处理脏消息。
func (e OrderEvent) Validate() error {
	if e.EventType != EventOrderCompleted && e.EventType != EventOrderVoided {
		return fmt.Errorf("unknown event_type %q", e.EventType)
	}
	if e.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if e.OrderNo == "" {
		return fmt.Errorf("order_no is required")
	}
	if e.UserID == 0 {
		return fmt.Errorf("user_id is required")
	}
	return nil
}
