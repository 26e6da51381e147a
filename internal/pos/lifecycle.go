package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cafecraft/internal/model"
)

// 批次人工维护操作的哨兵错误，不参与订单错误分类。
var (
	ErrLotNotFound        = errors.New("inventory lot not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
)

// Engine 订单生命周期管理器。
// 每个操作都是一次全有或全无的工作单元：台账、订单、收款、审计
// 要么全部落库，要么全部不落。
type Engine struct {
	tx  TxRunner
	now func() time.Time
}

func NewEngine(tx TxRunner) *Engine {
	return &Engine{tx: tx, now: time.Now}
}

// WithClock 仅供测试固定时间。
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// newOrderNo 生成人类可读订单号：时间戳 + uuid 短后缀防撞。
func (e *Engine) newOrderNo() string {
	return fmt.Sprintf("ORD-%s-%s", e.now().Format("20060102150405"), uuid.New().String()[:8])
}

// orderTotal 折后总额，最低为 0。
func orderTotal(subtotal, discountPercent float64) float64 {
	total := subtotal - subtotal*discountPercent/100
	if total < 0 {
		return 0
	}
	return total
}

// buildItems 根据目录单价物化订单行，返回订单行与小计。
func buildItems(cat Catalog, lines []CartLine) ([]model.OrderItem, float64, error) {
	items := make([]model.OrderItem, 0, len(lines))
	subtotal := 0.0
	for _, line := range lines {
		p, err := cat.GetProduct(line.ProductID)
		if err != nil {
			return nil, 0, err
		}
		if p == nil || !p.IsActive {
			return nil, 0, Errf(KindInvalidProduct, "product %d missing or inactive", line.ProductID)
		}
		sub := p.Price * float64(line.Quantity)
		items = append(items, model.OrderItem{
			ProductID: p.ID,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
			Subtotal:  sub,
		})
		subtotal += sub
	}
	return items, subtotal, nil
}

// CheckoutInput 直接结账参数。
type CheckoutInput struct {
	UserID           uint
	Lines            []CartLine
	DiscountPercent  float64
	PaymentMethod    string
	PaymentReference string
	OrderName        string
}

// Checkout 直接结账：解析配方 → 校验库存 → 扣减台账 → 落单收款，
// 全程一个事务，任何错误都不留下任何写入。
func (e *Engine) Checkout(ctx context.Context, in CheckoutInput) (*model.Order, error) {
	if len(in.Lines) == 0 {
		return nil, Errf(KindInvalidProduct, "empty cart")
	}

	var out *model.Order
	err := e.tx.RunInTx(ctx, func(s Store) error {
		items, subtotal, err := buildItems(s.Catalog(), in.Lines)
		if err != nil {
			return err
		}

		now := e.now()
		order := &model.Order{
			OrderNo:         e.newOrderNo(),
			UserID:          in.UserID,
			TotalAmount:     orderTotal(subtotal, in.DiscountPercent),
			DiscountPercent: in.DiscountPercent,
			Status:          model.OrderCompleted,
			PaymentMethod:   in.PaymentMethod,
			OrderName:       in.OrderName,
			CompletedAt:     &now,
		}
		if err := s.Orders().CreateOrder(order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := s.Orders().CreateOrderItems(items); err != nil {
			return err
		}

		if err := resolveValidateConsume(s, in.Lines, order.ID, in.UserID); err != nil {
			return err
		}

		if err := s.Orders().CreatePayment(&model.Payment{
			OrderID:   order.ID,
			Method:    in.PaymentMethod,
			Amount:    order.TotalAmount,
			Status:    model.PaymentPaid,
			Reference: in.PaymentReference,
		}); err != nil {
			return err
		}
		if err := s.Audit().Record(&model.AuditEntry{
			UserID:   in.UserID,
			Action:   model.AuditCreateOrder,
			RecordID: order.ID,
			Details:  fmt.Sprintf("order %s total %.2f via %s", order.OrderNo, order.TotalAmount, in.PaymentMethod),
		}); err != nil {
			return err
		}

		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// HoldInput 挂单参数。
type HoldInput struct {
	UserID          uint
	Lines           []CartLine
	DiscountPercent float64
	OrderName       string
}

// HoldOrder 挂单：只落 draft 订单和订单行，不触碰库存、不收款。
func (e *Engine) HoldOrder(ctx context.Context, in HoldInput) (*model.Order, error) {
	if len(in.Lines) == 0 {
		return nil, Errf(KindInvalidProduct, "empty cart")
	}

	var out *model.Order
	err := e.tx.RunInTx(ctx, func(s Store) error {
		items, _, err := buildItems(s.Catalog(), in.Lines)
		if err != nil {
			return err
		}

		order := &model.Order{
			OrderNo:         e.newOrderNo(),
			UserID:          in.UserID,
			TotalAmount:     0,
			DiscountPercent: in.DiscountPercent,
			Status:          model.OrderDraft,
			OrderName:       in.OrderName,
		}
		if err := s.Orders().CreateOrder(order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := s.Orders().CreateOrderItems(items); err != nil {
			return err
		}

		if err := s.Audit().Record(&model.AuditEntry{
			UserID:   in.UserID,
			Action:   model.AuditHoldOrder,
			RecordID: order.ID,
			Details:  fmt.Sprintf("order %s held with %d line(s)", order.OrderNo, len(items)),
		}); err != nil {
			return err
		}

		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FinalizeInput 完成挂单参数。
type FinalizeInput struct {
	OrderID          uint
	UserID           uint
	PaymentMethod    string
	PaymentReference string
}

// FinalizeDraft 完成挂单：订单必须仍处于 draft；重算小计与折后总额，
// 以 finalize 时刻的库存跑同一条解析/校验/扣减流水线。订单行不重建。
func (e *Engine) FinalizeDraft(ctx context.Context, in FinalizeInput) (*model.Order, error) {
	var out *model.Order
	err := e.tx.RunInTx(ctx, func(s Store) error {
		order, err := s.Orders().GetOrder(in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return Errf(KindOrderNotFound, "order %d not found", in.OrderID)
		}
		if order.Status != model.OrderDraft {
			return Errf(KindNotADraft, "order %s is %s, not draft", order.OrderNo, order.Status)
		}

		items, err := s.Orders().ListOrderItems(order.ID)
		if err != nil {
			return err
		}
		lines := make([]CartLine, 0, len(items))
		subtotal := 0.0
		for _, it := range items {
			lines = append(lines, CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
			subtotal += it.Subtotal
		}

		if err := resolveValidateConsume(s, lines, order.ID, in.UserID); err != nil {
			return err
		}

		now := e.now()
		total := orderTotal(subtotal, order.DiscountPercent)
		n, err := s.Orders().UpdateStatusGuarded(order.ID, model.OrderDraft, map[string]any{
			"status":         model.OrderCompleted,
			"total_amount":   total,
			"payment_method": in.PaymentMethod,
			"completed_at":   now,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			// 同一事务内刚读到 draft，又更新不到：状态被并发挤掉了。
			return Errf(KindNotADraft, "order %s left draft concurrently", order.OrderNo)
		}

		if err := s.Orders().CreatePayment(&model.Payment{
			OrderID:   order.ID,
			Method:    in.PaymentMethod,
			Amount:    total,
			Status:    model.PaymentPaid,
			Reference: in.PaymentReference,
		}); err != nil {
			return err
		}
		if err := s.Audit().Record(&model.AuditEntry{
			UserID:   in.UserID,
			Action:   model.AuditFinalizeDraft,
			RecordID: order.ID,
			Details:  fmt.Sprintf("order %s finalized, total %.2f via %s", order.OrderNo, total, in.PaymentMethod),
		}); err != nil {
			return err
		}

		order.Status = model.OrderCompleted
		order.TotalAmount = total
		order.PaymentMethod = in.PaymentMethod
		order.CompletedAt = &now
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VoidInput 作废参数。
type VoidInput struct {
	OrderID uint
	UserID  uint
	Reason  string
	// Restock 为 true 时按历史 consume 变动原样回补库存。
	Restock bool
}

// Void 作废订单。已作废订单重复作废按幂等成功处理（不二次回补）。
// 回补数量来自订单自己的 consume 变动记录，而不是重算配方——
// 配方后来改过也不影响回补的正确性。原料已停用不阻止回补（软标记）。
func (e *Engine) Void(ctx context.Context, in VoidInput) (*model.Order, error) {
	var out *model.Order
	err := e.tx.RunInTx(ctx, func(s Store) error {
		order, err := s.Orders().GetOrder(in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return Errf(KindOrderNotFound, "order %d not found", in.OrderID)
		}
		if order.Status == model.OrderVoided {
			// 幂等：终态不变，不重复回补、不重复记账。
			out = order
			return nil
		}

		now := e.now()
		if in.Restock {
			consumed, err := s.Movements().SumConsumed(order.ID)
			if err != nil {
				return err
			}
			for _, c := range consumed {
				if c.Quantity <= Epsilon {
					continue
				}
				if err := s.Ledger().CreateLot(&model.InventoryLot{
					IngredientID: c.IngredientID,
					Quantity:     c.Quantity,
					Unit:         c.Unit,
					RestockedAt:  now,
				}); err != nil {
					return err
				}
				oid := order.ID
				if err := s.Movements().Record(&model.InventoryMovement{
					IngredientID: c.IngredientID,
					Quantity:     c.Quantity,
					Unit:         c.Unit,
					Kind:         model.MovementRefund,
					OrderID:      &oid,
					UserID:       in.UserID,
					Reason:       fmt.Sprintf("void restock for order %s", order.OrderNo),
				}); err != nil {
					return err
				}
			}
		}

		n, err := s.Orders().UpdateStatusGuarded(order.ID, order.Status, map[string]any{
			"status":      model.OrderVoided,
			"voided_at":   now,
			"void_reason": in.Reason,
			"voided_by":   in.UserID,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("order %s changed status concurrently", order.OrderNo)
		}

		if err := s.Orders().CreatePayment(&model.Payment{
			OrderID: order.ID,
			Method:  order.PaymentMethod,
			Amount:  order.TotalAmount,
			Status:  model.PaymentVoided,
		}); err != nil {
			return err
		}
		if err := s.Audit().Record(&model.AuditEntry{
			UserID:   in.UserID,
			Action:   model.AuditVoidOrder,
			RecordID: order.ID,
			Details:  fmt.Sprintf("order %s voided (restock=%t): %s", order.OrderNo, in.Restock, in.Reason),
		}); err != nil {
			return err
		}

		order.Status = model.OrderVoided
		order.VoidedAt = &now
		order.VoidReason = in.Reason
		order.VoidedBy = &in.UserID
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
