package pos

import (
	"context"
	"fmt"
	"math"
	"time"

	"cafecraft/internal/model"
)

// ReceiveStockInput 进货入库参数。
type ReceiveStockInput struct {
	UserID       uint
	IngredientID uint
	Quantity     float64
	Unit         string
	ExpiresAt    *time.Time
	Supplier     string
	Location     string
	// Reference 供货单号等外部幂等标识；同一标识只入账一次。
	Reference string
}

// ReceiveStock 进货入库：建批次 + restock 变动 + 审计，单事务。
// 带 Reference 的重复投递直接跳过（created=false），供 Kafka 消费端重放。
func (e *Engine) ReceiveStock(ctx context.Context, in ReceiveStockInput) (lot *model.InventoryLot, created bool, err error) {
	if in.Quantity <= 0 {
		return nil, false, fmt.Errorf("restock quantity must be > 0")
	}

	err = e.tx.RunInTx(ctx, func(s Store) error {
		if in.Reference != "" {
			seen, err := s.Movements().HasReference(model.MovementRestock, in.Reference)
			if err != nil {
				return err
			}
			if seen {
				return nil
			}
		}

		ing, err := s.Catalog().GetIngredient(in.IngredientID)
		if err != nil {
			return err
		}
		if ing == nil {
			return ErrIngredientNotFound
		}
		unit := in.Unit
		if unit == "" {
			unit = ing.Unit
		}

		l := &model.InventoryLot{
			IngredientID: ing.ID,
			Quantity:     in.Quantity,
			Unit:         unit,
			ExpiresAt:    in.ExpiresAt,
			RestockedAt:  e.now(),
			Supplier:     in.Supplier,
			Location:     in.Location,
		}
		if err := s.Ledger().CreateLot(l); err != nil {
			return err
		}
		if err := s.Movements().Record(&model.InventoryMovement{
			IngredientID: ing.ID,
			Quantity:     in.Quantity,
			Unit:         unit,
			Kind:         model.MovementRestock,
			UserID:       in.UserID,
			Reference:    in.Reference,
			Reason:       fmt.Sprintf("restock from %s", in.Supplier),
		}); err != nil {
			return err
		}
		if err := s.Audit().Record(&model.AuditEntry{
			UserID:   in.UserID,
			Action:   model.AuditRestock,
			RecordID: l.ID,
			Details:  fmt.Sprintf("ingredient %d +%g %s", ing.ID, in.Quantity, unit),
		}); err != nil {
			return err
		}

		lot = l
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return lot, created, nil
}

// AdjustLot 人工盘点：把批次数量改成绝对值 newQty，差值记 adjust 变动。
// 调到 0 即删除批次。
func (e *Engine) AdjustLot(ctx context.Context, userID, lotID uint, newQty float64, reason string) error {
	if newQty < 0 {
		return fmt.Errorf("adjusted quantity must be >= 0")
	}

	return e.tx.RunInTx(ctx, func(s Store) error {
		lot, err := s.Ledger().GetLot(lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return ErrLotNotFound
		}

		delta := newQty - lot.Quantity
		if math.Abs(delta) <= Epsilon {
			return nil
		}
		if newQty <= Epsilon {
			if err := s.Ledger().DeleteLot(lot.ID); err != nil {
				return err
			}
		} else if err := s.Ledger().ReduceLot(lot.ID, newQty); err != nil {
			return err
		}

		if err := s.Movements().Record(&model.InventoryMovement{
			IngredientID: lot.IngredientID,
			Quantity:     delta,
			Unit:         lot.Unit,
			Kind:         model.MovementAdjust,
			UserID:       userID,
			Reason:       reason,
		}); err != nil {
			return err
		}
		return s.Audit().Record(&model.AuditEntry{
			UserID:   userID,
			Action:   model.AuditAdjustStock,
			RecordID: lot.ID,
			Details:  fmt.Sprintf("lot %d set to %g %s: %s", lot.ID, newQty, lot.Unit, reason),
		})
	})
}

// RecordWaste 报损：从批次里扣掉 qty，记 waste 变动。批次清零即删除。
func (e *Engine) RecordWaste(ctx context.Context, userID, lotID uint, qty float64, reason string) error {
	if qty <= 0 {
		return fmt.Errorf("waste quantity must be > 0")
	}

	return e.tx.RunInTx(ctx, func(s Store) error {
		lot, err := s.Ledger().GetLot(lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return ErrLotNotFound
		}
		if qty > lot.Quantity+Epsilon {
			return fmt.Errorf("waste %g exceeds lot quantity %g", qty, lot.Quantity)
		}

		remaining := lot.Quantity - qty
		if remaining <= Epsilon {
			if err := s.Ledger().DeleteLot(lot.ID); err != nil {
				return err
			}
		} else if err := s.Ledger().ReduceLot(lot.ID, remaining); err != nil {
			return err
		}

		if err := s.Movements().Record(&model.InventoryMovement{
			IngredientID: lot.IngredientID,
			Quantity:     -qty,
			Unit:         lot.Unit,
			Kind:         model.MovementWaste,
			UserID:       userID,
			Reason:       reason,
		}); err != nil {
			return err
		}
		return s.Audit().Record(&model.AuditEntry{
			UserID:   userID,
			Action:   model.AuditRecordWaste,
			RecordID: lot.ID,
			Details:  fmt.Sprintf("lot %d -%g %s: %s", lot.ID, qty, lot.Unit, reason),
		})
	})
}
