package pos

import (
	"cafecraft/internal/model"
)

// consume 按"先到期先消耗"顺序扣减台账，并为每个原料记录一条
// consume 变动（合计值，不按批次拆分）。
//
// 前置条件：同一事务内刚通过 Validate。若走完全部批次仍有剩余需求，
// 说明校验和扣减看到了不同的状态（并发竞争），返回 KindInventoryRace，
// 由外层回滚整个事务。
func consume(led Ledger, mov MovementLog, req Requirements, orderID, userID uint) error {
	for _, id := range sortedIngredientIDs(req) {
		r := req[id]
		remaining := r.Quantity

		lots, err := led.ListLotsOrdered(id)
		if err != nil {
			return err
		}
		for _, lot := range lots {
			if remaining <= Epsilon {
				break
			}
			if lot.Quantity <= remaining+Epsilon {
				// 整批吃掉：清零即删除。
				if err := led.DeleteLot(lot.ID); err != nil {
					return err
				}
				remaining -= lot.Quantity
				continue
			}
			if err := led.ReduceLot(lot.ID, lot.Quantity-remaining); err != nil {
				return err
			}
			remaining = 0
		}

		if remaining > Epsilon {
			return Errf(KindInventoryRace,
				"ingredient %d: %g %s still required after walking all lots", id, remaining, r.Unit)
		}

		oid := orderID
		if err := mov.Record(&model.InventoryMovement{
			IngredientID: id,
			Quantity:     -r.Quantity,
			Unit:         r.Unit,
			Kind:         model.MovementConsume,
			OrderID:      &oid,
			UserID:       userID,
			Reason:       "order consumption",
		}); err != nil {
			return err
		}
	}
	return nil
}

// resolveValidateConsume 结账与 finalize 共用的三段式流水线。
// 任何一段失败都直接返回，外层事务负责回滚。
func resolveValidateConsume(s Store, lines []CartLine, orderID, userID uint) error {
	req, errs := Resolve(s.Catalog(), lines, true)
	if len(errs) > 0 {
		return errs[0]
	}

	shortages, err := Validate(s.Ledger(), s.Catalog(), req)
	if err != nil {
		return err
	}
	if len(shortages) > 0 {
		return &Error{
			Kind:      KindInsufficientInventory,
			Msg:       "insufficient inventory",
			Shortages: shortages,
		}
	}

	return consume(s.Ledger(), s.Movements(), req, orderID, userID)
}
