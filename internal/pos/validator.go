package pos

import "sort"

// Validate 将需求量与台账可用量逐一比对，返回全部缺口明细。
// 校验与扣减是两个独立阶段：任何缺口都会在发生任何写入之前中止整个事务。
func Validate(led Ledger, cat Catalog, req Requirements) ([]Shortage, error) {
	ids := sortedIngredientIDs(req)

	var shortages []Shortage
	for _, id := range ids {
		r := req[id]
		available, err := led.SumAvailable(id)
		if err != nil {
			return nil, err
		}
		if available+Epsilon >= r.Quantity {
			continue
		}

		ing, err := cat.GetIngredient(id)
		if err != nil {
			return nil, err
		}
		name := ""
		if ing != nil {
			name = ing.Name
		}
		shortages = append(shortages, Shortage{
			IngredientID: id,
			Name:         name,
			Needed:       r.Quantity,
			Available:    available,
			Shortfall:    r.Quantity - available,
			Unit:         r.Unit,
		})
	}
	return shortages, nil
}

// sortedIngredientIDs 固定遍历顺序，保证校验/扣减的行为可复现。
func sortedIngredientIDs(req Requirements) []uint {
	ids := make([]uint, 0, len(req))
	for id := range req {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
