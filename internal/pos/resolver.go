package pos

// Resolve 把购物车行展开为聚合的原料需求。
// 纯读操作：除目录读取外没有任何副作用，同一目录快照下结果确定。
//
// strict 控制缺配方的语义：直接结账/finalize 走 strict（缺配方报错），
// 宽松模式用于预估类查询（缺配方的行静默跳过）。
func Resolve(cat Catalog, lines []CartLine, strict bool) (Requirements, []*Error) {
	req := make(Requirements, len(lines))
	var errs []*Error

	for _, line := range lines {
		p, err := cat.GetProduct(line.ProductID)
		if err != nil {
			errs = append(errs, Errf(KindInvalidProduct, "product %d: %v", line.ProductID, err))
			continue
		}
		if p == nil || !p.IsActive {
			errs = append(errs, Errf(KindInvalidProduct, "product %d missing or inactive", line.ProductID))
			continue
		}

		recipe, items, err := cat.GetRecipe(p.ID)
		if err != nil {
			errs = append(errs, Errf(KindInvalidProduct, "recipe lookup for product %d: %v", p.ID, err))
			continue
		}
		if recipe == nil {
			if strict {
				errs = append(errs, Errf(KindMissingRecipe, "product %q has no recipe", p.Name))
			}
			// 宽松模式：无配方商品不占用库存，跳过。
			continue
		}

		for _, it := range items {
			needed := it.Quantity * float64(line.Quantity) * (1 + it.WastageFactor)
			cur, ok := req[it.IngredientID]
			if ok && cur.Unit != it.Unit {
				errs = append(errs, Errf(KindUnitMismatch,
					"ingredient %d: unit %q conflicts with %q", it.IngredientID, it.Unit, cur.Unit))
				continue
			}
			req[it.IngredientID] = Requirement{Quantity: cur.Quantity + needed, Unit: it.Unit}
		}
	}

	return req, errs
}
