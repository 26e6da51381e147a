package pos

import (
	"errors"
	"fmt"
)

// Epsilon 浮点数量比较容差，吸收配方换算带来的尾差。
const Epsilon = 1e-9

// ErrorKind 业务错误分类。调用方按 Kind 分支，不解析错误文本。
type ErrorKind string

const (
	// KindInvalidProduct 商品缺失或已下架（调用方输入问题）。
	KindInvalidProduct ErrorKind = "invalid_product"
	// KindMissingRecipe strict 模式下商品没有配方。
	KindMissingRecipe ErrorKind = "missing_recipe"
	// KindUnitMismatch 同一原料的配方明细单位冲突（数据完整性问题，不重试）。
	KindUnitMismatch ErrorKind = "unit_mismatch"
	// KindInsufficientInventory 库存不足，附带完整缺口明细。
	KindInsufficientInventory ErrorKind = "insufficient_inventory"
	// KindInventoryRace 校验与扣减看到了不同的台账状态，属内部一致性事件；
	// 事务整体回滚，调用方可安全重试。
	KindInventoryRace ErrorKind = "inventory_race"
	// KindNotADraft 对非 draft 订单执行 finalize。
	KindNotADraft ErrorKind = "not_a_draft"
	// KindOrderNotFound 订单不存在。
	KindOrderNotFound ErrorKind = "order_not_found"
)

// Shortage 单个原料的缺口明细。
type Shortage struct {
	IngredientID uint    `json:"ingredient_id"`
	Name         string  `json:"name"`
	Needed       float64 `json:"needed"`
	Available    float64 `json:"available"`
	Shortfall    float64 `json:"shortfall"`
	Unit         string  `json:"unit"`
}

// Error 核心层的类型化错误。
type Error struct {
	Kind      ErrorKind
	Msg       string
	Shortages []Shortage
}

func (e *Error) Error() string {
	if len(e.Shortages) > 0 {
		return fmt.Sprintf("%s: %s (%d shortage(s))", e.Kind, e.Msg, len(e.Shortages))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Errf 构造带格式化消息的类型化错误。
func Errf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf 取出错误的业务分类；非核心错误返回 false。
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind 判断错误是否属于某个分类。
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
