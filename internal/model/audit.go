package model

import "time"

// 审计动作常量。订单相关动作与生命周期操作一一对应。
const (
	AuditHoldOrder     = "HOLD_ORDER"
	AuditCreateOrder   = "CREATE_ORDER"
	AuditFinalizeDraft = "FINALIZE_DRAFT"
	AuditVoidOrder     = "VOID_ORDER"
	AuditRestock       = "RESTOCK"
	AuditAdjustStock   = "ADJUST_STOCK"
	AuditRecordWaste   = "RECORD_WASTE"
)

// AuditEntry 不可变审计日志，只追加。
type AuditEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Action   string `gorm:"size:32;not null;index" json:"action"`
	RecordID uint   `gorm:"index" json:"record_id"`
	Details  string `gorm:"size:512" json:"details"`
}

func (AuditEntry) TableName() string { return "audit_entries" }
