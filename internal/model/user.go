package model

import (
	"time"

	"gorm.io/gorm"

	"cafecraft/internal/rbac"
)

// User 操作员账号。密码哈希由外部认证层负责，这里只存结果。
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	FullName     string    `gorm:"size:128;not null" json:"full_name"`
	PasswordHash string    `gorm:"size:128" json:"-"`
	Role         rbac.Role `gorm:"size:32;not null" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
}

func (User) TableName() string { return "users" }
