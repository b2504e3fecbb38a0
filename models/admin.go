package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleApprover = "approver"
	RoleViewer   = "viewer"
)

type Admin struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FullName  string         `gorm:"size:255" json:"fullName"`
	Username  string         `gorm:"uniqueIndex;size:150" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // bcrypt hash
	Role      string         `gorm:"size:32;default:viewer" json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CanApprove reports whether the account may change booking status and edit the catalog.
func (a Admin) CanApprove() bool {
	return a.Role == RoleApprover
}
