package models

import "time"

// Audit actions
const (
	ActionBanUser       = "ban_user"
	ActionBanReactivate = "ban_reactivate"
	ActionUnbanUser     = "unban_user"
	ActionBanException  = "ban_exception"
)

// Audit sources
const (
	SourceHuman = "human"
)

// AuditLog is an append-only record of a moderation action. Entries are
// written in the same transaction as the state change they describe.
type AuditLog struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Action       string `gorm:"size:50;index;not null"`
	Source       string `gorm:"size:20;default:human"`
	TargetUserID int64  `gorm:"index;not null"`
	TargetUser   *User  `gorm:"foreignKey:TargetUserID"`
	ModeratorID  int64
	Moderator    *User  `gorm:"foreignKey:ModeratorID"`
	CourseID     string `gorm:"size:255;index"`
	Scope        string `gorm:"size:20"`
	Reason       string `gorm:"type:text"`
	BanID        int64  `gorm:"index"`
	ExceptionID  *int64
	CreatedAt    time.Time
}

// TableName overrides the default table name
func (AuditLog) TableName() string {
	return "moderation_audit_log"
}
