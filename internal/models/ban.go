package models

import "time"

// Ban scopes
const (
	ScopeCourse       = "course"
	ScopeOrganization = "organization"
)

// Ban is a discussion ban against a user, either for a single course or
// for a whole organization. A ban is never hard-deleted: a full unban
// flips IsActive off and a later re-ban reactivates the same row, so
// there is at most one row per (user, scope, target).
//
// CourseID is empty for organization bans; OrgKey is always populated
// (for course bans it is denormalized from the course key so that
// org-wide queries do not need to parse course ids).
type Ban struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	UserID       int64  `gorm:"index:idx_user_active;uniqueIndex:uniq_ban_target;not null"`
	User         *User  `gorm:"foreignKey:UserID"`
	Scope        string `gorm:"size:20;default:course;uniqueIndex:uniq_ban_target;index:idx_scope_active"`
	CourseID     string `gorm:"size:255;default:'';uniqueIndex:uniq_ban_target;index:idx_course_active"`
	OrgKey       string `gorm:"size:255;uniqueIndex:uniq_ban_target;index:idx_org_active"`
	Reason       string `gorm:"type:text"`
	IsActive     bool   `gorm:"default:true;index:idx_user_active;index:idx_scope_active;index:idx_course_active;index:idx_org_active"`
	BannedAt     time.Time
	BannedByID   int64
	BannedBy     *User `gorm:"foreignKey:BannedByID"`
	UnbannedAt   *time.Time
	UnbannedByID *int64
	UnbannedBy   *User          `gorm:"foreignKey:UnbannedByID"`
	Exceptions   []BanException `gorm:"foreignKey:BanID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the default table name
func (Ban) TableName() string {
	return "discussion_user_ban"
}

// BanException lifts an organization-level ban for one specific course
// while leaving the parent ban active everywhere else. At most one
// exception exists per (ban, course); re-creating one updates it.
type BanException struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	BanID        int64  `gorm:"uniqueIndex:uniq_ban_exception;not null"`
	CourseID     string `gorm:"size:255;uniqueIndex:uniq_ban_exception;index;not null"`
	Reason       string `gorm:"type:text"`
	UnbannedByID int64
	UnbannedBy   *User `gorm:"foreignKey:UnbannedByID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the default table name
func (BanException) TableName() string {
	return "discussion_ban_exception"
}

// BanFilter selects bans for listing. CourseOrg carries the organization
// parsed from CourseID so that course listings can include org-wide bans.
type BanFilter struct {
	CourseID        string
	CourseOrg       string
	OrgKey          string
	Scope           string
	IncludeInactive bool
}
