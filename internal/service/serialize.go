package service

import (
	"time"

	"forum-bans/internal/models"
)

// UserInfo is the nested banned-user shape in responses
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ModeratorInfo is the nested moderator shape in responses
type ModeratorInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// BanInfo is the serialized form of a ban
type BanInfo struct {
	ID         int64          `json:"id"`
	User       UserInfo       `json:"user"`
	CourseID   *string        `json:"course_id"`
	OrgKey     string         `json:"org_key"`
	Scope      string         `json:"scope"`
	Reason     string         `json:"reason"`
	IsActive   bool           `json:"is_active"`
	BannedAt   time.Time      `json:"banned_at"`
	BannedBy   *ModeratorInfo `json:"banned_by"`
	UnbannedAt *time.Time     `json:"unbanned_at"`
	UnbannedBy *ModeratorInfo `json:"unbanned_by"`
}

// ExceptionInfo is the serialized form of a ban exception
type ExceptionInfo struct {
	ID         int64     `json:"id"`
	BanID      int64     `json:"ban_id"`
	CourseID   string    `json:"course_id"`
	UnbannedBy string    `json:"unbanned_by"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// UnbanResult is the response body for unban operations. Callers branch
// on ExceptionCreated: a full unban deactivates the ban, an exception
// leaves the organization ban active.
type UnbanResult struct {
	Status           string         `json:"status"`
	Message          string         `json:"message"`
	ExceptionCreated bool           `json:"exception_created"`
	Ban              *BanInfo       `json:"ban"`
	Exception        *ExceptionInfo `json:"exception"`
}

// newBanInfo serializes a ban with its user associations loaded
func newBanInfo(ban *models.Ban) *BanInfo {
	info := &BanInfo{
		ID:         ban.ID,
		OrgKey:     ban.OrgKey,
		Scope:      ban.Scope,
		Reason:     ban.Reason,
		IsActive:   ban.IsActive,
		BannedAt:   ban.BannedAt,
		UnbannedAt: ban.UnbannedAt,
	}
	if ban.CourseID != "" {
		courseID := ban.CourseID
		info.CourseID = &courseID
	}
	if ban.User != nil {
		info.User = UserInfo{ID: ban.User.ID, Username: ban.User.Username, Email: ban.User.Email}
	}
	if ban.BannedBy != nil {
		info.BannedBy = &ModeratorInfo{ID: ban.BannedBy.ID, Username: ban.BannedBy.Username}
	}
	if ban.UnbannedBy != nil {
		info.UnbannedBy = &ModeratorInfo{ID: ban.UnbannedBy.ID, Username: ban.UnbannedBy.Username}
	}
	return info
}
