package service

import (
	"context"
	"fmt"
	"time"

	"forum-bans/internal/coursekey"
	"forum-bans/internal/logger"
	"forum-bans/internal/models"
	"forum-bans/internal/storage"
)

const defaultBanReason = "No reason provided"
const defaultExceptionReason = "Course-level exception to organization ban"

// BanRequest carries the fields of a ban operation
type BanRequest struct {
	UserID     int64  `json:"user_id"`
	BannedByID int64  `json:"banned_by_id"`
	Scope      string `json:"scope"`
	CourseID   string `json:"course_id"`
	OrgKey     string `json:"org_key"`
	Reason     string `json:"reason"`
}

// UnbanRequest carries the fields of an unban operation. CourseID turns
// an unban of an organization ban into a course exception.
type UnbanRequest struct {
	UnbannedByID int64  `json:"unbanned_by_id"`
	CourseID     string `json:"course_id"`
	Reason       string `json:"reason"`
}

// BanService enforces the ban and unban business rules
type BanService struct {
	store storage.Store
}

// NewBanService creates a new BanService
func NewBanService(store storage.Store) *BanService {
	return &BanService{store: store}
}

// Ban bans a user from discussions, either for one course or for a whole
// organization. If a ban row for the same (user, scope, target) already
// exists it is reactivated or refreshed in place; the store never grows a
// second row for the same target. The ban write and its audit entry
// commit in one transaction.
func (s *BanService) Ban(ctx context.Context, req BanRequest) (*BanInfo, error) {
	scope := req.Scope
	if scope == "" {
		scope = models.ScopeCourse
	}
	if scope != models.ScopeCourse && scope != models.ScopeOrganization {
		return nil, NewInvalidRequest("Invalid scope: %s. Must be 'course' or 'organization'", scope)
	}

	var courseID, orgKey string
	switch scope {
	case models.ScopeCourse:
		if req.CourseID == "" {
			return nil, NewInvalidRequest("course_id is required for course-level bans")
		}
		org, err := coursekey.Org(req.CourseID)
		if err != nil {
			return nil, NewInvalidRequest("%v", err)
		}
		courseID = req.CourseID
		orgKey = org
	case models.ScopeOrganization:
		orgKey = req.OrgKey
		if orgKey == "" && req.CourseID != "" {
			org, err := coursekey.Org(req.CourseID)
			if err != nil {
				return nil, NewInvalidRequest("%v", err)
			}
			orgKey = org
		}
		if orgKey == "" {
			return nil, NewInvalidRequest("org_key is required for organization-level bans")
		}
	}

	var info *BanInfo
	err := s.store.Transaction(ctx, func(tx storage.Store) error {
		user, err := tx.GetUser(ctx, req.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return NewNotFound("User not found")
		}
		moderator, err := tx.GetUser(ctx, req.BannedByID)
		if err != nil {
			return err
		}
		if moderator == nil {
			return NewNotFound("User not found")
		}

		ban, err := tx.FindBanByTarget(ctx, req.UserID, scope, courseID, orgKey)
		if err != nil {
			return err
		}

		now := time.Now()
		action := models.ActionBanUser
		created := false
		if ban == nil {
			reason := req.Reason
			if reason == "" {
				reason = defaultBanReason
			}
			candidate := &models.Ban{
				UserID:     req.UserID,
				Scope:      scope,
				CourseID:   courseID,
				OrgKey:     orgKey,
				Reason:     reason,
				IsActive:   true,
				BannedAt:   now,
				BannedByID: moderator.ID,
			}
			err := tx.CreateBan(ctx, candidate)
			switch {
			case err == nil:
				ban = candidate
				created = true
			case storage.IsDuplicateKey(err):
				// a concurrent request committed the same target between
				// the find and the insert; refresh that row instead
				ban, err = tx.FindBanByTarget(ctx, req.UserID, scope, courseID, orgKey)
				if err != nil {
					return err
				}
				if ban == nil {
					return fmt.Errorf("ban row missing after duplicate key: user_id=%d, scope=%s", req.UserID, scope)
				}
			default:
				return err
			}
		}
		if !created {
			if !ban.IsActive {
				action = models.ActionBanReactivate
			}
			ban.IsActive = true
			ban.BannedAt = now
			ban.BannedByID = moderator.ID
			if req.Reason != "" {
				ban.Reason = req.Reason
			}
			ban.UnbannedAt = nil
			ban.UnbannedByID = nil
			ban.UnbannedBy = nil
			if err := tx.SaveBan(ctx, ban); err != nil {
				return err
			}
		}

		entry := &models.AuditLog{
			Action:       action,
			Source:       models.SourceHuman,
			TargetUserID: user.ID,
			ModeratorID:  moderator.ID,
			CourseID:     courseID,
			Scope:        scope,
			Reason:       req.Reason,
			BanID:        ban.ID,
		}
		if err := tx.AppendAudit(ctx, entry); err != nil {
			return err
		}

		ban.User = user
		ban.BannedBy = moderator
		info = newBanInfo(ban)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("User banned: user_id=%d, scope=%s, course_id=%s, org_key=%s, banned_by=%d",
		req.UserID, scope, courseID, orgKey, req.BannedByID)
	return info, nil
}

// Unban lifts a ban. Course bans, and organization bans unbanned without
// a course id, are fully deactivated (soft delete). An organization ban
// unbanned with a course id instead gains an exception for that course
// and stays active; the result's ExceptionCreated flag distinguishes the
// two outcomes. The state change and its audit entry commit in one
// transaction.
func (s *BanService) Unban(ctx context.Context, banID int64, req UnbanRequest) (*UnbanResult, error) {
	var res *UnbanResult
	err := s.store.Transaction(ctx, func(tx storage.Store) error {
		ban, err := tx.GetActiveBan(ctx, banID)
		if err != nil {
			return err
		}
		if ban == nil {
			return NewNotFound("Active ban with id %d not found", banID)
		}
		moderator, err := tx.GetUser(ctx, req.UnbannedByID)
		if err != nil {
			return err
		}
		if moderator == nil {
			return NewNotFound("Moderator user not found")
		}

		if ban.Scope == models.ScopeOrganization && req.CourseID != "" {
			return s.createException(ctx, tx, ban, moderator, req, &res)
		}
		return s.fullUnban(ctx, tx, ban, moderator, req, &res)
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("User unbanned: ban_id=%d, exception_created=%t, unbanned_by=%d",
		banID, res.ExceptionCreated, req.UnbannedByID)
	return res, nil
}

func (s *BanService) fullUnban(ctx context.Context, tx storage.Store, ban *models.Ban, moderator *models.User, req UnbanRequest, res **UnbanResult) error {
	now := time.Now()
	ban.IsActive = false
	ban.UnbannedAt = &now
	ban.UnbannedByID = &moderator.ID
	if req.Reason != "" {
		ban.Reason = req.Reason
	}
	if err := tx.SaveBan(ctx, ban); err != nil {
		return err
	}

	entry := &models.AuditLog{
		Action:       models.ActionUnbanUser,
		Source:       models.SourceHuman,
		TargetUserID: ban.UserID,
		ModeratorID:  moderator.ID,
		CourseID:     ban.CourseID,
		Scope:        ban.Scope,
		Reason:       fmt.Sprintf("Unban: %s", req.Reason),
		BanID:        ban.ID,
	}
	if err := tx.AppendAudit(ctx, entry); err != nil {
		return err
	}

	ban.UnbannedBy = moderator
	*res = &UnbanResult{
		Status:           "success",
		Message:          fmt.Sprintf("User %s unbanned successfully", ban.User.Username),
		ExceptionCreated: false,
		Ban:              newBanInfo(ban),
		Exception:        nil,
	}
	return nil
}

func (s *BanService) createException(ctx context.Context, tx storage.Store, ban *models.Ban, moderator *models.User, req UnbanRequest, res **UnbanResult) error {
	if _, err := coursekey.Parse(req.CourseID); err != nil {
		return NewInvalidRequest("%v", err)
	}

	reason := req.Reason
	if reason == "" {
		reason = defaultExceptionReason
	}
	exc := &models.BanException{
		BanID:        ban.ID,
		CourseID:     req.CourseID,
		Reason:       reason,
		UnbannedByID: moderator.ID,
	}
	if _, err := tx.UpsertException(ctx, exc); err != nil {
		return err
	}

	entry := &models.AuditLog{
		Action:       models.ActionBanException,
		Source:       models.SourceHuman,
		TargetUserID: ban.UserID,
		ModeratorID:  moderator.ID,
		CourseID:     req.CourseID,
		Scope:        models.ScopeOrganization,
		Reason:       fmt.Sprintf("Exception to org ban: %s", req.Reason),
		BanID:        ban.ID,
		ExceptionID:  &exc.ID,
	}
	if err := tx.AppendAudit(ctx, entry); err != nil {
		return err
	}

	*res = &UnbanResult{
		Status: "success",
		Message: fmt.Sprintf("User %s unbanned from %s (org-level ban still active for other courses)",
			ban.User.Username, req.CourseID),
		ExceptionCreated: true,
		Ban:              newBanInfo(ban),
		Exception: &ExceptionInfo{
			ID:         exc.ID,
			BanID:      ban.ID,
			CourseID:   exc.CourseID,
			UnbannedBy: moderator.Username,
			Reason:     exc.Reason,
			CreatedAt:  exc.CreatedAt,
		},
	}
	return nil
}
