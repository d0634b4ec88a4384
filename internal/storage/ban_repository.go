package storage

import (
	"context"

	"forum-bans/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BanRepository handles database operations for Ban
type BanRepository struct {
	db *gorm.DB
}

// NewBanRepository creates a new BanRepository
func NewBanRepository(db *gorm.DB) *BanRepository {
	return &BanRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *BanRepository) WithTx(tx *gorm.DB) *BanRepository {
	return &BanRepository{db: tx}
}

// MigrateTable ensures the Ban table exists
func (r *BanRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.Ban{})
}

// Create inserts a new Ban. Associations are omitted: the user rows a
// ban points at already exist and must never be written here.
func (r *BanRepository) Create(ctx context.Context, ban *models.Ban) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ban).Error
}

// Save persists changes to an existing Ban. Associations are omitted so
// that saving a ban loaded with its users attached cannot write to the
// user table.
func (r *BanRepository) Save(ctx context.Context, ban *models.Ban) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(ban).Error
}

// GetByID returns a ban with user associations loaded, active or not.
// Returns nil when no such ban exists.
func (r *BanRepository) GetByID(ctx context.Context, id int64) (*models.Ban, error) {
	var ban models.Ban
	result := r.db.WithContext(ctx).
		Preload("User").Preload("BannedBy").Preload("UnbannedBy").
		First(&ban, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ban, nil
}

// GetActiveByID returns an active ban with user associations loaded,
// or nil when the ban is absent or inactive.
func (r *BanRepository) GetActiveByID(ctx context.Context, id int64) (*models.Ban, error) {
	var ban models.Ban
	result := r.db.WithContext(ctx).
		Preload("User").Preload("BannedBy").Preload("UnbannedBy").
		Where("is_active = ?", true).
		First(&ban, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ban, nil
}

// FindByTarget looks up the single ban row for a (user, scope, target)
// tuple, active or not. The target is the course id for course bans and
// the org key for organization bans.
func (r *BanRepository) FindByTarget(ctx context.Context, userID int64, scope, courseID, orgKey string) (*models.Ban, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND scope = ?", userID, scope)
	if scope == models.ScopeCourse {
		q = q.Where("course_id = ?", courseID)
	} else {
		q = q.Where("org_key = ?", orgKey)
	}

	var ban models.Ban
	result := q.First(&ban)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ban, nil
}

// FindActiveOrgBan returns the user's active organization ban for the
// given org, or nil
func (r *BanRepository) FindActiveOrgBan(ctx context.Context, userID int64, orgKey string) (*models.Ban, error) {
	var ban models.Ban
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND scope = ? AND org_key = ? AND is_active = ?",
			userID, models.ScopeOrganization, orgKey, true).
		First(&ban)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &ban, nil
}

// HasActiveCourseBan reports whether the user has an active course-level
// ban for the given course
func (r *BanRepository) HasActiveCourseBan(ctx context.Context, userID int64, courseID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Ban{}).
		Where("user_id = ? AND scope = ? AND course_id = ? AND is_active = ?",
			userID, models.ScopeCourse, courseID, true).
		Count(&count)
	return count > 0, result.Error
}

// List returns bans matching the filter, newest first.
//
// A course filter matches course bans for that course plus organization
// bans for the course's org, minus org bans that carry an exception for
// the course. An org filter matches on the denormalized org_key column,
// which covers both scopes.
func (r *BanRepository) List(ctx context.Context, f models.BanFilter) ([]*models.Ban, error) {
	q := r.db.WithContext(ctx).Model(&models.Ban{}).
		Preload("User").Preload("BannedBy").Preload("UnbannedBy")

	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.Scope != "" {
		q = q.Where("scope = ?", f.Scope)
	}

	switch {
	case f.CourseID != "":
		switch f.Scope {
		case "":
			if f.CourseOrg != "" {
				excepted := r.db.Model(&models.BanException{}).
					Select("ban_id").
					Where("course_id = ?", f.CourseID)
				q = q.Where(
					r.db.Where("course_id = ?", f.CourseID).
						Or("scope = ? AND org_key = ? AND id NOT IN (?)",
							models.ScopeOrganization, f.CourseOrg, excepted),
				)
			} else {
				q = q.Where("course_id = ?", f.CourseID)
			}
		case models.ScopeCourse:
			q = q.Where("course_id = ?", f.CourseID)
		}
		// organization scope is already narrowed by the scope filter
	case f.OrgKey != "":
		q = q.Where("org_key = ?", f.OrgKey)
	}

	var bans []*models.Ban
	result := q.Order("banned_at DESC").Find(&bans)
	return bans, result.Error
}
