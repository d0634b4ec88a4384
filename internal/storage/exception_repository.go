package storage

import (
	"context"
	"time"

	"forum-bans/internal/models"

	"gorm.io/gorm"
)

// ExceptionRepository handles database operations for BanException
type ExceptionRepository struct {
	db *gorm.DB
}

// NewExceptionRepository creates a new ExceptionRepository
func NewExceptionRepository(db *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *ExceptionRepository) WithTx(tx *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: tx}
}

// MigrateTable ensures the BanException table exists
func (r *ExceptionRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.BanException{})
}

// Upsert creates the exception for (ban, course) or updates the existing
// one in place. The unique (ban_id, course_id) index keeps concurrent
// writers from producing duplicate rows. Reports whether a new row was
// inserted.
func (r *ExceptionRepository) Upsert(ctx context.Context, exc *models.BanException) (bool, error) {
	var existing models.BanException
	result := r.db.WithContext(ctx).
		Where("ban_id = ? AND course_id = ?", exc.BanID, exc.CourseID).
		First(&existing)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return true, r.db.WithContext(ctx).Create(exc).Error
		}
		return false, result.Error
	}

	existing.Reason = exc.Reason
	existing.UnbannedByID = exc.UnbannedByID
	existing.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return false, err
	}
	*exc = existing
	return false, nil
}

// Exists reports whether an exception for (ban, course) is present
func (r *ExceptionRepository) Exists(ctx context.Context, banID int64, courseID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.BanException{}).
		Where("ban_id = ? AND course_id = ?", banID, courseID).
		Count(&count)
	return count > 0, result.Error
}
