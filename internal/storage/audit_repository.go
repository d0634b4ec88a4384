package storage

import (
	"context"

	"forum-bans/internal/models"

	"gorm.io/gorm"
)

// AuditRepository handles database operations for AuditLog.
// The log is append-only; there are no update or delete operations.
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *AuditRepository) WithTx(tx *gorm.DB) *AuditRepository {
	return &AuditRepository{db: tx}
}

// MigrateTable ensures the AuditLog table exists
func (r *AuditRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.AuditLog{})
}

// Append inserts a new audit entry
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
