package storage

import (
	"context"

	"forum-bans/internal/models"

	"gorm.io/gorm"
)

// Store is the persistence surface the ban and query services work
// against. Transaction runs fn against a store bound to a single
// database transaction; everything fn writes commits or rolls back
// together.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetUser(ctx context.Context, id int64) (*models.User, error)

	GetBan(ctx context.Context, id int64) (*models.Ban, error)
	GetActiveBan(ctx context.Context, id int64) (*models.Ban, error)
	FindBanByTarget(ctx context.Context, userID int64, scope, courseID, orgKey string) (*models.Ban, error)
	CreateBan(ctx context.Context, ban *models.Ban) error
	SaveBan(ctx context.Context, ban *models.Ban) error
	ListBans(ctx context.Context, f models.BanFilter) ([]*models.Ban, error)
	FindActiveOrgBan(ctx context.Context, userID int64, orgKey string) (*models.Ban, error)
	HasActiveCourseBan(ctx context.Context, userID int64, courseID string) (bool, error)

	UpsertException(ctx context.Context, exc *models.BanException) (created bool, err error)
	HasException(ctx context.Context, banID int64, courseID string) (bool, error)

	AppendAudit(ctx context.Context, entry *models.AuditLog) error
}

// GormStore implements Store on top of the repositories
type GormStore struct {
	db         *gorm.DB
	users      *UserRepository
	bans       *BanRepository
	exceptions *ExceptionRepository
	audit      *AuditRepository
}

// NewStore creates a gorm-backed Store
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:         db,
		users:      NewUserRepository(db),
		bans:       NewBanRepository(db),
		exceptions: NewExceptionRepository(db),
		audit:      NewAuditRepository(db),
	}
}

// Migrate ensures all tables exist
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(
		&models.User{},
		&models.Ban{},
		&models.BanException{},
		&models.AuditLog{},
	)
}

// Transaction runs fn inside a database transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *GormStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *GormStore) GetBan(ctx context.Context, id int64) (*models.Ban, error) {
	return s.bans.GetByID(ctx, id)
}

func (s *GormStore) GetActiveBan(ctx context.Context, id int64) (*models.Ban, error) {
	return s.bans.GetActiveByID(ctx, id)
}

func (s *GormStore) FindBanByTarget(ctx context.Context, userID int64, scope, courseID, orgKey string) (*models.Ban, error) {
	return s.bans.FindByTarget(ctx, userID, scope, courseID, orgKey)
}

func (s *GormStore) CreateBan(ctx context.Context, ban *models.Ban) error {
	return s.bans.Create(ctx, ban)
}

func (s *GormStore) SaveBan(ctx context.Context, ban *models.Ban) error {
	return s.bans.Save(ctx, ban)
}

func (s *GormStore) ListBans(ctx context.Context, f models.BanFilter) ([]*models.Ban, error) {
	return s.bans.List(ctx, f)
}

func (s *GormStore) FindActiveOrgBan(ctx context.Context, userID int64, orgKey string) (*models.Ban, error) {
	return s.bans.FindActiveOrgBan(ctx, userID, orgKey)
}

func (s *GormStore) HasActiveCourseBan(ctx context.Context, userID int64, courseID string) (bool, error) {
	return s.bans.HasActiveCourseBan(ctx, userID, courseID)
}

func (s *GormStore) UpsertException(ctx context.Context, exc *models.BanException) (bool, error) {
	return s.exceptions.Upsert(ctx, exc)
}

func (s *GormStore) HasException(ctx context.Context, banID int64, courseID string) (bool, error) {
	return s.exceptions.Exists(ctx, banID, courseID)
}

func (s *GormStore) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	return s.audit.Append(ctx, entry)
}
