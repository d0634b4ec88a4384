package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"forum-bans/internal/models"
)

// MemoryStore is an in-memory Store used by tests and local development.
// Transaction holds the store lock for the duration of fn, so concurrent
// mutations serialize, but there is no rollback on error.
type MemoryStore struct {
	mu         sync.Mutex
	users      map[int64]models.User
	bans       map[int64]models.Ban
	exceptions map[int64]models.BanException
	audits     []models.AuditLog

	nextBanID   int64
	nextExcID   int64
	nextAuditID int64
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]models.User),
		bans:       make(map[int64]models.Ban),
		exceptions: make(map[int64]models.BanException),
	}
}

// AddUser registers a user for lookups
func (s *MemoryStore) AddUser(user models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = int64(len(s.users) + 1)
	}
	s.users[user.ID] = user
	return user
}

// Audits returns a snapshot of the audit log
func (s *MemoryStore) Audits() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditLog, len(s.audits))
	copy(out, s.audits)
	return out
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&lockedMemoryStore{s})
}

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getUser(id), nil
}

func (s *MemoryStore) getUser(id int64) *models.User {
	if user, ok := s.users[id]; ok {
		u := user
		return &u
	}
	return nil
}

func (s *MemoryStore) withUsers(b models.Ban) *models.Ban {
	ban := b
	ban.User = s.getUser(ban.UserID)
	ban.BannedBy = s.getUser(ban.BannedByID)
	if ban.UnbannedByID != nil {
		ban.UnbannedBy = s.getUser(*ban.UnbannedByID)
	} else {
		ban.UnbannedBy = nil
	}
	return &ban
}

func (s *MemoryStore) GetBan(ctx context.Context, id int64) (*models.Ban, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getBan(id)
}

func (s *MemoryStore) getBan(id int64) (*models.Ban, error) {
	if ban, ok := s.bans[id]; ok {
		return s.withUsers(ban), nil
	}
	return nil, nil
}

func (s *MemoryStore) GetActiveBan(ctx context.Context, id int64) (*models.Ban, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getActiveBan(id)
}

func (s *MemoryStore) getActiveBan(id int64) (*models.Ban, error) {
	if ban, ok := s.bans[id]; ok && ban.IsActive {
		return s.withUsers(ban), nil
	}
	return nil, nil
}

func (s *MemoryStore) FindBanByTarget(ctx context.Context, userID int64, scope, courseID, orgKey string) (*models.Ban, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findBanByTarget(userID, scope, courseID, orgKey)
}

func (s *MemoryStore) findBanByTarget(userID int64, scope, courseID, orgKey string) (*models.Ban, error) {
	for _, ban := range s.bans {
		if ban.UserID != userID || ban.Scope != scope {
			continue
		}
		if scope == models.ScopeCourse && ban.CourseID == courseID {
			return s.withUsers(ban), nil
		}
		if scope == models.ScopeOrganization && ban.OrgKey == orgKey {
			return s.withUsers(ban), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateBan(ctx context.Context, ban *models.Ban) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createBan(ban)
}

func (s *MemoryStore) createBan(ban *models.Ban) error {
	s.nextBanID++
	ban.ID = s.nextBanID
	now := time.Now()
	ban.CreatedAt = now
	ban.UpdatedAt = now
	stored := *ban
	stored.User, stored.BannedBy, stored.UnbannedBy = nil, nil, nil
	s.bans[ban.ID] = stored
	return nil
}

func (s *MemoryStore) SaveBan(ctx context.Context, ban *models.Ban) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveBan(ban)
}

func (s *MemoryStore) saveBan(ban *models.Ban) error {
	ban.UpdatedAt = time.Now()
	stored := *ban
	stored.User, stored.BannedBy, stored.UnbannedBy = nil, nil, nil
	s.bans[ban.ID] = stored
	return nil
}

func (s *MemoryStore) FindActiveOrgBan(ctx context.Context, userID int64, orgKey string) (*models.Ban, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findActiveOrgBan(userID, orgKey)
}

func (s *MemoryStore) findActiveOrgBan(userID int64, orgKey string) (*models.Ban, error) {
	for _, ban := range s.bans {
		if ban.UserID == userID && ban.Scope == models.ScopeOrganization &&
			ban.OrgKey == orgKey && ban.IsActive {
			return s.withUsers(ban), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) HasActiveCourseBan(ctx context.Context, userID int64, courseID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasActiveCourseBan(userID, courseID)
}

func (s *MemoryStore) hasActiveCourseBan(userID int64, courseID string) (bool, error) {
	for _, ban := range s.bans {
		if ban.UserID == userID && ban.Scope == models.ScopeCourse &&
			ban.CourseID == courseID && ban.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) ListBans(ctx context.Context, f models.BanFilter) ([]*models.Ban, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listBans(f)
}

func (s *MemoryStore) listBans(f models.BanFilter) ([]*models.Ban, error) {
	var out []*models.Ban
	for _, ban := range s.bans {
		if !f.IncludeInactive && !ban.IsActive {
			continue
		}
		if f.Scope != "" && ban.Scope != f.Scope {
			continue
		}
		if !s.matchesTarget(ban, f) {
			continue
		}
		out = append(out, s.withUsers(ban))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BannedAt.After(out[j].BannedAt)
	})
	return out, nil
}

func (s *MemoryStore) matchesTarget(ban models.Ban, f models.BanFilter) bool {
	switch {
	case f.CourseID != "":
		switch f.Scope {
		case models.ScopeCourse:
			return ban.CourseID == f.CourseID
		case models.ScopeOrganization:
			return true
		}
		if f.CourseOrg == "" {
			return ban.CourseID == f.CourseID
		}
		if ban.CourseID == f.CourseID {
			return true
		}
		if ban.Scope == models.ScopeOrganization && ban.OrgKey == f.CourseOrg {
			excepted, _ := s.hasException(ban.ID, f.CourseID)
			return !excepted
		}
		return false
	case f.OrgKey != "":
		return ban.OrgKey == f.OrgKey
	}
	return true
}

func (s *MemoryStore) UpsertException(ctx context.Context, exc *models.BanException) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertException(exc)
}

func (s *MemoryStore) upsertException(exc *models.BanException) (bool, error) {
	for id, existing := range s.exceptions {
		if existing.BanID == exc.BanID && existing.CourseID == exc.CourseID {
			existing.Reason = exc.Reason
			existing.UnbannedByID = exc.UnbannedByID
			existing.UpdatedAt = time.Now()
			s.exceptions[id] = existing
			*exc = existing
			return false, nil
		}
	}
	s.nextExcID++
	exc.ID = s.nextExcID
	now := time.Now()
	exc.CreatedAt = now
	exc.UpdatedAt = now
	s.exceptions[exc.ID] = *exc
	return true, nil
}

func (s *MemoryStore) HasException(ctx context.Context, banID int64, courseID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasException(banID, courseID)
}

func (s *MemoryStore) hasException(banID int64, courseID string) (bool, error) {
	for _, exc := range s.exceptions {
		if exc.BanID == banID && exc.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendAudit(entry)
}

func (s *MemoryStore) appendAudit(entry *models.AuditLog) error {
	s.nextAuditID++
	entry.ID = s.nextAuditID
	entry.CreatedAt = time.Now()
	s.audits = append(s.audits, *entry)
	return nil
}

// lockedMemoryStore is the view of a MemoryStore handed to Transaction
// callbacks; the parent already holds the lock.
type lockedMemoryStore struct {
	s *MemoryStore
}

func (l *lockedMemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return fn(l)
}

func (l *lockedMemoryStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return l.s.getUser(id), nil
}

func (l *lockedMemoryStore) GetBan(ctx context.Context, id int64) (*models.Ban, error) {
	return l.s.getBan(id)
}

func (l *lockedMemoryStore) GetActiveBan(ctx context.Context, id int64) (*models.Ban, error) {
	return l.s.getActiveBan(id)
}

func (l *lockedMemoryStore) FindBanByTarget(ctx context.Context, userID int64, scope, courseID, orgKey string) (*models.Ban, error) {
	return l.s.findBanByTarget(userID, scope, courseID, orgKey)
}

func (l *lockedMemoryStore) CreateBan(ctx context.Context, ban *models.Ban) error {
	return l.s.createBan(ban)
}

func (l *lockedMemoryStore) SaveBan(ctx context.Context, ban *models.Ban) error {
	return l.s.saveBan(ban)
}

func (l *lockedMemoryStore) ListBans(ctx context.Context, f models.BanFilter) ([]*models.Ban, error) {
	return l.s.listBans(f)
}

func (l *lockedMemoryStore) FindActiveOrgBan(ctx context.Context, userID int64, orgKey string) (*models.Ban, error) {
	return l.s.findActiveOrgBan(userID, orgKey)
}

func (l *lockedMemoryStore) HasActiveCourseBan(ctx context.Context, userID int64, courseID string) (bool, error) {
	return l.s.hasActiveCourseBan(userID, courseID)
}

func (l *lockedMemoryStore) UpsertException(ctx context.Context, exc *models.BanException) (bool, error) {
	return l.s.upsertException(exc)
}

func (l *lockedMemoryStore) HasException(ctx context.Context, banID int64, courseID string) (bool, error) {
	return l.s.hasException(banID, courseID)
}

func (l *lockedMemoryStore) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	return l.s.appendAudit(entry)
}
