package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"forum-bans/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func banColumns() []string {
	return []string{
		"id", "user_id", "scope", "course_id", "org_key", "reason",
		"is_active", "banned_at", "banned_by_id",
		"unbanned_at", "unbanned_by_id", "created_at", "updated_at",
	}
}

func TestBanRepositoryGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBanRepository(db)

	mock.ExpectQuery("SELECT .* FROM `discussion_user_ban`").
		WillReturnRows(sqlmock.NewRows(banColumns()))

	ban, err := repo.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, ban)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBanRepository(db)

	mock.ExpectExec("INSERT INTO `discussion_user_ban`").
		WillReturnResult(sqlmock.NewResult(7, 1))

	ban := &models.Ban{
		UserID:     123,
		Scope:      models.ScopeCourse,
		CourseID:   "course-v1:edX+DemoX+Demo_Course",
		OrgKey:     "edX",
		Reason:     "spam",
		IsActive:   true,
		BannedAt:   time.Now(),
		BannedByID: 456,
	}
	err := repo.Create(context.Background(), ban)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ban.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRepositoryFindByTarget(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBanRepository(db)
	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM `discussion_user_ban` WHERE \\(user_id = \\? AND scope = \\?\\) AND course_id = \\?").
		WithArgs(int64(123), models.ScopeCourse, "course-v1:edX+DemoX+Demo_Course", 1).
		WillReturnRows(sqlmock.NewRows(banColumns()).
			AddRow(7, 123, models.ScopeCourse, "course-v1:edX+DemoX+Demo_Course", "edX", "spam",
				true, now, 456, nil, nil, now, now))

	ban, err := repo.FindByTarget(context.Background(), 123, models.ScopeCourse, "course-v1:edX+DemoX+Demo_Course", "")
	require.NoError(t, err)
	require.NotNil(t, ban)
	assert.Equal(t, int64(7), ban.ID)
	assert.Equal(t, "edX", ban.OrgKey)
	assert.True(t, ban.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRepositoryFindByTargetOrgScope(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBanRepository(db)

	// org bans match on org_key, not course_id
	mock.ExpectQuery("SELECT .* FROM `discussion_user_ban` WHERE \\(user_id = \\? AND scope = \\?\\) AND org_key = \\?").
		WithArgs(int64(123), models.ScopeOrganization, "edX", 1).
		WillReturnRows(sqlmock.NewRows(banColumns()))

	ban, err := repo.FindByTarget(context.Background(), 123, models.ScopeOrganization, "", "edX")
	require.NoError(t, err)
	assert.Nil(t, ban)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRepositoryHasActiveCourseBan(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBanRepository(db)

	countQuery := regexp.QuoteMeta("SELECT count(*) FROM `discussion_user_ban`")

	mock.ExpectQuery(countQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	banned, err := repo.HasActiveCourseBan(context.Background(), 123, "course-v1:edX+DemoX+Demo_Course")
	require.NoError(t, err)
	assert.True(t, banned)

	mock.ExpectQuery(countQuery).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	banned, err = repo.HasActiveCourseBan(context.Background(), 123, "course-v1:edX+OtherX+Other_Course")
	require.NoError(t, err)
	assert.False(t, banned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRepositoryListCourseFilterSQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBanRepository(db)
	courseID := "course-v1:edX+DemoX+Demo_Course"

	// a course listing matches course bans for the course OR org bans for
	// the course's org, minus org bans holding an exception for the course
	mock.ExpectQuery("SELECT .* FROM `discussion_user_ban` WHERE is_active = \\? " +
		"AND \\(course_id = \\? OR \\(scope = \\? AND org_key = \\? AND id NOT IN " +
		"\\(SELECT .ban_id. FROM `discussion_ban_exception` WHERE course_id = \\?\\)\\)\\) " +
		"ORDER BY banned_at DESC").
		WithArgs(true, courseID, models.ScopeOrganization, "edX", courseID).
		WillReturnRows(sqlmock.NewRows(banColumns()))

	bans, err := repo.List(context.Background(), models.BanFilter{
		CourseID:  courseID,
		CourseOrg: "edX",
	})
	require.NoError(t, err)
	assert.Empty(t, bans)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBanRepositorySave(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBanRepository(db)

	mock.ExpectExec("UPDATE `discussion_user_ban` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	moderator := int64(456)
	ban := &models.Ban{
		ID:           7,
		UserID:       123,
		User:         &models.User{ID: 123, Username: "learner"},
		Scope:        models.ScopeCourse,
		CourseID:     "course-v1:edX+DemoX+Demo_Course",
		OrgKey:       "edX",
		IsActive:     false,
		BannedAt:     now,
		BannedByID:   456,
		BannedBy:     &models.User{ID: 456, Username: "moderator"},
		UnbannedAt:   &now,
		UnbannedByID: &moderator,
	}
	// a single UPDATE and nothing else: the attached user associations
	// must not be written
	err := repo.Save(context.Background(), ban)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
