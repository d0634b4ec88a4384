package service

import (
	"context"
	"errors"
	"testing"

	"forum-bans/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mitCourse = "course-v1:MITx+6001x+2024"

func TestListBansActiveOnlyByDefault(t *testing.T) {
	store := newTestStore()
	banSvc := NewBanService(store)
	querySvc := NewQueryService(store)
	ctx := context.Background()

	ban, err := banSvc.Ban(ctx, BanRequest{
		UserID: 123, BannedByID: 456,
		Scope: models.ScopeCourse, CourseID: demoCourse,
	})
	require.NoError(t, err)

	_, err = banSvc.Unban(ctx, ban.ID, UnbanRequest{UnbannedByID: 456})
	require.NoError(t, err)

	active, err := querySvc.ListBans(ctx, ListBansFilter{})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := querySvc.ListBans(ctx, ListBansFilter{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)
	assert.NotNil(t, all[0].UnbannedAt)
	require.NotNil(t, all[0].UnbannedBy)
	assert.Equal(t, "moderator", all[0].UnbannedBy.Username)
}

func TestListBansCourseFilterIncludesOrgBans(t *testing.T) {
	store := newTestStore()
	banSvc := NewBanService(store)
	querySvc := NewQueryService(store)
	ctx := context.Background()

	// org-wide ban for learner, course ban for another_learner
	orgBan, err := banSvc.Ban(ctx, BanRequest{
		UserID: 123, BannedByID: 456,
		Scope: models.ScopeOrganization, OrgKey: "edX",
	})
	require.NoError(t, err)

	_, err = banSvc.Ban(ctx, BanRequest{
		UserID: 789, BannedByID: 456,
		Scope: models.ScopeCourse, CourseID: demoCourse,
	})
	require.NoError(t, err)

	bans, err := querySvc.ListBans(ctx, ListBansFilter{CourseID: demoCourse})
	require.NoError(t, err)
	assert.Len(t, bans, 2)

	// an exception for the demo course hides the org ban from its listing
	_, err = banSvc.Unban(ctx, orgBan.ID, UnbanRequest{UnbannedByID: 456, CourseID: demoCourse})
	require.NoError(t, err)

	bans, err = querySvc.ListBans(ctx, ListBansFilter{CourseID: demoCourse})
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, "another_learner", bans[0].User.Username)

	// but the org ban still shows up for a course without an exception
	bans, err = querySvc.ListBans(ctx, ListBansFilter{CourseID: otherCourse})
	require.NoError(t, err)
	require.Len(t, bans, 1)
	assert.Equal(t, "learner", bans[0].User.Username)
}

func TestListBansOrgKeyFilter(t *testing.T) {
	store := newTestStore()
	banSvc := NewBanService(store)
	querySvc := NewQueryService(store)
	ctx := context.Background()

	_, err := banSvc.Ban(ctx, BanRequest{
		UserID: 123, BannedByID: 456,
		Scope: models.ScopeOrganization, OrgKey: "edX",
	})
	require.NoError(t, err)

	// course ban carries the denormalized org key
	_, err = banSvc.Ban(ctx, BanRequest{
		UserID: 789, BannedByID: 456,
		Scope: models.ScopeCourse, CourseID: demoCourse,
	})
	require.NoError(t, err)

	_, err = banSvc.Ban(ctx, BanRequest{
		UserID: 789, BannedByID: 456,
		Scope: models.ScopeCourse, CourseID: mitCourse,
	})
	require.NoError(t, err)

	bans, err := querySvc.ListBans(ctx, ListBansFilter{OrgKey: "edX"})
	require.NoError(t, err)
	assert.Len(t, bans, 2)

	bans, err = querySvc.ListBans(ctx, ListBansFilter{OrgKey: "MITx"})
	require.NoError(t, err)
	assert.Len(t, bans, 1)
}

func TestListBansScopeFilter(t *testing.T) {
	store := newTestStore()
	banSvc := NewBanService(store)
	querySvc := NewQueryService(store)
	ctx := context.Background()

	_, err := banSvc.Ban(ctx, BanRequest{
		UserID: 123, BannedByID: 456,
		Scope: models.ScopeOrganization, OrgKey: "edX",
	})
	require.NoError(t, err)
	_, err = banSvc.Ban(ctx, BanRequest{
		UserID: 789, BannedByID: 456,
		Scope: models.ScopeCourse, CourseID: demoCourse,
	})
	require.NoError(t, err)

	orgOnly, err := querySvc.ListBans(ctx, ListBansFilter{Scope: models.ScopeOrganization})
	require.NoError(t, err)
	require.Len(t, orgOnly, 1)
	assert.Equal(t, models.ScopeOrganization, orgOnly[0].Scope)

	_, err = querySvc.ListBans(ctx, ListBansFilter{Scope: "campus"})
	require.Error(t, err)
	var invalid *InvalidRequestError
	assert.True(t, errors.As(err, &invalid))
}

func TestGetBan(t *testing.T) {
	store := newTestStore()
	banSvc := NewBanService(store)
	querySvc := NewQueryService(store)
	ctx := context.Background()

	ban, err := banSvc.Ban(ctx, BanRequest{
		UserID: 123, BannedByID: 456,
		Scope: models.ScopeCourse, CourseID: demoCourse,
	})
	require.NoError(t, err)

	got, err := querySvc.GetBan(ctx, ban.ID)
	require.NoError(t, err)
	assert.Equal(t, ban.ID, got.ID)
	assert.Equal(t, "learner", got.User.Username)

	// the detail lookup does not filter on is_active
	_, err = banSvc.Unban(ctx, ban.ID, UnbanRequest{UnbannedByID: 456})
	require.NoError(t, err)
	got, err = querySvc.GetBan(ctx, ban.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestGetBanNotFound(t *testing.T) {
	querySvc := NewQueryService(newTestStore())

	_, err := querySvc.GetBan(context.Background(), 999)
	require.Error(t, err)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Ban with id 999 not found", notFound.Message)
}

func TestEffectiveBanScope(t *testing.T) {
	store := newTestStore()
	banSvc := NewBanService(store)
	querySvc := NewQueryService(store)
	ctx := context.Background()

	status, err := querySvc.EffectiveBanScope(ctx, 123, demoCourse)
	require.NoError(t, err)
	assert.False(t, status.Banned)
	assert.Nil(t, status.Scope)

	orgBan, err := banSvc.Ban(ctx, BanRequest{
		UserID: 123, BannedByID: 456,
		Scope: models.ScopeOrganization, OrgKey: "edX",
	})
	require.NoError(t, err)

	status, err = querySvc.EffectiveBanScope(ctx, 123, demoCourse)
	require.NoError(t, err)
	assert.True(t, status.Banned)
	require.NotNil(t, status.Scope)
	assert.Equal(t, models.ScopeOrganization, *status.Scope)

	// an exception lifts the org ban for that course only
	_, err = banSvc.Unban(ctx, orgBan.ID, UnbanRequest{UnbannedByID: 456, CourseID: demoCourse})
	require.NoError(t, err)

	status, err = querySvc.EffectiveBanScope(ctx, 123, demoCourse)
	require.NoError(t, err)
	assert.False(t, status.Banned)

	status, err = querySvc.EffectiveBanScope(ctx, 123, otherCourse)
	require.NoError(t, err)
	assert.True(t, status.Banned)

	// a course-level ban shows through the exception
	_, err = banSvc.Ban(ctx, BanRequest{
		UserID: 123, BannedByID: 456,
		Scope: models.ScopeCourse, CourseID: demoCourse,
	})
	require.NoError(t, err)

	status, err = querySvc.EffectiveBanScope(ctx, 123, demoCourse)
	require.NoError(t, err)
	assert.True(t, status.Banned)
	require.NotNil(t, status.Scope)
	assert.Equal(t, models.ScopeCourse, *status.Scope)
}
