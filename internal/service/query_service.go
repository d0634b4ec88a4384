package service

import (
	"context"

	"forum-bans/internal/coursekey"
	"forum-bans/internal/models"
	"forum-bans/internal/storage"
)

// ListBansFilter selects bans for listing
type ListBansFilter struct {
	CourseID        string
	OrgKey          string
	Scope           string
	IncludeInactive bool
}

// QueryService answers read-only questions about bans
type QueryService struct {
	store storage.Store
}

// NewQueryService creates a new QueryService
func NewQueryService(store storage.Store) *QueryService {
	return &QueryService{store: store}
}

// ListBans returns bans matching the filter, newest first. Active bans
// only unless IncludeInactive is set. A course filter also surfaces
// organization bans covering that course's org, excluding org bans that
// hold an exception for the course.
func (s *QueryService) ListBans(ctx context.Context, filter ListBansFilter) ([]*BanInfo, error) {
	if filter.Scope != "" && filter.Scope != models.ScopeCourse && filter.Scope != models.ScopeOrganization {
		return nil, NewInvalidRequest("Invalid scope: %s. Must be 'course' or 'organization'", filter.Scope)
	}

	f := models.BanFilter{
		CourseID:        filter.CourseID,
		OrgKey:          filter.OrgKey,
		Scope:           filter.Scope,
		IncludeInactive: filter.IncludeInactive,
	}
	if filter.CourseID != "" {
		org, err := coursekey.Org(filter.CourseID)
		if err != nil {
			return nil, NewInvalidRequest("%v", err)
		}
		f.CourseOrg = org
	}

	bans, err := s.store.ListBans(ctx, f)
	if err != nil {
		return nil, err
	}

	infos := make([]*BanInfo, 0, len(bans))
	for _, ban := range bans {
		infos = append(infos, newBanInfo(ban))
	}
	return infos, nil
}

// GetBan returns one ban by id, active or not
func (s *QueryService) GetBan(ctx context.Context, banID int64) (*BanInfo, error) {
	ban, err := s.store.GetBan(ctx, banID)
	if err != nil {
		return nil, err
	}
	if ban == nil {
		return nil, NewNotFound("Ban with id %d not found", banID)
	}
	return newBanInfo(ban), nil
}

// BanStatus reports whether a user is effectively banned for a course,
// and at which scope.
type BanStatus struct {
	Banned bool    `json:"banned"`
	Scope  *string `json:"scope"`
}

// EffectiveBanScope derives whether a user is banned for a course: an
// active organization ban with no exception for the course wins;
// otherwise an exception falls through to any active course-level ban.
func (s *QueryService) EffectiveBanScope(ctx context.Context, userID int64, courseID string) (*BanStatus, error) {
	key, err := coursekey.Parse(courseID)
	if err != nil {
		return nil, NewInvalidRequest("%v", err)
	}

	orgBan, err := s.store.FindActiveOrgBan(ctx, userID, key.Org)
	if err != nil {
		return nil, err
	}
	if orgBan != nil {
		excepted, err := s.store.HasException(ctx, orgBan.ID, courseID)
		if err != nil {
			return nil, err
		}
		if !excepted {
			scope := models.ScopeOrganization
			return &BanStatus{Banned: true, Scope: &scope}, nil
		}
	}

	courseBanned, err := s.store.HasActiveCourseBan(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if courseBanned {
		scope := models.ScopeCourse
		return &BanStatus{Banned: true, Scope: &scope}, nil
	}
	return &BanStatus{Banned: false, Scope: nil}, nil
}
