package service

import (
	"context"
	"time"

	"portfolio/internal/model"
	"portfolio/pkg/apperr"
	"portfolio/pkg/rbac"
)

type RoleInput struct {
	Role string `json:"role"`
}

type UserService struct {
	users    UserStore
	projects ProjectStore
	now      func() time.Time
}

func NewUserService(users UserStore, projects ProjectStore) *UserService {
	return &UserService{users: users, projects: projects, now: time.Now}
}

// ListClients returns every client User with its project count, newest
// first. Each count is its own query.
func (s *UserService) ListClients(ctx context.Context) ([]model.UserWithStats, error) {
	clients, err := s.users.ListByRole(ctx, rbac.RoleClient)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}

	out := make([]model.UserWithStats, 0, len(clients))
	for _, u := range clients {
		id := u.ID
		n, err := s.projects.Count(ctx, model.ProjectFilter{ClientID: &id})
		if err != nil {
			return nil, storeErr(err, "project not found")
		}
		out = append(out, model.UserWithStats{User: u, ProjectCount: n})
	}
	return out, nil
}

func (s *UserService) UpdateRole(ctx context.Context, id string, in RoleInput) (*model.User, error) {
	if in.Role == "" {
		return nil, apperr.Required("role")
	}
	role, err := rbac.ParseRole(in.Role)
	if err != nil {
		return nil, apperr.Validation("invalid role")
	}
	oid, ok := model.ParseID(id)
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	u, err := s.users.UpdateRole(ctx, oid, role, s.now().UTC())
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	return u, nil
}

// SetupAdmin promotes caller to admin when no admin exists yet. The check
// and the promotion are separate store calls, so two first callers racing
// can both succeed.
func (s *UserService) SetupAdmin(ctx context.Context, caller *model.User) (*model.User, error) {
	n, err := s.users.CountByRole(ctx, rbac.RoleAdmin)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	if n > 0 {
		return nil, apperr.Validation("admin already exists")
	}
	u, err := s.users.UpdateRole(ctx, caller.ID, rbac.RoleAdmin, s.now().UTC())
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	return u, nil
}
