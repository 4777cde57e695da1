package service

import (
	"context"
	"errors"

	"portfolio/internal/model"
	"portfolio/pkg/apperr"
	"portfolio/pkg/rbac"
)

// Guard resolves a caller's external identity to the local User and
// checks its role. Nothing is cached between requests.
type Guard struct {
	users UserStore
}

func NewGuard(users UserStore) *Guard {
	return &Guard{users: users}
}

// Resolve returns the local User for clerkID. An empty id is
// unauthenticated; an unknown one is not found.
func (g *Guard) Resolve(ctx context.Context, clerkID string) (*model.User, error) {
	if clerkID == "" {
		return nil, apperr.Unauthenticated("unauthorized")
	}
	u, err := g.users.FindByClerkID(ctx, clerkID)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	return u, nil
}

// Authorize resolves clerkID and requires the given role. On admin-gated
// operations a missing local record reads as forbidden rather than not
// found, so nothing about local accounts leaks through the admin surface.
func (g *Guard) Authorize(ctx context.Context, clerkID string, required rbac.Role) (*model.User, error) {
	u, err := g.Resolve(ctx, clerkID)
	if err != nil {
		if required == rbac.RoleAdmin && apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.Forbidden("forbidden")
		}
		return nil, err
	}

	if err := g.Check(u, required); err != nil {
		return nil, err
	}
	return u, nil
}

// Check asserts that an already resolved user holds the required role.
func (g *Guard) Check(u *model.User, required rbac.Role) error {
	if err := rbac.CheckRole(u.Role, required); err != nil {
		var denied *rbac.RoleDeniedError
		if errors.As(err, &denied) && required == rbac.RoleAdmin {
			return apperr.Wrap(apperr.KindForbidden, "forbidden: admin access required", err)
		}
		return apperr.Wrap(apperr.KindForbidden, "forbidden", err)
	}
	return nil
}
