package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"portfolio/internal/model"
	"portfolio/pkg/rbac"
)

// UserStore is the User collection as the services need it. Lookups
// return repository.ErrNotFound when nothing matches.
type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error)
	FindByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	FindFirstByRole(ctx context.Context, role rbac.Role) (*model.User, error)
	UpsertByClerkID(ctx context.Context, clerkID string, p model.UserProfile, role rbac.Role, at time.Time) (bool, error)
	UpdateProfileByClerkID(ctx context.Context, clerkID string, p model.UserProfile, at time.Time) (bool, error)
	DeleteByClerkID(ctx context.Context, clerkID string) (bool, error)
	ListByRole(ctx context.Context, role rbac.Role) ([]model.User, error)
	CountByRole(ctx context.Context, role rbac.Role) (int64, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role rbac.Role, at time.Time) (*model.User, error)
}

type ProjectStore interface {
	Find(ctx context.Context, f model.ProjectFilter) ([]model.Project, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Project, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Project, error)
	Insert(ctx context.Context, p *model.Project) error
	Update(ctx context.Context, id primitive.ObjectID, u model.ProjectUpdate) (*model.Project, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context, f model.ProjectFilter) (int64, error)
}

type ServiceStore interface {
	Find(ctx context.Context, activeOnly bool) ([]model.Service, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Service, error)
	MaxOrder(ctx context.Context) (int, bool, error)
	Insert(ctx context.Context, s *model.Service) error
	Merge(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*model.Service, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type MessageStore interface {
	Find(ctx context.Context, f model.MessageFilter) ([]model.Message, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Message, error)
	Insert(ctx context.Context, m *model.Message) error
	MarkRead(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	MarkReplied(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Count(ctx context.Context, f model.MessageFilter) (int64, error)
}
