package model

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"portfolio/pkg/rbac"
)

// User mirrors one identity provider account. ClerkID is the provider's
// user id and is unique.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClerkID   string             `bson:"clerkId" json:"clerkId"`
	Email     string             `bson:"email" json:"email"`
	FirstName string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	ImageURL  string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Role      rbac.Role          `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Role == rbac.RoleAdmin
}

// Summary is the projection embedded in populated references.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ImageURL:  u.ImageURL,
	}
}

// UserProfile is the provider-owned part of a User.
type UserProfile struct {
	Email     string
	FirstName string
	LastName  string
	ImageURL  string
}

type UserSummary struct {
	ID        primitive.ObjectID `json:"id"`
	Email     string             `json:"email"`
	FirstName string             `json:"firstName,omitempty"`
	LastName  string             `json:"lastName,omitempty"`
	ImageURL  string             `json:"imageUrl,omitempty"`
}

// UserWithStats is a User enriched with its project count.
type UserWithStats struct {
	User
	ProjectCount int64 `json:"projectCount"`
}
