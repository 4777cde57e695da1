package model

// Identity provider event types the service acts on.
const (
	IdentityUserCreated = "user.created"
	IdentityUserUpdated = "user.updated"
	IdentityUserDeleted = "user.deleted"
)

// IdentityEvent is a verified lifecycle notification about one provider
// account. Profile is empty for deletions.
type IdentityEvent struct {
	ID      string
	Type    string
	ClerkID string
	Profile UserProfile
}
