package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"portfolio/internal/model"
	"portfolio/pkg/apperr"
	"portfolio/pkg/metrics"
	"portfolio/pkg/rbac"
)

// Sync outcomes recorded per event.
const (
	outcomeApplied = "applied"
	outcomeNoop    = "noop"
	outcomeIgnored = "ignored"
	outcomeFailed  = "failed"
)

// IdentitySync mirrors provider account events into the users collection.
// Each event is applied independently; replays converge on the same state.
type IdentitySync struct {
	users  UserStore
	logger *zap.Logger
	now    func() time.Time
}

func NewIdentitySync(users UserStore, logger *zap.Logger) *IdentitySync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentitySync{users: users, logger: logger, now: time.Now}
}

// Apply handles one verified event. Updates and deletions for accounts
// that were never mirrored are no-ops, and unknown types are acknowledged
// without touching the store.
func (s *IdentitySync) Apply(ctx context.Context, ev model.IdentityEvent) error {
	outcome, err := s.apply(ctx, ev)
	if err != nil {
		outcome = outcomeFailed
	}
	metrics.IncrementIdentityEvent(ev.Type, outcome)

	fields := []zap.Field{
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type),
		zap.String("clerk_id", ev.ClerkID),
		zap.String("outcome", outcome),
	}
	if err != nil {
		s.logger.Error("identity-sync-failed", append(fields, zap.Error(err))...)
		return err
	}
	s.logger.Info("identity-sync", fields...)
	return nil
}

func (s *IdentitySync) apply(ctx context.Context, ev model.IdentityEvent) (string, error) {
	switch ev.Type {
	case model.IdentityUserCreated, model.IdentityUserUpdated, model.IdentityUserDeleted:
	default:
		return outcomeIgnored, nil
	}
	if ev.ClerkID == "" {
		return "", apperr.Validation("missing user id")
	}

	now := s.now().UTC()
	var (
		changed bool
		err     error
	)
	switch ev.Type {
	case model.IdentityUserCreated:
		// an upsert always writes the profile
		_, err = s.users.UpsertByClerkID(ctx, ev.ClerkID, ev.Profile, rbac.RoleClient, now)
		changed = true
	case model.IdentityUserUpdated:
		changed, err = s.users.UpdateProfileByClerkID(ctx, ev.ClerkID, ev.Profile, now)
	case model.IdentityUserDeleted:
		changed, err = s.users.DeleteByClerkID(ctx, ev.ClerkID)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnexpected, "internal server error", err)
	}
	if !changed {
		return outcomeNoop, nil
	}
	return outcomeApplied, nil
}
