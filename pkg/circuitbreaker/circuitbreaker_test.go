package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func newBreaker(now *time.Time) *Breaker {
	b := New(Config{FailureThreshold: 2, SuccessThreshold: 1, Cooldown: time.Minute, HalfOpenMaxRequests: 1})
	b.now = func() time.Time { return *now }
	return b
}

func TestOpensAfterThreshold(t *testing.T) {
	now := time.Unix(1000, 0)
	b := newBreaker(&now)

	assert.ErrorIs(t, b.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestHalfOpenRecovers(t *testing.T) {
	now := time.Unix(1000, 0)
	b := newBreaker(&now)
	_ = b.Execute(func() error { return errBoom })
	_ = b.Execute(func() error { return errBoom })

	now = now.Add(2 * time.Minute)
	assert.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(1000, 0)
	b := newBreaker(&now)
	_ = b.Execute(func() error { return errBoom })
	_ = b.Execute(func() error { return errBoom })

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, b.Execute(func() error { return errBoom }), errBoom)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Execute(func() error { return nil }), ErrOpen)
}

func TestSuccessResetsFailures(t *testing.T) {
	now := time.Unix(1000, 0)
	b := newBreaker(&now)
	_ = b.Execute(func() error { return errBoom })
	_ = b.Execute(func() error { return nil })
	_ = b.Execute(func() error { return errBoom })
	assert.Equal(t, StateClosed, b.State())
}
