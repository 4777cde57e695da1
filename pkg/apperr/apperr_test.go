package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	assert.Equal(t, "title is required", Required("title").Message)
	assert.Equal(t, "title and description are required", Required("title", "description").Message)
	assert.Equal(t, "title, description and clientId are required", Required("title", "description", "clientId").Message)
	assert.Equal(t, KindValidation, Required("a", "b").Kind)
}

func TestPublicHidesUnexpectedDetail(t *testing.T) {
	status, msg := Public(errors.New("connection refused to 10.0.0.3"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", msg)

	status, msg = Public(Wrap(KindUnexpected, "decode users", errors.New("eof")))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", msg)
}

func TestPublicMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{Unauthenticated("unauthorized"), http.StatusUnauthorized},
		{Forbidden("forbidden"), http.StatusForbidden},
		{NotFound("project not found"), http.StatusNotFound},
		{Validation("bad"), http.StatusBadRequest},
		{Signature("bad signature"), http.StatusBadRequest},
		{Upstream("failed to fetch GitHub data", errors.New("502")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, msg := Public(fmt.Errorf("wrapped: %w", tc.err))
		assert.Equal(t, tc.status, status, tc.err.Error())
		var e *Error
		errors.As(tc.err, &e)
		assert.Equal(t, e.Message, msg)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("x: %w", NotFound("gone"))))
	assert.Equal(t, KindUnexpected, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnexpected, KindOf(nil))
}
