package trace

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
	ctx := WithContext(context.Background(), "t-1")
	assert.Equal(t, "t-1", FromContext(ctx))
}

func TestFromHeader(t *testing.T) {
	assert.Equal(t, "incoming", FromHeader("incoming"))

	generated := FromHeader("")
	assert.Len(t, generated, 32)
	assert.NotEqual(t, generated, FromHeader(""))

	assert.Len(t, FromHeader(strings.Repeat("x", 500)), 32)
}
