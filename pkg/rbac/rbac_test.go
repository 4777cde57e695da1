package rbac

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("client")
	require.NoError(t, err)
	assert.Equal(t, RoleClient, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestAllows(t *testing.T) {
	assert.True(t, RoleAdmin.Allows(RoleAdmin))
	assert.True(t, RoleAdmin.Allows(RoleClient))
	assert.True(t, RoleClient.Allows(RoleClient))
	assert.False(t, RoleClient.Allows(RoleAdmin))
	assert.False(t, Role("").Allows(RoleClient))
	assert.False(t, Role("guest").Allows(RoleClient))
}

func TestCheckRole(t *testing.T) {
	require.NoError(t, CheckRole(RoleAdmin, RoleAdmin))

	err := CheckRole(RoleClient, RoleAdmin)
	var denied *RoleDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, RoleClient, denied.Have)
	assert.Equal(t, RoleAdmin, denied.Want)
}
