package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trybenetwork/trybe/reverts"
)

func TestRequireAuth(t *testing.T) {
	caller := Active("alice")

	assert.NoError(t, caller.RequireAuth("alice"))

	err := caller.RequireAuth("bob")
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	// any tier satisfies a plain auth check
	assert.NoError(t, Founders("alice").RequireAuth("alice"))
}

func TestRequirePermission(t *testing.T) {
	assert.NoError(t, Founders("alice").RequirePermission("alice", PermissionFounders))

	err := Active("alice").RequirePermission("alice", PermissionFounders)
	assert.True(t, reverts.Is(err, reverts.Unauthorized))

	err = Founders("bob").RequirePermission("alice", PermissionFounders)
	assert.True(t, reverts.Is(err, reverts.Unauthorized))
}
