// Package authz models the capability the host hands to every
// invocation: a verified caller identity plus the permission tier the
// transaction was signed under. Components check the capability against
// the account an operation acts for; there is no ambient authority.
package authz

import (
	"github.com/trybenetwork/trybe/reverts"
	"github.com/trybenetwork/trybe/trybe"
)

// Permission is the tier a caller was authenticated under.
type Permission string

const (
	// PermissionActive is the ordinary signing tier.
	PermissionActive Permission = "active"
	// PermissionFounders is the elevated tier required to manage the
	// founder set.
	PermissionFounders Permission = "founders"
)

// Caller is a proof of verified authentication. It is constructed at
// the boundary (by whatever authenticated the request) and passed down
// unchanged.
type Caller struct {
	Name       trybe.Name
	Permission Permission
}

// Active builds an active-tier caller.
func Active(name trybe.Name) Caller {
	return Caller{Name: name, Permission: PermissionActive}
}

// Founders builds a founders-tier caller.
func Founders(name trybe.Name) Caller {
	return Caller{Name: name, Permission: PermissionFounders}
}

// RequireAuth rejects unless the caller is the given account. Any
// permission tier satisfies it.
func (c Caller) RequireAuth(name trybe.Name) error {
	if c.Name != name {
		return reverts.New(reverts.Unauthorized, "missing authority of %s", name)
	}
	return nil
}

// RequirePermission rejects unless the caller is the given account
// authenticated under the given tier.
func (c Caller) RequirePermission(name trybe.Name, perm Permission) error {
	if c.Name != name || c.Permission != perm {
		return reverts.New(reverts.Unauthorized, "missing authority of %s@%s", name, perm)
	}
	return nil
}
