package chain

import (
	"errors"
	"fmt"
)

// ErrInvalidName indicates an account name outside the allowed alphabet.
var ErrInvalidName = errors.New("invalid account name")

// Name is a chain account identity. Names are 1-12 characters drawn from
// lowercase letters, digits 1-5 and dots, mirroring the naming rules of the
// settlement chain so identities survive a round trip through it.
type Name string

// Validate checks the name against the account alphabet.
func (n Name) Validate() error {
	if len(n) == 0 || len(n) > 12 {
		return fmt.Errorf("%w: %q must be 1-12 characters", ErrInvalidName, n)
	}
	for _, r := range n {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '1' && r <= '5':
		case r == '.':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, n, r)
		}
	}
	return nil
}

func (n Name) String() string { return string(n) }

// PermissionActive is the permission level required for financially
// consequential actions.
const PermissionActive = "active"

// PermissionLevel pairs an actor with a permission name.
type PermissionLevel struct {
	Actor      Name   `json:"actor"`
	Permission string `json:"permission"`
}

// Active returns the actor's active-permission level.
func Active(actor Name) PermissionLevel {
	return PermissionLevel{Actor: actor, Permission: PermissionActive}
}

func (p PermissionLevel) String() string {
	return fmt.Sprintf("%s@%s", p.Actor, p.Permission)
}
