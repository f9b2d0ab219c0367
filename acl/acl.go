// Package acl evaluates the role table for a single call. A Context is built
// from the persisted roles and the authenticated caller at the start of each
// call and passed explicitly to the operations that need it; there is no
// process-wide role state.
package acl

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/types"
)

var (
	// ErrUnauthorized is returned when the caller lacks the required role.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidAccount is returned when a role would be given to the zero
	// address.
	ErrInvalidAccount = errors.New("invalid account")
)

// Context is the authorization context of one call.
type Context struct {
	caller common.Address
	roles  *types.Roles
	dirty  bool
}

// NewContext returns the authorization context of caller over a copy of
// roles.
func NewContext(caller common.Address, roles *types.Roles) *Context {
	if roles == nil {
		roles = &types.Roles{}
	}
	return &Context{caller: caller, roles: roles.Clone()}
}

// Caller returns the authenticated caller.
func (c *Context) Caller() common.Address {
	return c.caller
}

// Roles returns a copy of the role table including the changes made through
// this context.
func (c *Context) Roles() *types.Roles {
	return c.roles.Clone()
}

// Dirty reports whether the role table changed through this context.
func (c *Context) Dirty() bool {
	return c.dirty
}

func (c *Context) IsOwner() bool {
	return c.caller == c.roles.Owner
}

func (c *Context) IsAdministrator() bool {
	return c.roles.IsAdministrator(c.caller)
}

func (c *Context) IsProposer() bool {
	return c.roles.IsProposer(c.caller)
}

// CanCreateProposal reports whether the caller is the owner, an administrator
// or a proposer.
func (c *Context) CanCreateProposal() bool {
	return c.IsOwner() || c.IsAdministrator() || c.IsProposer()
}

// CanGrant reports whether the caller may grant decryption permissions on a
// proposal owned by proposalOwner.
func (c *Context) CanGrant(proposalOwner common.Address) bool {
	return c.caller == proposalOwner || c.IsOwner() || c.IsAdministrator()
}

// SetProposer enables or disables account as proposer. Only the owner or an
// administrator may call it.
func (c *Context) SetProposer(account common.Address, enabled bool) error {
	if !c.IsOwner() && !c.IsAdministrator() {
		return fmt.Errorf("%w: set proposer requires owner or administrator", ErrUnauthorized)
	}
	if account == (common.Address{}) {
		return ErrInvalidAccount
	}
	if c.roles.IsProposer(account) != enabled {
		c.roles.SetProposer(account, enabled)
		c.dirty = true
	}
	return nil
}

// SetAdministrator enables or disables account as administrator. Only the
// owner may call it.
func (c *Context) SetAdministrator(account common.Address, enabled bool) error {
	if !c.IsOwner() {
		return fmt.Errorf("%w: set administrator requires owner", ErrUnauthorized)
	}
	if account == (common.Address{}) {
		return ErrInvalidAccount
	}
	if c.roles.IsAdministrator(account) != enabled {
		c.roles.SetAdministrator(account, enabled)
		c.dirty = true
	}
	return nil
}

// TransferOwnership hands the owner role to newOwner. The previous owner
// keeps any other role it had.
func (c *Context) TransferOwnership(newOwner common.Address) error {
	if !c.IsOwner() {
		return fmt.Errorf("%w: transfer ownership requires owner", ErrUnauthorized)
	}
	if newOwner == (common.Address{}) {
		return ErrInvalidAccount
	}
	if newOwner != c.roles.Owner {
		c.roles.Owner = newOwner
		c.dirty = true
	}
	return nil
}
