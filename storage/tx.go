package storage

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/types"
	"go.vocdoni.io/dvote/db"
)

// reader implements the read accessors shared by Storage, which reads the
// committed state, and Tx, which also sees its own pending writes.
type reader struct {
	r db.Reader
}

// Tx is a write transaction over the storage. Nothing written through a Tx
// is visible to Storage readers until Commit succeeds.
type Tx struct {
	reader
	db  db.Database
	wTx db.WriteTx
}

// Commit makes every write of the transaction durable at once.
func (tx *Tx) Commit() error {
	return tx.wTx.Commit()
}

// Discard drops every pending write. It is safe to call after Commit.
func (tx *Tx) Discard() {
	tx.wTx.Discard()
}

func (r reader) counter(key []byte) (uint64, error) {
	var n uint64
	if err := getArtifact(r.r, counterPrefix, key, &n); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// nextCounter returns the current value of the counter and stores its
// increment.
func (tx *Tx) nextCounter(key []byte) (uint64, error) {
	n, err := tx.counter(key)
	if err != nil {
		return 0, err
	}
	if err := setArtifact(tx.wTx, counterPrefix, key, n+1); err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", key, err)
	}
	return n, nil
}

// Roles returns the persisted role table, or ErrNotFound before genesis.
func (r reader) Roles() (*types.Roles, error) {
	roles := &types.Roles{}
	if err := getArtifact(r.r, rolesPrefix, rolesKey, roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// SetRoles replaces the role table.
func (tx *Tx) SetRoles(roles *types.Roles) error {
	if roles == nil {
		return fmt.Errorf("nil roles")
	}
	if roles.Owner == (common.Address{}) {
		return fmt.Errorf("roles without owner")
	}
	return setArtifact(tx.wTx, rolesPrefix, rolesKey, roles)
}
