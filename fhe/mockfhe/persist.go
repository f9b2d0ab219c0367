package mockfhe

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fxamacker/cbor/v2"
	"github.com/vocdoni/confidential-voting/fhe"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	entryPrefix  = []byte("h/")
	grantPrefix  = []byte("a/")
	publicPrefix = []byte("x/")

	present = []byte{1}
)

func handleKey(h fhe.Handle) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(h))
}

func (e *Engine) write(prefix, key, value []byte) error {
	wTx := prefixeddb.NewPrefixedWriteTx(e.db.WriteTx(), prefix)
	defer wTx.Discard()
	if err := wTx.Set(key, value); err != nil {
		return err
	}
	return wTx.Commit()
}

func (e *Engine) persistEntry(h fhe.Handle, ent entry) error {
	if e.db == nil {
		return nil
	}
	data, err := cbor.Marshal(ent)
	if err != nil {
		return fmt.Errorf("encode handle %s: %w", h, err)
	}
	return e.write(entryPrefix, handleKey(h), data)
}

func (e *Engine) persistGrant(h fhe.Handle, account common.Address) error {
	if e.db == nil {
		return nil
	}
	return e.write(grantPrefix, append(handleKey(h), account.Bytes()...), present)
}

func (e *Engine) persistPublic(h fhe.Handle) error {
	if e.db == nil {
		return nil
	}
	return e.write(publicPrefix, handleKey(h), present)
}

// load restores the arena and the persistent and public permissions. Handles
// are stored with big endian keys so iteration yields them in issue order.
func (e *Engine) load() error {
	var loadErr error
	if err := prefixeddb.NewPrefixedReader(e.db, entryPrefix).Iterate(nil, func(k, v []byte) bool {
		if h := fhe.Handle(binary.BigEndian.Uint64(k)); h != fhe.Handle(len(e.arena)+1) {
			loadErr = fmt.Errorf("arena gap at handle %s", h)
			return false
		}
		var ent entry
		if err := cbor.Unmarshal(v, &ent); err != nil {
			loadErr = fmt.Errorf("decode handle %x: %w", k, err)
			return false
		}
		e.arena = append(e.arena, ent)
		return true
	}); err != nil {
		return err
	}
	if loadErr != nil {
		return loadErr
	}
	if err := prefixeddb.NewPrefixedReader(e.db, grantPrefix).Iterate(nil, func(k, _ []byte) bool {
		if len(k) != 8+common.AddressLength {
			return true
		}
		addGrant(e.persistent, fhe.Handle(binary.BigEndian.Uint64(k[:8])), common.BytesToAddress(k[8:]))
		return true
	}); err != nil {
		return err
	}
	return prefixeddb.NewPrefixedReader(e.db, publicPrefix).Iterate(nil, func(k, _ []byte) bool {
		e.public[fhe.Handle(binary.BigEndian.Uint64(k))] = struct{}{}
		return true
	})
}
