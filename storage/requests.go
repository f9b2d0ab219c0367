package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"go.vocdoni.io/dvote/db/prefixeddb"
)

func expiryKey(expires int64, id []byte) []byte {
	return append(binary.BigEndian.AppendUint64(nil, uint64(expires)), id...)
}

// RequestUsed reports whether a request with the given id was executed and
// is not pruned yet.
func (r reader) RequestUsed(id []byte) (bool, error) {
	return hasKey(r.r, requestPrefix, id)
}

// UseRequest records the request id as executed. The record is kept until
// PruneRequests is called with a time after expires (unix seconds).
func (tx *Tx) UseRequest(id []byte, expires int64) error {
	if len(id) == 0 {
		return fmt.Errorf("empty request id")
	}
	if expires < 0 {
		return fmt.Errorf("negative request expiry %d", expires)
	}
	if err := setArtifact(tx.wTx, requestPrefix, id, expires); err != nil {
		return err
	}
	return prefixeddb.NewPrefixedWriteTx(tx.wTx, requestExpiryPrefix).Set(expiryKey(expires, id), id)
}

// PruneRequests forgets the committed requests that expired before now and
// returns how many were removed.
func (tx *Tx) PruneRequests(now int64) (int, error) {
	var keys [][]byte
	pr := prefixeddb.NewPrefixedReader(tx.db, requestExpiryPrefix)
	if err := pr.Iterate(nil, func(k, _ []byte) bool {
		if len(k) <= 8 || int64(binary.BigEndian.Uint64(k)) >= now {
			return false
		}
		keys = append(keys, bytes.Clone(k))
		return true
	}); err != nil {
		return 0, fmt.Errorf("iterate request expiries: %w", err)
	}
	expiries := prefixeddb.NewPrefixedWriteTx(tx.wTx, requestExpiryPrefix)
	requests := prefixeddb.NewPrefixedWriteTx(tx.wTx, requestPrefix)
	for _, k := range keys {
		if err := expiries.Delete(k); err != nil {
			return 0, fmt.Errorf("delete request expiry %x: %w", k, err)
		}
		if err := requests.Delete(k[8:]); err != nil {
			return 0, fmt.Errorf("delete request %x: %w", k[8:], err)
		}
	}
	return len(keys), nil
}
