package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/vocdoni/confidential-voting/types"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Emit appends ev to the event log and sets its sequence number.
func (tx *Tx) Emit(ev *types.Event) error {
	if ev == nil {
		return fmt.Errorf("nil event")
	}
	seq, err := tx.nextCounter(eventsCountKey)
	if err != nil {
		return err
	}
	ev.Seq = seq
	return setArtifact(tx.wTx, eventPrefix, uint64Key(seq), ev)
}

// EventCount returns the number of events in the log.
func (r reader) EventCount() (uint64, error) {
	return r.counter(eventsCountKey)
}

// Events returns up to limit events with a sequence number greater or equal
// than from, in order. A limit of zero or less returns every event.
func (r reader) Events(from uint64, limit int) ([]*types.Event, error) {
	var (
		res    []*types.Event
		decErr error
	)
	pr := prefixeddb.NewPrefixedReader(r.r, eventPrefix)
	if err := pr.Iterate(nil, func(k, v []byte) bool {
		if len(k) != 8 || binary.BigEndian.Uint64(k) < from {
			return true
		}
		if limit > 0 && len(res) >= limit {
			return false
		}
		ev := &types.Event{}
		if err := decodeArtifact(v, ev); err != nil {
			decErr = fmt.Errorf("decode event %x: %w", k, err)
			return false
		}
		res = append(res, ev)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return res, decErr
}
