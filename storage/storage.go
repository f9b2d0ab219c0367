// storage package holds the persisted state of the tally node on top of a
// prefixed key-value store. The following prefixes are used:
//   - 'p/' for proposals
//   - 't/' for encrypted tallies (engine handles only)
//   - 'g/' for vote guard entries, keyed by proposal id and voter
//   - 'r/' for the role table
//   - 'n/' for counters (proposals, events)
//   - 'e/' for the event log
//   - 'v/' for the per proposal participation trees
//   - 'q/' for executed signed requests, 'x/' indexes them by expiry
//
// Writes always go through a Tx, so a call either commits every record it
// touched or none of them.
package storage

import (
	"encoding/binary"
	"errors"

	"go.vocdoni.io/dvote/db"
)

var (
	// Prefixes for the keys in the database.
	proposalPrefix      = []byte("p/")
	tallyPrefix         = []byte("t/")
	guardPrefix         = []byte("g/")
	rolesPrefix         = []byte("r/")
	counterPrefix       = []byte("n/")
	eventPrefix         = []byte("e/")
	participationPrefix = []byte("v/")
	requestPrefix       = []byte("q/")
	requestExpiryPrefix = []byte("x/")

	rolesKey          = []byte("roles")
	proposalsCountKey = []byte("proposals")
	eventsCountKey    = []byte("events")
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Storage gives read access to the persisted state and opens write
// transactions on it.
type Storage struct {
	reader
	db db.Database
}

// New creates a new Storage instance.
func New(database db.Database) *Storage {
	return &Storage{
		reader: reader{r: database},
		db:     database,
	}
}

// Close closes the storage.
func (s *Storage) Close() {
	s.db.Close()
}

// WriteTx opens a write transaction. The caller must either Commit or Discard
// it.
func (s *Storage) WriteTx() *Tx {
	wTx := s.db.WriteTx()
	return &Tx{
		reader: reader{r: wTx},
		db:     s.db,
		wTx:    wTx,
	}
}

func uint64Key(n uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, n)
	return key
}
