// Package mockfhe is an in-process encrypted-value engine implementing
// fhe.Capability. Values are held in plaintext inside an arena that is never
// exposed: callers only see handles, and can only learn a value through the
// decryption entry points, which enforce the same permission model as a
// production engine (persistent, transient and public grants).
//
// Inputs are sealed with ChaCha20-Poly1305 under the network key and carry an
// attestation signed by the input verifier, which stands in for the
// zero-knowledge proof of a real deployment.
package mockfhe

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/crypto/ethereum"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/util"
	"go.vocdoni.io/dvote/db"
	"golang.org/x/crypto/chacha20poly1305"
)

type kind uint8

const (
	kindUint kind = iota + 1
	kindBool
)

func (k kind) String() string {
	switch k {
	case kindUint:
		return "uint"
	case kindBool:
		return "bool"
	}
	return "invalid"
}

type entry struct {
	Kind  kind   `cbor:"0,keyasint"`
	Value uint64 `cbor:"1,keyasint"`
}

// Options configures an Engine.
type Options struct {
	// NetworkKey is the 32 byte key inputs are sealed with. A random key is
	// generated when empty.
	NetworkKey []byte
	// VerifierKey is the hex private key of the input verifier. A random key
	// is generated when empty.
	VerifierKey string
	// ChainID and VerifyingContract form the EIP-712 domain of user
	// decryption requests.
	ChainID           uint64
	VerifyingContract common.Address
	// Database persists the arena and the persistent and public permissions.
	// The engine is memory only when nil.
	Database db.Database
	// Now is the clock used to check decryption request windows.
	Now func() time.Time
}

// Engine is the reference implementation of fhe.Capability and fhe.Scoper.
// It is safe for concurrent use.
type Engine struct {
	mu sync.RWMutex

	arena      []entry
	persistent map[fhe.Handle]map[common.Address]struct{}
	transient  map[fhe.Handle]map[common.Address]struct{}
	public     map[fhe.Handle]struct{}
	scopeDepth int

	networkKey []byte
	verifier   *ethereum.SignKeys
	domain     Domain
	db         db.Database
	now        func() time.Time
}

var (
	_ fhe.Capability = (*Engine)(nil)
	_ fhe.Scoper     = (*Engine)(nil)
)

// New creates an engine. When opts.Database holds the state of a previous
// run, the arena and its permissions are restored from it.
func New(opts Options) (*Engine, error) {
	e := &Engine{
		persistent: make(map[fhe.Handle]map[common.Address]struct{}),
		transient:  make(map[fhe.Handle]map[common.Address]struct{}),
		public:     make(map[fhe.Handle]struct{}),
		networkKey: opts.NetworkKey,
		verifier:   ethereum.NewSignKeys(),
		domain: Domain{
			ChainID:           opts.ChainID,
			VerifyingContract: opts.VerifyingContract,
		},
		db:  opts.Database,
		now: opts.Now,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if len(e.networkKey) == 0 {
		e.networkKey = util.RandomBytes(chacha20poly1305.KeySize)
	}
	if len(e.networkKey) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("network key must be %d bytes, got %d", chacha20poly1305.KeySize, len(e.networkKey))
	}
	if opts.VerifierKey == "" {
		if err := e.verifier.Generate(); err != nil {
			return nil, fmt.Errorf("generate verifier key: %w", err)
		}
	} else if err := e.verifier.AddHexKey(opts.VerifierKey); err != nil {
		return nil, fmt.Errorf("invalid verifier key: %w", err)
	}
	if e.db != nil {
		if err := e.load(); err != nil {
			return nil, fmt.Errorf("load engine state: %w", err)
		}
	}
	log.Infow("encrypted value engine ready",
		"verifier", e.verifier.AddressString(),
		"handles", len(e.arena),
		"persistent", e.db != nil)
	return e, nil
}

// Verifier returns the address of the input verifier.
func (e *Engine) Verifier() common.Address {
	return e.verifier.Address()
}

// Domain returns the EIP-712 domain user decryption requests are signed for.
func (e *Engine) Domain() Domain {
	return e.domain
}

// Len returns the number of handles issued so far.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.arena)
}

// issue appends v to the arena and returns its handle. Handles are the arena
// index plus one, so the zero handle is never issued. Must hold e.mu.
func (e *Engine) issue(k kind, value uint64) (fhe.Handle, error) {
	ent := entry{Kind: k, Value: value}
	h := fhe.Handle(len(e.arena) + 1)
	if err := e.persistEntry(h, ent); err != nil {
		return fhe.NilHandle, err
	}
	e.arena = append(e.arena, ent)
	return h, nil
}

// lookup returns the entry behind h checking its kind. Must hold e.mu.
func (e *Engine) lookup(h fhe.Handle, k kind) (entry, error) {
	if h == fhe.NilHandle || uint64(h) > uint64(len(e.arena)) {
		return entry{}, fmt.Errorf("%w: %s", fhe.ErrUnknownHandle, h)
	}
	ent := e.arena[h-1]
	if ent.Kind != k {
		return entry{}, fmt.Errorf("%w: %s is %s, want %s", fhe.ErrTypeMismatch, h, ent.Kind, k)
	}
	return ent, nil
}

// exists reports whether h was issued. Must hold e.mu.
func (e *Engine) exists(h fhe.Handle) error {
	if h == fhe.NilHandle || uint64(h) > uint64(len(e.arena)) {
		return fmt.Errorf("%w: %s", fhe.ErrUnknownHandle, h)
	}
	return nil
}

// Constant returns a trivially encrypted constant.
func (e *Engine) Constant(value uint64) (fhe.Uint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, err := e.issue(kindUint, value)
	return fhe.Uint(h), err
}

// Add returns an encryption of a+b. The sum wraps on overflow.
func (e *Engine) Add(a, b fhe.Uint) (fhe.Uint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	x, err := e.lookup(a.Handle(), kindUint)
	if err != nil {
		return 0, err
	}
	y, err := e.lookup(b.Handle(), kindUint)
	if err != nil {
		return 0, err
	}
	h, err := e.issue(kindUint, x.Value+y.Value)
	return fhe.Uint(h), err
}

// Equal returns an encryption of a==b.
func (e *Engine) Equal(a, b fhe.Uint) (fhe.Bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	x, err := e.lookup(a.Handle(), kindUint)
	if err != nil {
		return 0, err
	}
	y, err := e.lookup(b.Handle(), kindUint)
	if err != nil {
		return 0, err
	}
	var eq uint64
	if x.Value == y.Value {
		eq = 1
	}
	h, err := e.issue(kindBool, eq)
	return fhe.Bool(h), err
}

// Select returns an encryption of ifTrue when cond holds, ifFalse otherwise.
func (e *Engine) Select(cond fhe.Bool, ifTrue, ifFalse fhe.Uint) (fhe.Uint, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, err := e.lookup(cond.Handle(), kindBool)
	if err != nil {
		return 0, err
	}
	t, err := e.lookup(ifTrue.Handle(), kindUint)
	if err != nil {
		return 0, err
	}
	f, err := e.lookup(ifFalse.Handle(), kindUint)
	if err != nil {
		return 0, err
	}
	v := f.Value
	if c.Value == 1 {
		v = t.Value
	}
	h, err := e.issue(kindUint, v)
	return fhe.Uint(h), err
}
