// Package fhe defines the encrypted-value capability consumed by the voting
// core. An engine issues opaque handles for encrypted integers and booleans
// and performs homomorphic arithmetic, verified input import and permission
// bookkeeping on them. Callers only ever hold and forward handles: the
// ciphertext behind a handle stays inside the engine.
package fhe

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrProofVerificationFailed is returned by ImportExternal when the proof
	// attached to an external ciphertext does not verify.
	ErrProofVerificationFailed = errors.New("input proof verification failed")
	// ErrOutOfRange is returned by ImportExternal when the attested plaintext
	// exceeds the requested upper bound.
	ErrOutOfRange = errors.New("input value out of range")
	// ErrUnknownHandle is returned when a handle was never issued by the engine.
	ErrUnknownHandle = errors.New("unknown handle")
	// ErrTypeMismatch is returned when a handle is used with the wrong kind.
	ErrTypeMismatch = errors.New("handle type mismatch")
	// ErrNotAllowed is returned on decryption without a matching permission.
	ErrNotAllowed = errors.New("decryption not allowed")
)

// Handle is a reference into the engine's arena of encrypted values. The zero
// handle is never issued.
type Handle uint64

// NilHandle is the zero value of Handle.
const NilHandle Handle = 0

func (h Handle) String() string {
	return fmt.Sprintf("0x%016x", uint64(h))
}

// Uint is a handle to an encrypted unsigned integer.
type Uint Handle

// Handle returns the untyped handle.
func (u Uint) Handle() Handle { return Handle(u) }

// Bool is a handle to an encrypted boolean.
type Bool Handle

// Handle returns the untyped handle.
func (b Bool) Handle() Handle { return Handle(b) }

// ExternalInput is a ciphertext produced outside the engine together with the
// proof that it is well formed and bound to its submitter.
type ExternalInput struct {
	Ciphertext []byte `json:"ciphertext"`
	Proof      []byte `json:"proof"`
}

// Capability is the set of operations the voting core requires from an
// encrypted-value engine.
type Capability interface {
	// Constant returns a trivially encrypted constant.
	Constant(value uint64) (Uint, error)
	// Add returns an encryption of a+b.
	Add(a, b Uint) (Uint, error)
	// Equal returns an encryption of a==b.
	Equal(a, b Uint) (Bool, error)
	// Select returns an encryption of ifTrue when cond holds, ifFalse otherwise.
	Select(cond Bool, ifTrue, ifFalse Uint) (Uint, error)
	// ImportExternal verifies in against its proof and its owner and returns a
	// handle for the encrypted value. The proof also attests that the value is
	// at most maxValue.
	ImportExternal(in ExternalInput, owner common.Address, maxValue uint64) (Uint, error)

	// Allow grants account a persistent permission to decrypt h.
	Allow(h Handle, account common.Address) error
	// AllowTransient grants account a permission to decrypt h that lasts until
	// the current scope is closed.
	AllowTransient(h Handle, account common.Address) error
	// MarkPubliclyDecryptable lets anyone decrypt h. It cannot be undone.
	MarkPubliclyDecryptable(h Handle) error
}

// Scoper is implemented by engines that bind transient permissions to a call.
// OpenScope starts a scope and returns the function that closes it; transient
// permissions are dropped when the outermost scope is closed.
type Scoper interface {
	OpenScope() (closeScope func())
}
