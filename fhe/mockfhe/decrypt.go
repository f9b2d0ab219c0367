package mockfhe

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/vocdoni/confidential-voting/crypto/ethereum"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/types"
	"golang.org/x/crypto/nacl/box"
)

const (
	domainName    = "Decryption"
	domainVersion = "1"

	// MaxDecryptDurationDays bounds the validity window of a user decryption
	// request.
	MaxDecryptDurationDays = 365
	// ReencryptionKeySize is the size of the requester public key.
	ReencryptionKeySize = 32

	primaryType = "UserDecryptRequestVerification"
)

var (
	// ErrInvalidCredential is returned when a user decryption request is
	// malformed, expired or not signed by its requester.
	ErrInvalidCredential = errors.New("invalid decryption credential")

	decryptRequestTypes = apitypes.Types{
		"EIP712Domain": {
			{Name: "name", Type: "string"},
			{Name: "version", Type: "string"},
			{Name: "chainId", Type: "uint256"},
			{Name: "verifyingContract", Type: "address"},
		},
		primaryType: {
			{Name: "publicKey", Type: "bytes"},
			{Name: "contractAddresses", Type: "address[]"},
			{Name: "startTimestamp", Type: "uint256"},
			{Name: "durationDays", Type: "uint256"},
		},
	}
)

// Domain is the EIP-712 domain user decryption requests are signed for.
type Domain struct {
	ChainID           uint64         `json:"chainId"`
	VerifyingContract common.Address `json:"verifyingContract"`
}

// UserDecryptRequest asks for the value behind Handle re-encrypted to
// PublicKey. Signature is the EIP-712 signature of the requester over the
// request fields, see TypedData.
type UserDecryptRequest struct {
	Handle            fhe.Handle       `json:"handle"`
	Requester         common.Address   `json:"requester"`
	PublicKey         types.HexBytes   `json:"publicKey"`
	ContractAddresses []common.Address `json:"contractAddresses"`
	StartTimestamp    int64            `json:"startTimestamp"`
	DurationDays      uint64           `json:"durationDays"`
	Signature         types.HexBytes   `json:"signature"`
}

// TypedData returns the EIP-712 message the requester signs.
func (r *UserDecryptRequest) TypedData(d Domain) apitypes.TypedData {
	contracts := make([]any, 0, len(r.ContractAddresses))
	for _, addr := range r.ContractAddresses {
		contracts = append(contracts, addr.Hex())
	}
	return apitypes.TypedData{
		Types:       decryptRequestTypes,
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              domainName,
			Version:           domainVersion,
			ChainId:           math.NewHexOrDecimal256(int64(d.ChainID)),
			VerifyingContract: d.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"publicKey":         hexutil.Encode(r.PublicKey),
			"contractAddresses": contracts,
			"startTimestamp":    strconv.FormatInt(r.StartTimestamp, 10),
			"durationDays":      strconv.FormatUint(r.DurationDays, 10),
		},
	}
}

// Sign fills the requester and the signature of r using keys.
func (r *UserDecryptRequest) Sign(keys *ethereum.SignKeys, d Domain) error {
	r.Requester = keys.Address()
	sig, err := keys.SignTypedData(r.TypedData(d))
	if err != nil {
		return err
	}
	r.Signature = sig
	return nil
}

// verify checks the request against the domain and the clock.
func (r *UserDecryptRequest) verify(d Domain, now time.Time) error {
	if len(r.PublicKey) != ReencryptionKeySize {
		return fmt.Errorf("%w: public key must be %d bytes", ErrInvalidCredential, ReencryptionKeySize)
	}
	if r.DurationDays == 0 || r.DurationDays > MaxDecryptDurationDays {
		return fmt.Errorf("%w: duration must be between 1 and %d days", ErrInvalidCredential, MaxDecryptDurationDays)
	}
	start := time.Unix(r.StartTimestamp, 0)
	end := start.Add(time.Duration(r.DurationDays) * 24 * time.Hour)
	if now.Before(start) || now.After(end) {
		return fmt.Errorf("%w: outside validity window", ErrInvalidCredential)
	}
	found := false
	for _, addr := range r.ContractAddresses {
		if addr == d.VerifyingContract {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: contract %s not in request", ErrInvalidCredential, d.VerifyingContract.Hex())
	}
	signer, err := ethereum.AddrFromTypedDataSignature(r.TypedData(d), r.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if signer != r.Requester {
		return fmt.Errorf("%w: signed by %s", ErrInvalidCredential, signer.Hex())
	}
	return nil
}

// UserDecrypt returns the value behind the requested handle sealed to the
// request public key. The requester needs a grant on the handle, or the
// handle must be publicly decryptable.
func (e *Engine) UserDecrypt(req *UserDecryptRequest) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidCredential)
	}
	if err := req.verify(e.domain, e.now()); err != nil {
		return nil, err
	}
	value, err := e.Decrypt(req.Handle, req.Requester)
	if err != nil {
		return nil, err
	}
	var pub [ReencryptionKeySize]byte
	copy(pub[:], req.PublicKey)
	return box.SealAnonymous(nil, binary.BigEndian.AppendUint64(nil, value), &pub, rand.Reader)
}

// Decrypt returns the value behind h if account may decrypt it. It is the
// in-process counterpart of UserDecrypt, used by trusted callers that already
// authenticated account.
func (e *Engine) Decrypt(h fhe.Handle, account common.Address) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.exists(h); err != nil {
		return 0, err
	}
	if !e.isAllowed(h, account) {
		return 0, fmt.Errorf("%w: %s for %s", fhe.ErrNotAllowed, h, account.Hex())
	}
	return e.arena[h-1].Value, nil
}

// PublicDecrypt returns the value behind a publicly decryptable handle.
func (e *Engine) PublicDecrypt(h fhe.Handle) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.exists(h); err != nil {
		return 0, err
	}
	if _, ok := e.public[h]; !ok {
		return 0, fmt.Errorf("%w: %s is not public", fhe.ErrNotAllowed, h)
	}
	return e.arena[h-1].Value, nil
}

// GenerateReencryptionKey returns a fresh key pair to receive user
// decryptions with.
func GenerateReencryptionKey() (publicKey, privateKey *[32]byte, err error) {
	return box.GenerateKey(rand.Reader)
}

// OpenReencrypted opens the result of UserDecrypt.
func OpenReencrypted(sealed []byte, publicKey, privateKey *[32]byte) (uint64, error) {
	plaintext, ok := box.OpenAnonymous(nil, sealed, publicKey, privateKey)
	if !ok {
		return 0, fmt.Errorf("cannot open re-encrypted value")
	}
	if len(plaintext) != 8 {
		return 0, fmt.Errorf("invalid plaintext length %d", len(plaintext))
	}
	return binary.BigEndian.Uint64(plaintext), nil
}
