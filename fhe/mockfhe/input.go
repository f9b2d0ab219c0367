package mockfhe

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/confidential-voting/crypto/ethereum"
	"github.com/vocdoni/confidential-voting/fhe"
	"golang.org/x/crypto/chacha20poly1305"
)

// Encrypt seals value for owner and attests the ciphertext, playing the role
// of the client library plus the input verifier. The result can only be
// imported on behalf of owner.
func (e *Engine) Encrypt(value uint64, owner common.Address) (fhe.ExternalInput, error) {
	aead, err := chacha20poly1305.New(e.networkKey)
	if err != nil {
		return fhe.ExternalInput{}, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+8+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fhe.ExternalInput{}, fmt.Errorf("generate nonce: %w", err)
	}
	plaintext := binary.BigEndian.AppendUint64(nil, value)
	ciphertext := aead.Seal(nonce, nonce, plaintext, owner.Bytes())
	proof, err := e.verifier.SignEthereum(attestation(ciphertext, owner))
	if err != nil {
		return fhe.ExternalInput{}, fmt.Errorf("sign input attestation: %w", err)
	}
	return fhe.ExternalInput{Ciphertext: ciphertext, Proof: proof}, nil
}

// ImportExternal verifies the attestation of in, checks that it was produced
// for owner and that its value is at most maxValue, and returns a new handle.
func (e *Engine) ImportExternal(in fhe.ExternalInput, owner common.Address, maxValue uint64) (fhe.Uint, error) {
	signer, err := ethereum.AddrFromSignature(attestation(in.Ciphertext, owner), in.Proof)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", fhe.ErrProofVerificationFailed, err)
	}
	if signer != e.verifier.Address() {
		return 0, fmt.Errorf("%w: attestation signed by %s", fhe.ErrProofVerificationFailed, signer.Hex())
	}
	value, err := e.open(in.Ciphertext, owner)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", fhe.ErrProofVerificationFailed, err)
	}
	if value > maxValue {
		return 0, fmt.Errorf("%w: above %d", fhe.ErrOutOfRange, maxValue)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	h, err := e.issue(kindUint, value)
	return fhe.Uint(h), err
}

func (e *Engine) open(ciphertext []byte, owner common.Address) (uint64, error) {
	aead, err := chacha20poly1305.New(e.networkKey)
	if err != nil {
		return 0, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return 0, fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, owner.Bytes())
	if err != nil {
		return 0, fmt.Errorf("open ciphertext: %w", err)
	}
	if len(plaintext) != 8 {
		return 0, fmt.Errorf("invalid plaintext length %d", len(plaintext))
	}
	return binary.BigEndian.Uint64(plaintext), nil
}

// attestation is the message the input verifier signs: the ciphertext bound
// to the account allowed to import it.
func attestation(ciphertext []byte, owner common.Address) []byte {
	msg := make([]byte, 0, len(ciphertext)+common.AddressLength)
	msg = append(msg, ciphertext...)
	return append(msg, owner.Bytes()...)
}
