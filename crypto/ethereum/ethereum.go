// Package ethereum provides secp256k1 signing keys producing Ethereum
// compatible signatures, both over personal messages and over EIP-712 typed
// data.
package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/confidential-voting/util"
)

const (
	// SignatureLength is the size of an ECDSA signature in hexString format
	SignatureLength = ethcrypto.SignatureLength
	// PubKeyLengthBytes is the size of a Public Key
	PubKeyLengthBytes = 33
	// SigningPrefix is the prefix added when hashing
	SigningPrefix = "\u0019Ethereum Signed Message:\n"
)

// SignKeys represents an ECDSA pair of keys for signing.
type SignKeys struct {
	Public  ecdsa.PublicKey
	Private ecdsa.PrivateKey
}

// NewSignKeys creates an ECDSA pair of keys for signing.
func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate generates new keys.
func (k *SignKeys) Generate() error {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// AddHexKey imports a private hex key.
func (k *SignKeys) AddHexKey(privHex string) error {
	key, err := ethcrypto.HexToECDSA(util.TrimHex(privHex))
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// HexString returns the public compressed and private keys as hex strings.
func (k *SignKeys) HexString() (string, string) {
	pubHexComp := fmt.Sprintf("%x", ethcrypto.CompressPubkey(&k.Public))
	privHex := fmt.Sprintf("%x", ethcrypto.FromECDSA(&k.Private))
	return pubHexComp, privHex
}

// PublicKey returns the compressed public key.
func (k *SignKeys) PublicKey() []byte {
	return ethcrypto.CompressPubkey(&k.Public)
}

// Address returns the Ethereum address of the keys.
func (k *SignKeys) Address() common.Address {
	return ethcrypto.PubkeyToAddress(k.Public)
}

// AddressString returns the checksummed Ethereum address.
func (k *SignKeys) AddressString() string {
	return k.Address().String()
}

// SignEthereum signs a message as a personal message. The signature has its
// recovery byte in the 0/1 form.
func (k *SignKeys) SignEthereum(message []byte) ([]byte, error) {
	if k.Private.D == nil {
		return nil, errors.New("no private key available")
	}
	return ethcrypto.Sign(Hash(message), &k.Private)
}

// Hash returns the keccak256 hash of data prefixed as an Ethereum personal
// message.
func Hash(data []byte) []byte {
	return HashRaw(fmt.Appendf(nil, "%s%d%s", SigningPrefix, len(data), data))
}

// HashRaw hashes data with keccak256.
func HashRaw(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}

// AddrFromPublicKey returns the address of a compressed or uncompressed
// public key.
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	var (
		pubKey *ecdsa.PublicKey
		err    error
	)
	if len(pub) == PubKeyLengthBytes {
		pubKey, err = ethcrypto.DecompressPubkey(pub)
	} else {
		pubKey, err = ethcrypto.UnmarshalPubkey(pub)
	}
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid public key %s: %w", hex.EncodeToString(pub), err)
	}
	return ethcrypto.PubkeyToAddress(*pubKey), nil
}

// AddrFromSignature recovers the address that signed message as a personal
// message. Both the 0/1 and 27/28 recovery byte forms are accepted.
func AddrFromSignature(message, signature []byte) (common.Address, error) {
	return recoverAddress(Hash(message), signature)
}

func recoverAddress(hash, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := ethcrypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
