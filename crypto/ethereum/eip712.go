package ethereum

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// SignTypedData signs EIP-712 typed data.
func (k *SignKeys) SignTypedData(data apitypes.TypedData) ([]byte, error) {
	if k.Private.D == nil {
		return nil, errors.New("no private key available")
	}
	hash, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, err
	}
	return ethcrypto.Sign(hash, &k.Private)
}

// AddrFromTypedDataSignature recovers the address that signed the EIP-712
// typed data.
func AddrFromTypedDataSignature(data apitypes.TypedData, signature []byte) (common.Address, error) {
	hash, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return common.Address{}, err
	}
	return recoverAddress(hash, signature)
}
