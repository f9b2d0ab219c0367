package storage

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor encode mode: %v", err))
	}
	return em
}()

// Artifact encoding/decoding
func encodeArtifact(a any) ([]byte, error) {
	return encMode.Marshal(a)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// getArtifact reads and decodes the artifact stored under prefix+key into
// out. It returns ErrNotFound if there is no such key.
func getArtifact(r db.Reader, prefix, key []byte, out any) error {
	data, err := prefixeddb.NewPrefixedReader(r, prefix).Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get %s%x: %w", prefix, key, err)
	}
	if err := decodeArtifact(data, out); err != nil {
		return fmt.Errorf("decode %s%x: %w", prefix, key, err)
	}
	return nil
}

// setArtifact encodes a and writes it under prefix+key. The write only
// becomes visible when wTx is committed.
func setArtifact(wTx db.WriteTx, prefix, key []byte, a any) error {
	data, err := encodeArtifact(a)
	if err != nil {
		return fmt.Errorf("encode %s%x: %w", prefix, key, err)
	}
	return prefixeddb.NewPrefixedWriteTx(wTx, prefix).Set(key, data)
}

// hasKey reports whether prefix+key exists.
func hasKey(r db.Reader, prefix, key []byte) (bool, error) {
	_, err := prefixeddb.NewPrefixedReader(r, prefix).Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrKeyNotFound):
		return false, nil
	}
	return false, err
}
