package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/fhe/mockfhe"
	"github.com/vocdoni/confidential-voting/log"
)

// encryptInput encrypts a choice for its owner and returns the external
// input to vote with
// POST /fhe/inputs
func (a *API) encryptInput(w http.ResponseWriter, r *http.Request) {
	if a.relayer == nil {
		ErrEngineNotAvailable.Write(w)
		return
	}
	req := &EncryptRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	in, err := a.relayer.Encrypt(req.Value, req.Owner)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, &Vote{Ciphertext: in.Ciphertext, Proof: in.Proof})
}

// userDecrypt serves a signed user decryption request, the value is sealed
// to the request public key
// POST /fhe/decrypt
func (a *API) userDecrypt(w http.ResponseWriter, r *http.Request) {
	if a.relayer == nil {
		ErrEngineNotAvailable.Write(w)
		return
	}
	req := &mockfhe.UserDecryptRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	sealed, err := a.relayer.UserDecrypt(req)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	log.Debugw("user decryption served", "handle", req.Handle.String(), "requester", req.Requester.Hex())
	httpWriteJSON(w, &DecryptResponse{Handle: req.Handle, Sealed: sealed})
}

// publicValue returns the plaintext of a publicly decryptable handle
// GET /fhe/public/{handle}
func (a *API) publicValue(w http.ResponseWriter, r *http.Request) {
	if a.relayer == nil {
		ErrEngineNotAvailable.Write(w)
		return
	}
	n, err := strconv.ParseUint(chi.URLParam(r, HandleURLParam), 0, 64)
	if err != nil {
		ErrMalformedHandle.WithErr(err).Write(w)
		return
	}
	h := fhe.Handle(n)
	value, err := a.relayer.PublicDecrypt(h)
	if err != nil {
		errorFrom(err).Write(w)
		return
	}
	httpWriteJSON(w, &PublicValue{Handle: h, Value: value})
}
