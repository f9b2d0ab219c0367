package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/confidential-voting/crypto/ethereum"
	"github.com/vocdoni/confidential-voting/ledger"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/types"
)

// SignedRequestMaxAge is how far the timestamp of a signed request may drift
// from the node clock.
const SignedRequestMaxAge = 300 // seconds

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// SignedMessage returns the message a caller signs to send payload to path
// at timestamp.
func SignedMessage(path string, timestamp int64, payload []byte) []byte {
	return fmt.Appendf(nil, "%s\n%d\n%s", path, timestamp, payload)
}

// SignRequest builds the signed envelope of body for path.
func SignRequest(keys *ethereum.SignKeys, path string, timestamp int64, body any) (*SignedRequest, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	sig, err := keys.SignEthereum(SignedMessage(path, timestamp, payload))
	if err != nil {
		return nil, err
	}
	return &SignedRequest{
		Payload:   payload,
		Timestamp: timestamp,
		Signature: sig,
	}, nil
}

// decodeSigned decodes a signed envelope from the request body, checks its
// timestamp, decodes the payload into out and returns the signer. The
// returned option binds the ledger call to the envelope, so it executes at
// most once while its timestamp is accepted.
func (a *API) decodeSigned(r *http.Request, out any) (common.Address, ledger.CallOption, error) {
	req := &SignedRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return common.Address{}, nil, ErrMalformedBody.Withf("could not decode request body: %v", err)
	}
	now := a.ledger.Now().Unix()
	if req.Timestamp < now-SignedRequestMaxAge || req.Timestamp > now+SignedRequestMaxAge {
		return common.Address{}, nil, ErrExpiredRequest.Withf("timestamp %d, node time %d", req.Timestamp, now)
	}
	msg := SignedMessage(r.URL.Path, req.Timestamp, req.Payload)
	caller, err := ethereum.AddrFromSignature(msg, req.Signature)
	if err != nil {
		return common.Address{}, nil, ErrInvalidSignature.WithErr(err)
	}
	if err := json.Unmarshal(req.Payload, out); err != nil {
		return common.Address{}, nil, ErrMalformedBody.Withf("could not decode payload: %v", err)
	}
	expires := time.Unix(req.Timestamp+SignedRequestMaxAge, 0)
	return caller, ledger.WithRequest(RequestID(caller, msg), expires), nil
}

// RequestID identifies the request msg signed by caller.
func RequestID(caller common.Address, msg []byte) []byte {
	return ethcrypto.Keccak256(caller.Bytes(), msg)
}

// proposalIDParam parses the proposal id URL parameter.
func proposalIDParam(r *http.Request) (types.ProposalID, error) {
	id, err := types.ParseProposalID(chi.URLParam(r, ProposalURLParam))
	if err != nil {
		return 0, ErrMalformedProposalID.WithErr(err)
	}
	return id, nil
}

// addressParam parses the address URL parameter.
func addressParam(r *http.Request) (common.Address, error) {
	s := chi.URLParam(r, AddressURLParam)
	if !common.IsHexAddress(s) {
		return common.Address{}, ErrMalformedAddress.With(s)
	}
	return common.HexToAddress(s), nil
}

// uintQuery parses an unsigned query parameter, returning def when it is
// missing.
func uintQuery(r *http.Request, name string, def uint64) (uint64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, ErrMalformedParam.Withf("%s: %v", name, err)
	}
	return n, nil
}
