//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 401, 403, 404 or 409, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXXX or 5XXXX.
// If you notice there's a gap, DON'T fill in the gap, that code was used in the past
// for some error (not anymore) and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	ErrResourceNotFound     = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody        = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrInvalidSignature     = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid signature")}
	ErrMalformedProposalID  = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed proposal ID")}
	ErrProposalNotFound     = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("proposal not found")}
	ErrInvalidParameters    = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid parameters")}
	ErrUnauthorized         = Error{Code: 40009, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("unauthorized")}
	ErrVotingNotStarted     = Error{Code: 40010, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("voting not started")}
	ErrVotingEnded          = Error{Code: 40011, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("voting ended")}
	ErrAlreadyVoted         = Error{Code: 40012, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("already voted")}
	ErrInvalidProof         = Error{Code: 40013, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("input proof verification failed")}
	ErrInvalidOption        = Error{Code: 40014, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid option")}
	ErrVotingNotEnded       = Error{Code: 40015, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("voting not ended")}
	ErrAlreadyFinalized     = Error{Code: 40016, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("proposal already finalized")}
	ErrMalformedAddress     = Error{Code: 40017, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed address")}
	ErrExpiredRequest       = Error{Code: 40018, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("request timestamp out of window")}
	ErrMalformedParam       = Error{Code: 40019, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed query parameter")}
	ErrInvalidCredential    = Error{Code: 40020, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("invalid decryption credential")}
	ErrDecryptionNotAllowed = Error{Code: 40021, HTTPstatus: http.StatusForbidden, Err: fmt.Errorf("decryption not allowed")}
	ErrHandleNotFound       = Error{Code: 40022, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("handle not found")}
	ErrMalformedHandle      = Error{Code: 40023, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed handle")}
	ErrEngineNotAvailable   = Error{Code: 40024, HTTPstatus: http.StatusNotImplemented, Err: fmt.Errorf("engine endpoints not available")}
	ErrReplayedRequest      = Error{Code: 40025, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("signed request already executed")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
)
