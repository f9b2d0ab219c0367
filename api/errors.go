package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vocdoni/confidential-voting/acl"
	"github.com/vocdoni/confidential-voting/fhe"
	"github.com/vocdoni/confidential-voting/fhe/mockfhe"
	"github.com/vocdoni/confidential-voting/ledger"
	"github.com/vocdoni/confidential-voting/log"
	"github.com/vocdoni/confidential-voting/voting"
)

// Error is used by handler functions to wrap errors, assigning a unique error code
// and also specifying which HTTP Status should be used.
type Error struct {
	Err        error
	Code       int
	HTTPstatus int
}

// MarshalJSON returns a JSON containing Err.Error() and Code. Field HTTPstatus is ignored.
//
// Example output: {"error":"proposal not found","code":40007}
func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		struct {
			Err  string `json:"error"`
			Code int    `json:"code"`
		}{
			Err:  e.Err.Error(),
			Code: e.Code,
		})
}

// UnmarshalJSON decodes an error response written by Write. The HTTP status
// is not part of the body and is left untouched.
func (e *Error) UnmarshalJSON(data []byte) error {
	var body struct {
		Err  string `json:"error"`
		Code int    `json:"code"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	e.Err = errors.New(body.Err)
	e.Code = body.Code
	return nil
}

// Error returns the message contained inside the Error.
func (e Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// Write serializes a JSON msg using Error.Err and Error.Code with the
// Error.HTTPstatus status code.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	if log.Level() == log.LogLevelDebug {
		log.Debugw("API error response", "error", e.Error(), "code", e.Code, "httpStatus", e.HTTPstatus)
	}
	w.Header().Set("Content-Type", "application/json")
	http.Error(w, string(msg), e.HTTPstatus)
}

// Withf returns a copy of Error with the Sprintf formatted string appended at the end of e.Err
func (e Error) Withf(format string, args ...any) Error {
	return e.With(fmt.Sprintf(format, args...))
}

// With returns a copy of Error with the string appended at the end of e.Err
func (e Error) With(s string) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, s),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// WithErr returns a copy of Error with err.Error() appended at the end of e.Err
func (e Error) WithErr(err error) Error {
	return e.With(err.Error())
}

// errorFrom returns the API error matching an error of the voting core, the
// access control or the engine. Unknown errors are internal server errors.
func errorFrom(err error) Error {
	var apiErr Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, ledger.ErrReplayedRequest):
		return ErrReplayedRequest.WithErr(err)
	// ErrInvalidOption wraps ErrInvalidParameters, so it goes first
	case errors.Is(err, voting.ErrInvalidOption):
		return ErrInvalidOption.WithErr(err)
	case errors.Is(err, voting.ErrInvalidParameters):
		return ErrInvalidParameters.WithErr(err)
	case errors.Is(err, acl.ErrInvalidAccount):
		return ErrInvalidParameters.WithErr(err)
	case errors.Is(err, voting.ErrUnauthorized):
		return ErrUnauthorized.WithErr(err)
	case errors.Is(err, voting.ErrNotFound):
		return ErrProposalNotFound.WithErr(err)
	case errors.Is(err, voting.ErrNotStarted):
		return ErrVotingNotStarted.WithErr(err)
	case errors.Is(err, voting.ErrEnded):
		return ErrVotingEnded.WithErr(err)
	case errors.Is(err, voting.ErrAlreadyVoted):
		return ErrAlreadyVoted.WithErr(err)
	case errors.Is(err, voting.ErrProofVerificationFailed):
		return ErrInvalidProof.WithErr(err)
	case errors.Is(err, voting.ErrNotEnded):
		return ErrVotingNotEnded.WithErr(err)
	case errors.Is(err, voting.ErrAlreadyFinalized):
		return ErrAlreadyFinalized.WithErr(err)
	case errors.Is(err, mockfhe.ErrInvalidCredential):
		return ErrInvalidCredential.WithErr(err)
	case errors.Is(err, fhe.ErrNotAllowed):
		return ErrDecryptionNotAllowed.WithErr(err)
	case errors.Is(err, fhe.ErrUnknownHandle):
		return ErrHandleNotFound.WithErr(err)
	case errors.Is(err, fhe.ErrOutOfRange):
		return ErrInvalidParameters.WithErr(err)
	}
	return ErrGenericInternalServerError.WithErr(err)
}
