package failure

import (
	"errors"
	"net/http"
)

// Kind classifies a Failure independently of its HTTP code so callers can
// branch on what went wrong with errors.Is.
type Kind string

const (
	KindBadRequest       Kind = "bad_request"
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindInternal         Kind = "internal"
	KindInvalidFormat    Kind = "invalid_format"
	KindInvalidRange     Kind = "invalid_range"
	KindSlotTaken        Kind = "slot_taken"
	KindNotFound         Kind = "not_found"
	KindNotOwner         Kind = "not_owner"
	KindStoreUnavailable Kind = "store_unavailable"
	KindStoreRejected    Kind = "store_rejected"
	KindIndexUnknown     Kind = "index_unknown"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
}

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrInvalidFormat    = &Failure{Code: http.StatusBadRequest, Kind: KindInvalidFormat, Message: "invalid format"}
	ErrInvalidRange     = &Failure{Code: http.StatusBadRequest, Kind: KindInvalidRange, Message: "start must be before end"}
	ErrSlotTaken        = &Failure{Code: http.StatusConflict, Kind: KindSlotTaken, Message: "slot already taken"}
	ErrNotFound         = &Failure{Code: http.StatusNotFound, Kind: KindNotFound, Message: "not found"}
	ErrNotOwner         = &Failure{Code: http.StatusForbidden, Kind: KindNotOwner, Message: "only the reservation owner may do this"}
	ErrStoreUnavailable = &Failure{Code: http.StatusServiceUnavailable, Kind: KindStoreUnavailable, Message: "store unavailable"}
	ErrStoreRejected    = &Failure{Code: http.StatusBadGateway, Kind: KindStoreRejected, Message: "store rejected the request"}
	ErrIndexUnknown     = &Failure{Code: http.StatusInternalServerError, Kind: KindIndexUnknown, Message: "row index unknown"}
	ForbiddenError      = &Failure{Code: http.StatusForbidden, Kind: KindForbidden, Message: "You don't have the required permissions"}
)

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

// Is reports whether target is a Failure of the same Kind.
func (e *Failure) Is(target error) bool {
	var t *Failure
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind != "" && t.Kind == e.Kind
}

func newFailure(code int, kind Kind, msg string) error {
	return &Failure{Code: code, Kind: kind, Message: msg}
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return newFailure(http.StatusBadRequest, KindBadRequest, err.Error())
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, KindBadRequest, msg)
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, KindUnauthorized, msg)
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return newFailure(http.StatusInternalServerError, KindInternal, err.Error())
	}

	return nil
}

func InvalidFormat(msg string) error {
	return newFailure(http.StatusBadRequest, KindInvalidFormat, msg)
}

func InvalidRange(msg string) error {
	return newFailure(http.StatusBadRequest, KindInvalidRange, msg)
}

// SlotTaken returns a new Failure for a conflicting reservation.
func SlotTaken(msg string) error {
	return newFailure(http.StatusConflict, KindSlotTaken, msg)
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(msg string) error {
	return newFailure(http.StatusNotFound, KindNotFound, msg)
}

func NotOwner(msg string) error {
	return newFailure(http.StatusForbidden, KindNotOwner, msg)
}

// StoreUnavailable marks a transient store failure; the whole user action may be retried.
func StoreUnavailable(msg string) error {
	return newFailure(http.StatusServiceUnavailable, KindStoreUnavailable, msg)
}

// StoreRejected marks a permanent store failure (schema, permission, bad request).
func StoreRejected(msg string) error {
	return newFailure(http.StatusBadGateway, KindStoreRejected, msg)
}

// IndexUnknown is returned by AppendRow when the row was written but its position could not be derived.
func IndexUnknown(msg string) error {
	return newFailure(http.StatusInternalServerError, KindIndexUnknown, msg)
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the Kind of the first Failure in the chain, or KindInternal.
func GetKind(err error) Kind {
	var fail *Failure
	if errors.As(err, &fail) && fail.Kind != "" {
		return fail.Kind
	}

	return KindInternal
}

// IsStoreError reports whether err came from the row store.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrStoreRejected)
}
