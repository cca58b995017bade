package server

import (
	"errors"
	"net/http"

	"github.com/amonks/kanban/board"
)

// Error kinds reported in error responses.
const (
	KindInvalidTitle         = "invalid_title"
	KindInvalidDescription   = "invalid_description"
	KindInvalidStatus        = "invalid_status"
	KindValidation           = "validation"
	KindNotFound             = "not_found"
	KindAmbiguousID          = "ambiguous_id"
	KindWIPLimitExceeded     = "wip_limit_exceeded"
	KindInvalidWIPLimit      = "invalid_wip_limit"
	KindWIPLimitBelowCurrent = "wip_limit_below_current"
	KindInvalidReorder       = "invalid_reorder"
	KindBadRequest           = "bad_request"
	KindMethodNotAllowed     = "method_not_allowed"
	KindInternal             = "internal"
)

// errorKinds is checked in order; specific validation errors come before ErrValidation.
var errorKinds = []struct {
	err    error
	kind   string
	status int
}{
	{board.ErrInvalidTitle, KindInvalidTitle, http.StatusBadRequest},
	{board.ErrInvalidDescription, KindInvalidDescription, http.StatusBadRequest},
	{board.ErrInvalidStatus, KindInvalidStatus, http.StatusBadRequest},
	{board.ErrValidation, KindValidation, http.StatusBadRequest},
	{board.ErrNotFound, KindNotFound, http.StatusNotFound},
	{board.ErrAmbiguousID, KindAmbiguousID, http.StatusBadRequest},
	{board.ErrWIPLimitExceeded, KindWIPLimitExceeded, http.StatusConflict},
	{board.ErrInvalidWIPLimit, KindInvalidWIPLimit, http.StatusBadRequest},
	{board.ErrWIPLimitBelowCurrent, KindWIPLimitBelowCurrent, http.StatusConflict},
	{board.ErrInvalidReorder, KindInvalidReorder, http.StatusBadRequest},
}

// classify maps a board error to its kind and HTTP status.
func classify(err error) (string, int) {
	for _, known := range errorKinds {
		if errors.Is(err, known.err) {
			return known.kind, known.status
		}
	}
	return KindInternal, http.StatusInternalServerError
}

// Error is an error response from the server. It unwraps to the matching
// board sentinel, so callers can use errors.Is as they would locally.
type Error struct {
	Kind    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	for _, known := range errorKinds {
		if known.kind == e.Kind {
			return known.err
		}
	}
	return nil
}
