package errors

import (
	"errors"
	"net/http"
)

// HTTPError pairs an error with the status code the API should answer with.
type HTTPError struct {
	Code    int
	Message string
	// Reason is set for business-rule rejections so clients can branch on
	// the code instead of the message text.
	Reason Reason
	// Available is set for insufficient-capacity rejections.
	Available int
}

func (e *HTTPError) Error() string {
	return e.Message
}

// ToHTTP maps a service error onto the status code and payload the handlers
// return.
func ToHTTP(err error) *HTTPError {
	if rej, ok := AsRejection(err); ok {
		code := http.StatusUnprocessableEntity
		if rej.Reason == ReasonInsufficientCapacity {
			code = http.StatusConflict
		}
		return &HTTPError{
			Code:      code,
			Message:   rej.Error(),
			Reason:    rej.Reason,
			Available: rej.Available,
		}
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return &HTTPError{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, ErrInvalidSpace):
		return &HTTPError{Code: http.StatusBadRequest, Message: err.Error()}
	case errors.Is(err, ErrForbidden):
		return &HTTPError{Code: http.StatusForbidden, Message: err.Error()}
	case errors.Is(err, ErrCancelNotAllowed), errors.Is(err, ErrDeleteNotAllowed):
		return &HTTPError{Code: http.StatusConflict, Message: err.Error()}
	}

	var pe *PersistenceError
	if errors.As(err, &pe) {
		return &HTTPError{Code: http.StatusInternalServerError, Message: pe.Error()}
	}
	return &HTTPError{Code: http.StatusInternalServerError, Message: "internal error"}
}
