package api

import (
	"github.com/kostiamol/spinparams/params"
	"github.com/pkg/errors"
)

const (
	ErrService     = "ERR_SERVICE"
	ErrBadRequest  = "ERR_BAD_REQUEST"
	ErrTooLarge    = "ERR_TOO_LARGE"
	ErrUnavailable = "ERR_STORAGE_UNAVAILABLE"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error() returns error as a string.
func (e apiError) Error() string {
	return e.Message
}

func newBadRequestError(msg string) apiError {
	return apiError{
		Code:    ErrBadRequest,
		Message: msg,
	}
}

func newTooLargeError() apiError {
	return apiError{
		Code:    ErrTooLarge,
		Message: "Document too large",
	}
}

// classify maps the errors of the params package onto api errors.
func classify(err error) error {
	switch errors.Cause(err) {
	case params.ErrMalformedDocument:
		return newBadRequestError(err.Error())
	case params.ErrDocumentTooLarge:
		return newTooLargeError()
	case params.ErrStorageUnavailable:
		return apiError{
			Code:    ErrUnavailable,
			Message: "Storage unavailable",
		}
	}
	return err
}
