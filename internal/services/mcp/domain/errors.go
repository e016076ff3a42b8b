package domain

import (
	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/platform/i18n/notice"
)

// codedError is a domain error rendered for a tool client: the code first so
// clients can branch on it, then the localized message.
type codedError struct {
	code    apperrors.Code
	message string
	err     error
}

func (e *codedError) Error() string { return string(e.code) + ": " + e.message }
func (e *codedError) Unwrap() error { return e.err }

func toolError(printer *notice.Printer, err error) error {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		return err
	}
	return &codedError{code: code, message: printer.Error(err), err: err}
}
