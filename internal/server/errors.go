package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-site/internal/export"
	"github.com/jonathan/resume-site/internal/fetch"
	"github.com/jonathan/resume-site/internal/switcher"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrExportUnavailable indicates the server was started without a PDF printer
type ErrExportUnavailable struct{}

func (e *ErrExportUnavailable) Error() string {
	return "PDF export is not configured"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		unknown     *switcher.UnknownThemeError
		unavailable *ErrExportUnavailable
		exportErr   *export.Error
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &unknown):
		return http.StatusBadRequest
	case fetch.IsNotFound(err):
		return http.StatusNotFound
	case errors.As(err, &unavailable):
		return http.StatusNotImplemented
	case errors.As(err, &exportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
