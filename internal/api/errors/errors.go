// Package errors provides error handling and HTTP status code mapping.
package errors

import (
	"errors"
	"net/http"

	"github.com/Infisical/pki-issuance/internal/api/dto"
	"github.com/Infisical/pki-issuance/internal/ca"
	"github.com/Infisical/pki-issuance/internal/certreq"
	"github.com/Infisical/pki-issuance/internal/policy"
	"github.com/Infisical/pki-issuance/internal/store"
)

// Error codes for API responses.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
	CodeProfileNotFound    = "PROFILE_NOT_FOUND"
	CodeTemplateNotFound   = "TEMPLATE_NOT_FOUND"
	CodeCANotFound         = "CA_NOT_FOUND"
	CodeCertNotFound       = "CERT_NOT_FOUND"
	CodeCADisabled         = "CA_DISABLED"
	CodeInvalidCSR         = "INVALID_CSR"
	CodeUnsupportedKeyAlgo = "UNSUPPORTED_KEY_ALGORITHM"
	CodeUnsupportedSigAlgo = "UNSUPPORTED_SIGNATURE_ALGORITHM"
)

// MapError maps an internal error to an HTTP status code and APIError.
func MapError(err error) (int, *dto.APIError) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case errors.Is(err, store.ErrProfileNotFound):
		return http.StatusNotFound, &dto.APIError{
			Code:    CodeProfileNotFound,
			Message: err.Error(),
		}
	case errors.Is(err, store.ErrTemplateNotFound):
		return http.StatusNotFound, &dto.APIError{
			Code:    CodeTemplateNotFound,
			Message: err.Error(),
		}
	case errors.Is(err, store.ErrCANotFound):
		return http.StatusNotFound, &dto.APIError{
			Code:    CodeCANotFound,
			Message: err.Error(),
		}
	case errors.Is(err, store.ErrCertificateNotFound):
		return http.StatusNotFound, &dto.APIError{
			Code:    CodeCertNotFound,
			Message: err.Error(),
		}
	case errors.Is(err, certreq.ErrEmptyCSR), errors.Is(err, certreq.ErrInvalidCSR):
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeInvalidCSR,
			Message: err.Error(),
		}
	case errors.Is(err, certreq.ErrNoIdentifiers):
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeInvalidRequest,
			Message: err.Error(),
		}
	case errors.Is(err, ca.ErrCADisabled):
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeCADisabled,
			Message: err.Error(),
		}
	case errors.Is(err, ca.ErrUnsupportedKeyAlgorithm):
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeUnsupportedKeyAlgo,
			Message: err.Error(),
		}
	case errors.Is(err, ca.ErrUnsupportedSignatureAlgorithm):
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeUnsupportedSigAlgo,
			Message: err.Error(),
		}
	}

	// Policy violations carry the first violated rule in the message.
	var valErr *policy.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeValidation,
			Message: valErr.Error(),
		}
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeInvalidRequest,
			Message: reqErr.Message,
		}
	}

	// Default internal error
	return http.StatusInternalServerError, &dto.APIError{
		Code:    CodeInternal,
		Message: "An internal error occurred",
	}
}

// RequestError is a service-level bad request (malformed or missing input
// detected before any domain logic runs).
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// NewBadRequest creates a bad request error.
func NewBadRequest(message string) *RequestError {
	return &RequestError{Message: message}
}
