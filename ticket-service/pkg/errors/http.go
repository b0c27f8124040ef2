package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// HTTPError is a failure that carries the HTTP status it should be reported with.
type HTTPError struct {
	Code    int
	Message string
}

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewClientInputError reports a request the caller has to fix.
func NewClientInputError(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

// NewJoinIntegrityError reports an available seat referencing an unknown price or section.
func NewJoinIntegrityError(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

// NewUpstreamDataError reports a payload the upstream flagged as an error or that could not be decoded.
func NewUpstreamDataError(message string) *HTTPError {
	return NewHTTPError(http.StatusBadGateway, message)
}

func NewUpstreamStatusError(status int) *HTTPError {
	return NewHTTPError(http.StatusBadGateway,
		fmt.Sprintf("Got bad response from external API with status: %q", fmt.Sprint(status)))
}

func NewUpstreamUnavailableError() *HTTPError {
	return NewHTTPError(http.StatusGatewayTimeout, "Failed to get the response from the external API")
}

func NewUpstreamRequestSetupError() *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, "Something bad happened while setting up the request to API")
}

// ParseHTTPError returns the status and message err should be reported with.
// Errors that are not an *HTTPError are reported as an internal error.
func ParseHTTPError(err error) (int, string) {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		code := httpErr.Code
		if code == 0 {
			code = http.StatusInternalServerError
		}
		return code, httpErr.Message
	}

	return http.StatusInternalServerError, "Internal server error"
}
