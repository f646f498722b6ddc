package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// ErrNoSession is returned by operations that require an authenticated
// session when none is available.
var ErrNoSession = errors.New("no active session")

// APIError represents an error response from the authentication service.
// Message is human-readable and safe to present to an end user.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error,omitempty"`
	Message string `json:"error_description,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth: request failed with status %d", e.Status)
	}
	return fmt.Sprintf("auth: %s (status %d)", e.Message, e.Status)
}

// asAPIError converts token-endpoint failures into *APIError, leaving
// transport-level failures untouched.
func asAPIError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return err
	}
	apiErr := &APIError{
		Code:    retrieveErr.ErrorCode,
		Message: retrieveErr.ErrorDescription,
	}
	if retrieveErr.Response != nil {
		apiErr.Status = retrieveErr.Response.StatusCode
	}
	if apiErr.Message == "" && len(retrieveErr.Body) > 0 {
		_ = json.Unmarshal(retrieveErr.Body, apiErr)
	}
	return apiErr
}

// decodeAPIError reads a non-2xx service response body as an APIError.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(data) > 0 {
		_ = json.Unmarshal(data, apiErr)
	}
	return apiErr
}
