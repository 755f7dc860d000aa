package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response from the API.
//
// The API reports failures as {"detail": "..."} or, for request validation
// errors, as {"detail": [{"msg": "..."}, ...]}.
type APIError struct {
	StatusCode int
	Status     string

	// Detail is set when detail was a string.
	Detail string

	// Details holds each "msg" when detail was an array.
	Details []string
}

// Error implements error.
func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message())
}

// HasDetail reports whether the server sent a usable detail.
func (e *APIError) HasDetail() bool {
	return e != nil && (e.Detail != "" || len(e.Details) > 0)
}

// Message returns the server detail. Array details are joined with ", ".
// Without a detail the HTTP status text is returned.
func (e *APIError) Message() string {
	if e == nil {
		return ""
	}
	if e.Detail != "" {
		return e.Detail
	}
	if len(e.Details) > 0 {
		return strings.Join(e.Details, ", ")
	}
	if e.Status != "" {
		return e.Status
	}
	return http.StatusText(e.StatusCode)
}

// AsAPIError unwraps err into an *APIError, or returns nil.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	apiErr := AsAPIError(err)
	if apiErr == nil {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	apiErr := AsAPIError(err)
	return apiErr != nil && apiErr.StatusCode == http.StatusNotFound
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Status: resp.Status}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}
	apiErr.Detail, apiErr.Details = parseDetail(body)
	return apiErr
}

// parseDetail extracts the "detail" field of an error body.
func parseDetail(body []byte) (string, []string) {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text, nil
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, len(items))
		for i, item := range items {
			msgs[i] = item.Msg
		}
		return "", msgs
	}
	return "", nil
}
