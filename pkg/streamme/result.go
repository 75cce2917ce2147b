package streamme

import (
	"fmt"
	"net/http"
)

// Result holds the raw body of a successful (HTTP 200) provider response.
type Result struct {
	Body []byte
}

// UpstreamError is returned when the provider responded with a non-200
// status. The raw body is retained verbatim for diagnostics.
type UpstreamError struct {
	Code int
	Body []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed with status %d", e.Code)
}

// HTTPStatus returns the status code to surface to the caller, defaulting
// to 400 Bad Request if the upstream code is somehow absent.
func (e *UpstreamError) HTTPStatus() int {
	if e.Code == 0 {
		return http.StatusBadRequest
	}
	return e.Code
}
