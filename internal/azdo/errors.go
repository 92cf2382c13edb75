package azdo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// areaPathInvalidMarker is the server error code for an area path that does not exist
const areaPathInvalidMarker = "TF51011"

// RemoteCallError is any transport or HTTP failure talking to the remote service
type RemoteCallError struct {
	Method     string
	URL        string
	StatusCode int    // 0 when no response was received
	Code       string // typeKey from the error payload, if any
	Message    string
	Err        error // underlying transport error, if any
}

func (e *RemoteCallError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s failed: %s", e.Method, e.URL, e.Message)
	}
	return fmt.Sprintf("%s %s failed: status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// AreaPathInvalidError signals that a query referenced an area path the server does not know.
// It wraps the RemoteCallError carrying the marker.
type AreaPathInvalidError struct {
	Err *RemoteCallError
}

func (e *AreaPathInvalidError) Error() string {
	return "invalid area path: " + e.Err.Message
}

func (e *AreaPathInvalidError) Unwrap() error { return e.Err }

// IsAreaPathInvalid reports whether err carries the invalid area path marker
func IsAreaPathInvalid(err error) bool {
	var apErr *AreaPathInvalidError
	return errors.As(err, &apErr)
}

// StatusCode returns the HTTP status of a RemoteCallError in err's chain, or 0
func StatusCode(err error) int {
	var rcErr *RemoteCallError
	if errors.As(err, &rcErr) {
		return rcErr.StatusCode
	}
	return 0
}

// newStatusError builds a RemoteCallError from a non-success response body
func newStatusError(method, url string, status int, body []byte) *RemoteCallError {
	rcErr := &RemoteCallError{
		Method:     method,
		URL:        url,
		StatusCode: status,
	}
	if gjson.ValidBytes(body) {
		rcErr.Message = gjson.GetBytes(body, "message").String()
		rcErr.Code = gjson.GetBytes(body, "typeKey").String()
	}
	if rcErr.Message == "" {
		rcErr.Message = strings.TrimSpace(string(body))
	}
	if rcErr.Message == "" {
		rcErr.Message = "empty response body"
	}
	return rcErr
}

// classifyQueryError promotes a RemoteCallError carrying the area path marker
func classifyQueryError(err error) error {
	var rcErr *RemoteCallError
	if errors.As(err, &rcErr) && rcErr.StatusCode != 0 && strings.Contains(rcErr.Message, areaPathInvalidMarker) {
		return &AreaPathInvalidError{Err: rcErr}
	}
	return err
}
