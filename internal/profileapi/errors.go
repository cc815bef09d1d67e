package profileapi

import (
	"errors"
	"fmt"
)

// UpstreamError reports a failed call to the external profile API. StatusCode
// is zero when no response was received.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Cause      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("profile api %s: %v", e.Op, e.Cause)
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("profile api %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("profile api %s: unexpected status %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("profile api %s failed", e.Op)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// IsUpstream reports whether err is or wraps an *UpstreamError.
func IsUpstream(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream)
}
