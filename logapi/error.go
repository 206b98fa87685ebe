package logapi

import "fmt"

// Error is a failed submission.  Op names the step that failed: "marshal",
// "request", "send", "read", "status" or "decode".
type Error struct {
	Op         string
	StatusCode int    // 0 if no response was received
	Body       string // first 512 bytes, for "status" errors
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "status":
		return fmt.Sprintf("logapi: HTTP %d: %s", e.StatusCode, e.Body)
	case e.Err == nil:
		return "logapi: " + e.Op + " failed"
	default:
		return "logapi: " + e.Op + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request failed by exceeding its deadline
func (e *Error) Timeout() bool {
	t, ok := e.Err.(interface{ Timeout() bool })
	return ok && t.Timeout()
}
