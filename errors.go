package supermarkets

import "fmt"

// RequestFailedError is returned by every client operation that could not
// produce a usable response: transport failure, non-2xx status or an
// undecodable body are not told apart.
type RequestFailedError struct {
	Op  string
	Err error
}

func (e *RequestFailedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: request failed", e.Op)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// Is enables errors.Is matching on RequestFailedError.
func (e *RequestFailedError) Is(target error) bool {
	_, ok := target.(*RequestFailedError)
	return ok
}

// ErrRequestFailed is the sentinel for errors.Is checks.
var ErrRequestFailed = &RequestFailedError{}

func RequestFailed(op string, err error) error {
	return &RequestFailedError{Op: op, Err: err}
}
