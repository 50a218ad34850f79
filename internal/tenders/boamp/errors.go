package boamp

import (
	"fmt"
)

// UpstreamError is any failed call to the open data API: a non 2xx status,
// a transport failure or a timeout (Status 0 for the last two).
type UpstreamError struct {
	Status int
	Body   string

	// Err is the transport or decode cause, if any.
	Err error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("upstream error: %v", e.Err)
	case e.Body == "" && e.Err != nil:
		return fmt.Sprintf("upstream error %d: %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("upstream error %d: %s", e.Status, e.Body)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }
