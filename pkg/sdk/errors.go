package sdk

import (
	"errors"
	"fmt"
)

// ErrCredentialRejected indicates the backend affirmatively rejected the
// stored credential ("User does not exist"). The credential is known-bad and
// should be cleared rather than retried.
var ErrCredentialRejected = errors.New("credential rejected by server")

// rejectedUserMessage is the exact backend error string that distinguishes an
// invalid credential from every other failure shape.
const rejectedUserMessage = "User does not exist"

// APIError is a backend-reported error decoded from a non-2xx response body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}
