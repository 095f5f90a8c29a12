package llm

import "fmt"

// TransportError means the HTTP call itself could not be completed
// (connection refused, DNS failure, TLS failure or timeout).
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// GenerationError means the call completed at the transport level but the
// result is unusable: the body failed to parse, the server returned an
// unexpected status, or it reported an incomplete result.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Cause }
