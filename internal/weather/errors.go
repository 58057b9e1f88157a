package weather

import "fmt"

// NetworkError indicates a transport failure or non-success HTTP status from
// a live provider.
type NetworkError struct {
	Provider string
	Status   int // 0 when the request never completed
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status code %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SchemaError indicates a decoded payload that is missing required fields or
// carries hourly arrays whose length is not exactly 24.
type SchemaError struct {
	Provider string
	Reason   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: invalid payload: %s", e.Provider, e.Reason)
}

// ParseError indicates a response body that is not valid structured data.
type ParseError struct {
	Provider string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: undecodable response: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractionError indicates a generative-model call that returned no usable
// structured text.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}
