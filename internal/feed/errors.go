package feed

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedFormat reports content that matched none of the supported
// feed shapes.
var ErrUnrecognizedFormat = errors.New("unrecognized feed format")

// ConfigError reports a missing or malformed bundled feed configuration.
// The bundled config has no further fallback, so this error is fatal for
// feed resolution.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("feed config %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FetchError reports a network failure or non-2xx response during a feed fetch.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports content that could not be normalized, carrying the name
// of the format that was attempted.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s feed: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
