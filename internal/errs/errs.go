// Package errs defines the error taxonomy used to scope failures: config and
// validation errors are fatal for the whole run, setup errors for one worker's
// batch, fetch and send errors for one payload. Nothing is retried.
package errs

import "fmt"

// ConfigError: unreadable query file or query JSON missing the "query" key.
// Fatal before any work starts.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: %v", e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

// ValidationError: a query entry missing a required field or holding a
// wrongly-typed value. Fatal for the whole run; no partial payload set runs.
type ValidationError struct {
	Entry int // index into the query list
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("query entry %d: field %q: %s", e.Entry, e.Field, e.Msg)
}

// SetupError: browser-session or transport-client construction failure inside
// a worker. Fatal for that worker's batch only.
type SetupError struct {
	What string // "browser" | "transport"
	Err  error
}

func (e *SetupError) Error() string { return fmt.Sprintf("setup %s: %v", e.What, e.Err) }
func (e *SetupError) Unwrap() error { return e.Err }

// FetchError: failure or timeout checking one payload's availability. The
// payload is skipped, the worker continues.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// SendError: failure dispatching a message. No retry, and the ledger is not
// updated for the failed send.
type SendError struct {
	To  string
	Err error
}

func (e *SendError) Error() string { return fmt.Sprintf("send to %s: %v", e.To, e.Err) }
func (e *SendError) Unwrap() error { return e.Err }
