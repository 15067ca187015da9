// Package failure defines the error kinds shared by the recommendation pipeline.
//
// Every error that crosses a client boundary is a *Error carrying a Kind. Callers
// branch on the kind with Is or KindOf; the wrapped cause is kept for logging only.
package failure

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	Unknown Kind = iota
	// InputValidation is an empty prompt or malformed request. No network call is made.
	InputValidation
	// TransportFailure covers network errors, unexpected HTTP statuses, expired deadlines
	// and open circuit breakers.
	TransportFailure
	// SchemaViolation means the language model reply did not match the declared shape.
	SchemaViolation
	// UpstreamRefusal is an explicit error payload from an external service.
	UpstreamRefusal
	// NotFound is the expected per-candidate outcome when a title cannot be resolved.
	NotFound
	// NoResults means every candidate resolved to NotFound.
	NoResults
	// Configuration is a missing credential.
	Configuration
)

var kindNames = map[Kind]string{
	Unknown:          "unknown",
	InputValidation:  "input_validation",
	TransportFailure: "transport_failure",
	SchemaViolation:  "schema_violation",
	UpstreamRefusal:  "upstream_refusal",
	NotFound:         "not_found",
	NoResults:        "no_results",
	Configuration:    "configuration",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure. Status and Body are set when an upstream HTTP
// response was involved; Body is truncated and meant for server-side logs.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Body != "" {
		b.WriteString(" body=")
		b.WriteString(e.Body)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrNoResults is the cause attached to NoResults failures.
var ErrNoResults = errors.New("could not find details for any of the recommended movies")

// New returns a failure of the given kind with a plain message as its cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Upstream builds a failure for a non-successful HTTP response.
func Upstream(kind Kind, op string, status int, body []byte, err error) *Error {
	return &Error{Kind: kind, Op: op, Status: status, Body: Truncate(string(body), maxBodyLog), Err: err}
}

// Transport classifies a network-level error. Context cancellation and deadline
// expiry are both transport failures.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: TransportFailure, Op: op, Err: fmt.Errorf("deadline exceeded: %w", err)}
	}
	return &Error{Kind: TransportFailure, Op: op, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

const maxBodyLog = 300

// Truncate shortens s to at most n bytes for logging.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
