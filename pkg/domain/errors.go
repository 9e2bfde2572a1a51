package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced by the core.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindSourceUnavailable: transport or parse failure talking to the article source.
	KindSourceUnavailable
	// KindNotFound: the named article does not exist.
	KindNotFound
	// KindExhaustedRetries: every random draw of the dedup budget was a duplicate.
	KindExhaustedRetries
	// KindRenderFailed: the renderer could not produce an image.
	KindRenderFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindSourceUnavailable:
		return "source_unavailable"
	case KindNotFound:
		return "not_found"
	case KindExhaustedRetries:
		return "exhausted_retries"
	case KindRenderFailed:
		return "render_failed"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks. A *Error matches the sentinel of its kind.
var (
	ErrSourceUnavailable = errors.New("article source unavailable")
	ErrNotFound          = errors.New("article not found")
	ErrExhaustedRetries  = errors.New("no unseen article found")
	ErrRenderFailed      = errors.New("card rendering failed")
)

// Error is a typed failure of a core operation.
type Error struct {
	Kind ErrorKind
	Op   string // Operation that failed, e.g. "fetch_random"
	Msg  string
	Err  error // Underlying cause; nil when the cause must not leak
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.sentinel().Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.sentinel()
	return s != nil && target == s
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindSourceUnavailable:
		return ErrSourceUnavailable
	case KindNotFound:
		return ErrNotFound
	case KindExhaustedRetries:
		return ErrExhaustedRetries
	case KindRenderFailed:
		return ErrRenderFailed
	default:
		return errors.New("unknown failure")
	}
}

// KindOf extracts the ErrorKind of err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
