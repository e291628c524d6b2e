package client

import (
	"fmt"
	"strings"
)

// Kind classifies a failed store operation.
type Kind string

const (
	KindFetchFailed           Kind = "FETCH_FAILED"
	KindStatsUnavailable      Kind = "STATS_UNAVAILABLE"
	KindCategoriesUnavailable Kind = "CATEGORIES_UNAVAILABLE"
	KindCreateFailed          Kind = "CREATE_FAILED"
	KindDeleteFailed          Kind = "DELETE_FAILED"
	KindPredictionFailed      Kind = "PREDICTION_FAILED"
	KindExportFailed          Kind = "EXPORT_FAILED"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrFetchFailed           = &Error{Kind: KindFetchFailed}
	ErrStatsUnavailable      = &Error{Kind: KindStatsUnavailable}
	ErrCategoriesUnavailable = &Error{Kind: KindCategoriesUnavailable}
	ErrCreateFailed          = &Error{Kind: KindCreateFailed}
	ErrDeleteFailed          = &Error{Kind: KindDeleteFailed}
	ErrPredictionFailed      = &Error{Kind: KindPredictionFailed}
	ErrExportFailed          = &Error{Kind: KindExportFailed}
)

// Error is returned by every Client method.
type Error struct {
	Kind   Kind
	Op     string // e.g. "GET /tasks"
	Status int    // HTTP status, 0 when the request never completed
	Body   string // truncated response body for non-2xx replies
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " ")))
	if e.Op != "" {
		b.WriteString(" (")
		b.WriteString(e.Op)
		b.WriteString(")")
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
		if e.Body != "" {
			b.WriteString(": ")
			b.WriteString(e.Body)
		}
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}
