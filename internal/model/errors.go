package model

import "fmt"

// ErrorKind classifies a ScreenError per the spec's error taxonomy.
type ErrorKind string

const (
	// InvalidInput covers bad intervals, unknown presets, missing required
	// parameters — always surfaced to the caller.
	InvalidInput ErrorKind = "invalid_input"
	// InvalidInterval is a specialization of InvalidInput for unmapped
	// candle intervals.
	InvalidInterval ErrorKind = "invalid_interval"
	// UpstreamError covers HTTP/network failures and non-ok upstream
	// statuses; the market-data client substitutes a mock frame rather
	// than propagating this to the evaluator.
	UpstreamError ErrorKind = "upstream_error"
	// MissingTimeframe means a node or filter referenced a timeframe that
	// was never fetched for the current symbol.
	MissingTimeframe ErrorKind = "missing_timeframe"
	// MissingField means a filter referenced a column or metric that is
	// absent from the frame even after enrichment. The filter fails but
	// the symbol is not classified as failed.
	MissingField ErrorKind = "missing_field"
	// EvalError means the expression AST was malformed (unknown node type
	// or operator).
	EvalError ErrorKind = "eval_error"
	// SymbolError is an unrecoverable exception in a per-symbol pipeline
	// step; the symbol is classified as failed but the scan continues.
	SymbolError ErrorKind = "symbol_error"
)

// ScreenError is the engine's single error type, carrying enough context to
// route behavior (surface vs. degrade vs. fail-symbol) at each call site.
type ScreenError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ScreenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ScreenError) Unwrap() error { return e.Cause }

// NewScreenError constructs a ScreenError of the given kind.
func NewScreenError(kind ErrorKind, message string, cause error) *ScreenError {
	return &ScreenError{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err is a *ScreenError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	se, ok := err.(*ScreenError)
	return ok && se.Kind == kind
}
