package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for fallback selection.
type Kind int

const (
	KindUnknown Kind = iota
	KindTickerExtraction
	KindExternalData
	KindVectorStore
	KindLLM
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindTickerExtraction:
		return "ticker_extraction"
	case KindExternalData:
		return "external_data"
	case KindVectorStore:
		return "vector_store"
	case KindLLM:
		return "llm"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is the base application error. Every typed failure of the query
// and ingestion paths is an *Error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &apperror.Error{Kind: apperror.KindLLM}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op) && t.Err == nil
}

// New wraps err with a kind. A nil err stays nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func TickerExtraction(op string, err error) error { return New(KindTickerExtraction, op, err) }
func ExternalData(op string, err error) error     { return New(KindExternalData, op, err) }
func VectorStore(op string, err error) error      { return New(KindVectorStore, op, err) }
func LLM(op string, err error) error              { return New(KindLLM, op, err) }
func Persistence(op string, err error) error      { return New(KindPersistence, op, err) }

// KindOf returns the kind of the outermost *Error in the chain, or
// KindUnknown for errors that were never classified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}
