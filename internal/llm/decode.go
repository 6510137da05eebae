package llm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ParseStatus tags a ParseResult.
type ParseStatus int

const (
	Parsed ParseStatus = iota + 1
	Unparseable
)

func (s ParseStatus) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case Unparseable:
		return "unparseable"
	default:
		return "unset"
	}
}

// ParseResult is the outcome of decoding an LLM completion into T. When
// Status is Unparseable, Value is the zero T and Reason says why.
type ParseResult[T any] struct {
	Status   ParseStatus
	Value    T
	Strategy Strategy
	Reason   string
}

// OK reports whether the completion decoded.
func (r ParseResult[T]) OK() bool { return r.Status == Parsed }

// Err returns nil for a parsed result and an *ErrInvalidResponse otherwise.
func (r ParseResult[T]) Err() error {
	if r.OK() {
		return nil
	}
	return &ErrInvalidResponse{Err: errors.New(r.Reason)}
}

// Decode extracts JSON from text and decodes the first candidate that
// satisfies schema (when non-nil) into T.
func Decode[T any](text string, schema *Schema) ParseResult[T] {
	cands := candidates(text)
	if len(cands) == 0 {
		return ParseResult[T]{Status: Unparseable, Reason: "no JSON object found in response"}
	}

	var lastErr error
	for _, c := range cands {
		if err := ValidateJSON(schema, c.raw); err != nil {
			lastErr = err
			continue
		}
		var v T
		if err := json.Unmarshal(c.raw, &v); err != nil {
			lastErr = fmt.Errorf("decode %s payload: %w", c.strategy, err)
			continue
		}
		return ParseResult[T]{Status: Parsed, Value: v, Strategy: c.strategy}
	}
	return ParseResult[T]{Status: Unparseable, Reason: lastErr.Error()}
}
