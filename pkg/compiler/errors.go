package compiler

import (
	"errors"
	"fmt"
)

// Structural errors. A translation that fails with either produces no output.
var (
	ErrUnmatchedLoopOpen  = errors.New("unmatched '['")
	ErrUnmatchedLoopClose = errors.New("unmatched ']'")
)

// TranslationError locates a structural error in the source. Err is
// ErrUnmatchedLoopOpen or ErrUnmatchedLoopClose; Pos is the offending bracket
// (for an unclosed loop, the innermost '[' left open).
type TranslationError struct {
	Err error
	Pos Pos
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}
