package diff

import (
	"errors"
	"fmt"
)

// ErrInvalidInput reports a compared value that is not a string.
var ErrInvalidInput = errors.New("invalid input")

// Options configure Compute. The zero value compares paired lines character
// by character and numbers lines from 1.
type Options struct {
	// DisableWordDiff reports paired lines as plain text instead of tokens.
	DisableWordDiff bool
	// CompareMethod is the intra-line granularity. Unknown values fall back to
	// DefaultMethod.
	CompareMethod Method
	// LinesOffset is added to every reported line number. It may be negative.
	LinesOffset int
	// SemanticCleanup post-processes intra-line alignments to merge short
	// commonalities between changes into the surrounding edits.
	SemanticCleanup bool
}

// Compute diffs oldText against newText. Any pair of strings is accepted,
// including text that is not valid UTF-8; the error is always nil.
func Compute(oldText, newText string, opts Options) (Result, error) {

	oldLines := textLines(oldText)
	newLines := textLines(newText)
	runs := LineScript(oldLines, newLines)

	lines := newClassifier(opts, max(len(oldLines), len(newLines))).classify(runs)
	return Result{
		Lines:           lines,
		DiffBlockStarts: BlockStarts(lines),
	}, nil
}

// ComputeAny is Compute for untyped callers such as decoded JSON or YAML
// documents. Both values must be strings.
func ComputeAny(oldValue, newValue any, opts Options) (Result, error) {
	oldText, err := TextValue("old", oldValue)
	if err != nil {
		return Result{}, err
	}
	newText, err := TextValue("new", newValue)
	if err != nil {
		return Result{}, err
	}
	return Compute(oldText, newText, opts)
}

// TextValue returns v as a string, or ErrInvalidInput naming side and the
// dynamic type when v is anything else.
func TextValue(side string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s value is %T, want string", ErrInvalidInput, side, v)
	}
	return s, nil
}
