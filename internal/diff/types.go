package diff

import "strings"

// Type classifies a segment.
type Type int

const (
	TypeDefault Type = iota // unchanged, or an empty placeholder
	TypeAdded               // present only in the new text
	TypeRemoved             // present only in the old text
)

// String returns the lower-case name of the type.
func (t Type) String() string {
	switch t {
	case TypeDefault:
		return "default"
	case TypeAdded:
		return "added"
	case TypeRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Value is the content of a Segment: either Text or Tokens.
//
// The interface is closed; a type switch over Text and Tokens is exhaustive.
type Value interface {
	isValue()
	// Flatten returns the plain text carried by the value.
	Flatten() string
}

// Text is a plain text span.
type Text string

func (Text) isValue() {}

func (t Text) Flatten() string { return string(t) }

// Tokens is an ordered sequence of intra-line segments.
type Tokens []Segment

func (Tokens) isValue() {}

func (ts Tokens) Flatten() string {
	var b strings.Builder
	for _, s := range ts {
		if s.Value != nil {
			b.WriteString(s.Value.Flatten())
		}
	}
	return b.String()
}

// String renders the tokens with [-removed-] and {+added+} markers.
func (ts Tokens) String() string {
	var b strings.Builder
	for _, s := range ts {
		text := ""
		if s.Value != nil {
			text = s.Value.Flatten()
		}
		switch s.Type {
		case TypeAdded:
			b.WriteString("{+" + text + "+}")
		case TypeRemoved:
			b.WriteString("[-" + text + "-]")
		default:
			b.WriteString(text)
		}
	}
	return b.String()
}

// Segment is one unit of comparison output.
type Segment struct {
	Type  Type
	Value Value
	// LineNumber is the line number on the segment's side, 1-based before
	// LinesOffset is applied. It is 0 for intra-line tokens and placeholders;
	// with a negative offset 0 is also a real line number, so use
	// IsPlaceholder to tell them apart.
	LineNumber int
	// Missing marks a placeholder for a line absent from this side.
	Missing bool
}

// Text returns the flattened text of the segment.
func (s Segment) Text() string {
	if s.Value == nil {
		return ""
	}
	return s.Value.Flatten()
}

// IsPlaceholder reports whether s stands in for a line missing on its side.
func (s Segment) IsPlaceholder() bool {
	return s.Missing
}

// LineRecord is one row of the aligned output.
//
// Exactly one of these holds:
//   - both sides are TypeDefault (unchanged line),
//   - one side is TypeAdded or TypeRemoved and the other a placeholder,
//   - Left is TypeRemoved and Right is TypeAdded (a paired changed line).
type LineRecord struct {
	Left  Segment
	Right Segment
}

// Changed reports whether either side of the record is not TypeDefault.
func (r LineRecord) Changed() bool {
	return r.Left.Type != TypeDefault || r.Right.Type != TypeDefault
}

// Paired reports whether the record aligns a removed line with an added line.
func (r LineRecord) Paired() bool {
	return r.Left.Type == TypeRemoved && r.Right.Type == TypeAdded
}

// Result is the output of Compute.
type Result struct {
	Lines []LineRecord
	// DiffBlockStarts holds the index into Lines of the first record of each
	// maximal run of changed records, ascending.
	DiffBlockStarts []int
}

// Blocks returns a cursor over DiffBlockStarts. The cursor owns its position;
// advancing it never modifies the Result.
func (r Result) Blocks() *BlockCursor {
	return NewBlockCursor(r.DiffBlockStarts)
}
