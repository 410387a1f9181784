package presentation

import (
	"github.com/zjrosen/sidediff/internal/diff"
	"github.com/zjrosen/sidediff/internal/fold"
)

// TokenDTO is one intra-line token.
type TokenDTO struct {
	Type string `json:"type" yaml:"type"`
	Text string `json:"text" yaml:"text"`
}

// SegmentDTO is one side of a line. Tokens is set only for paired lines
// compared with word diff. Placeholder marks the side a line is missing from;
// LineNumber is then omitted.
type SegmentDTO struct {
	Type        string     `json:"type" yaml:"type"`
	LineNumber  int        `json:"line_number,omitempty" yaml:"line_number,omitempty"`
	Placeholder bool       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Text        string     `json:"text" yaml:"text"`
	Tokens      []TokenDTO `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// LineDTO is one aligned record.
type LineDTO struct {
	Index int        `json:"index" yaml:"index"`
	Left  SegmentDTO `json:"left" yaml:"left"`
	Right SegmentDTO `json:"right" yaml:"right"`
}

// ResultDTO is a full diff result.
type ResultDTO struct {
	Lines           []LineDTO    `json:"lines" yaml:"lines"`
	DiffBlockStarts []int        `json:"diff_block_starts" yaml:"diff_block_starts"`
	Summary         fold.Summary `json:"summary" yaml:"summary"`
}

// FoldDTO is a collapsed run of unchanged lines.
type FoldDTO struct {
	ID              int `json:"id" yaml:"id"`
	Start           int `json:"start" yaml:"start"`
	End             int `json:"end" yaml:"end"`
	Count           int `json:"count" yaml:"count"`
	LeftLineNumber  int `json:"left_line_number" yaml:"left_line_number"`
	RightLineNumber int `json:"right_line_number" yaml:"right_line_number"`
}

// RowDTO is one row of a folded plan; exactly one of Line and Fold is set.
type RowDTO struct {
	Kind string   `json:"kind" yaml:"kind"`
	Line *LineDTO `json:"line,omitempty" yaml:"line,omitempty"`
	Fold *FoldDTO `json:"fold,omitempty" yaml:"fold,omitempty"`
}

// PlanDTO is a diff result laid out with folds.
type PlanDTO struct {
	Rows            []RowDTO     `json:"rows" yaml:"rows"`
	DiffBlockStarts []int        `json:"diff_block_starts" yaml:"diff_block_starts"`
	Summary         fold.Summary `json:"summary" yaml:"summary"`
}

// MethodDTO describes a comparison granularity.
type MethodDTO struct {
	Name    string `json:"name" yaml:"name"`
	Alias   string `json:"alias" yaml:"alias"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

// BatchItemDTO is the outcome of one batch request.
type BatchItemDTO struct {
	ID     string     `json:"id" yaml:"id"`
	Error  string     `json:"error,omitempty" yaml:"error,omitempty"`
	Result *ResultDTO `json:"result,omitempty" yaml:"result,omitempty"`
	Plan   *PlanDTO   `json:"plan,omitempty" yaml:"plan,omitempty"`
}

// ErrorDTO is the body of a failed API request.
type ErrorDTO struct {
	Error     string `json:"error" yaml:"error"`
	RequestID string `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

// FromSegment converts a segment, flattening its value and listing tokens.
func FromSegment(s diff.Segment) SegmentDTO {
	dto := SegmentDTO{
		Type:        s.Type.String(),
		LineNumber:  s.LineNumber,
		Placeholder: s.IsPlaceholder(),
		Text:        s.Text(),
	}
	if tokens, ok := s.Value.(diff.Tokens); ok {
		dto.Tokens = make([]TokenDTO, len(tokens))
		for i, tok := range tokens {
			dto.Tokens[i] = TokenDTO{Type: tok.Type.String(), Text: tok.Text()}
		}
	}
	return dto
}

// FromLine converts the record at index.
func FromLine(index int, rec diff.LineRecord) LineDTO {
	return LineDTO{Index: index, Left: FromSegment(rec.Left), Right: FromSegment(rec.Right)}
}

// FromResult converts a full result.
func FromResult(res diff.Result) ResultDTO {
	lines := make([]LineDTO, len(res.Lines))
	for i, rec := range res.Lines {
		lines[i] = FromLine(i, rec)
	}
	return ResultDTO{
		Lines:           lines,
		DiffBlockStarts: blockStarts(res),
		Summary:         fold.Summarize(res),
	}
}

// FromPlan converts a folded plan of res.
func FromPlan(res diff.Result, rows []fold.Row) PlanDTO {
	out := make([]RowDTO, len(rows))
	for i, r := range rows {
		out[i] = RowDTO{Kind: r.Kind.String()}
		switch r.Kind {
		case fold.RowLine:
			line := FromLine(r.Index, r.Line)
			out[i].Line = &line
		case fold.RowFold:
			out[i].Fold = &FoldDTO{
				ID:              r.Fold.ID,
				Start:           r.Fold.Start,
				End:             r.Fold.End,
				Count:           r.Fold.Count(),
				LeftLineNumber:  r.Fold.LeftLineNumber,
				RightLineNumber: r.Fold.RightLineNumber,
			}
		}
	}
	return PlanDTO{
		Rows:            out,
		DiffBlockStarts: blockStarts(res),
		Summary:         fold.Summarize(res),
	}
}

// FromMethods lists every supported method.
func FromMethods() []MethodDTO {
	methods := diff.Methods()
	out := make([]MethodDTO, len(methods))
	for i, m := range methods {
		out[i] = MethodDTO{Name: string(m), Alias: m.Alias(), Default: m == diff.DefaultMethod}
	}
	return out
}

// blockStarts keeps the field an empty list rather than null in JSON.
func blockStarts(res diff.Result) []int {
	if res.DiffBlockStarts == nil {
		return []int{}
	}
	return res.DiffBlockStarts
}
