// Package fold plans which records of a diff result are shown and which
// unchanged runs collapse into fold markers.
package fold

import (
	"slices"

	"github.com/zjrosen/sidediff/internal/diff"
)

// Options control folding. The zero value shows every line.
type Options struct {
	// DiffOnly hides unchanged lines farther than ContextLines from a change.
	DiffOnly bool
	// ContextLines is the number of unchanged lines kept on each side of a
	// change. Negative values are treated as 0.
	ContextLines int
	// Expanded holds IDs of folds to show in full.
	Expanded []int
}

// RowKind distinguishes a shown record from a fold marker.
type RowKind int

const (
	RowLine RowKind = iota
	RowFold
)

func (k RowKind) String() string {
	switch k {
	case RowLine:
		return "line"
	case RowFold:
		return "fold"
	default:
		return "unknown"
	}
}

// Fold is a maximal run of hidden unchanged records.
type Fold struct {
	// ID is the index of the first hidden record. It stays stable for a
	// given result and context, so it can be passed back in Options.Expanded.
	ID int
	// Start and End bound the hidden records, End exclusive.
	Start, End int
	// LeftLineNumber and RightLineNumber are the line numbers of the first
	// hidden record on each side, so a fold reads as Count lines starting
	// there. The line after the fold is res.Lines[End] when End is in range.
	LeftLineNumber, RightLineNumber int
}

// Count returns the number of hidden records.
func (f Fold) Count() int { return f.End - f.Start }

// Row is one entry of a plan: a record or a fold marker.
type Row struct {
	Kind RowKind
	// Index is the record index for RowLine and Fold.Start for RowFold.
	Index int
	Line  diff.LineRecord
	Fold  Fold
}

// Plan lays out res for display.
func Plan(res diff.Result, opts Options) []Row {
	rows := make([]Row, 0, len(res.Lines))
	if !opts.DiffOnly {
		for i, rec := range res.Lines {
			rows = append(rows, lineRow(i, rec))
		}
		return rows
	}

	keep := max(opts.ContextLines, 0)
	blocks := res.Blocks()
	lastChanged := -1
	hiddenFrom := -1

	flush := func(end int) {
		if hiddenFrom < 0 {
			return
		}
		f := Fold{
			ID:              hiddenFrom,
			Start:           hiddenFrom,
			End:             end,
			LeftLineNumber:  res.Lines[hiddenFrom].Left.LineNumber,
			RightLineNumber: res.Lines[hiddenFrom].Right.LineNumber,
		}
		if slices.Contains(opts.Expanded, f.ID) {
			for j := f.Start; j < f.End; j++ {
				rows = append(rows, lineRow(j, res.Lines[j]))
			}
		} else {
			rows = append(rows, Row{Kind: RowFold, Index: f.Start, Fold: f})
		}
		hiddenFrom = -1
	}

	for i, rec := range res.Lines {
		if rec.Changed() {
			lastChanged = i
			flush(i)
			rows = append(rows, lineRow(i, rec))
			continue
		}

		// An unchanged record is outside every block, so the nearest change
		// after it is the next block start.
		blocks.SkipBefore(i)
		next, hasNext := blocks.Peek()
		nearBefore := lastChanged >= 0 && i-lastChanged <= keep
		nearAfter := hasNext && next-i <= keep
		if nearBefore || nearAfter {
			flush(i)
			rows = append(rows, lineRow(i, rec))
			continue
		}
		if hiddenFrom < 0 {
			hiddenFrom = i
		}
	}
	flush(len(res.Lines))
	return rows
}

// Folds returns the fold markers of a plan.
func Folds(rows []Row) []Fold {
	var folds []Fold
	for _, r := range rows {
		if r.Kind == RowFold {
			folds = append(folds, r.Fold)
		}
	}
	return folds
}

func lineRow(i int, rec diff.LineRecord) Row {
	return Row{Kind: RowLine, Index: i, Line: rec}
}
