package diff

import "github.com/sergi/go-diff/diffmatchpatch"

// RunOp tags a run of the line edit script.
type RunOp int

const (
	RunCommon  RunOp = iota // lines present in both texts
	RunRemoved              // lines present only in the old text
	RunAdded                // lines present only in the new text
)

func (op RunOp) String() string {
	switch op {
	case RunCommon:
		return "common"
	case RunRemoved:
		return "removed"
	case RunAdded:
		return "added"
	default:
		return "unknown"
	}
}

// Run is a maximal group of consecutive lines with the same RunOp.
type Run struct {
	Op    RunOp
	Lines []string
}

// LineScript aligns two line sequences. Concatenating the Lines of all
// non-added runs reproduces old, and of all non-removed runs reproduces new.
// Lines are compared by exact string equality.
func LineScript(oldLines, newLines []string) []Run {
	edits := align(oldLines, newLines, false)

	runs := make([]Run, 0, len(edits))
	var oi, ni int
	for _, e := range edits {
		switch e.op {
		case diffmatchpatch.DiffEqual:
			runs = append(runs, Run{Op: RunCommon, Lines: oldLines[oi : oi+e.n : oi+e.n]})
			oi += e.n
			ni += e.n
		case diffmatchpatch.DiffDelete:
			runs = append(runs, Run{Op: RunRemoved, Lines: oldLines[oi : oi+e.n : oi+e.n]})
			oi += e.n
		case diffmatchpatch.DiffInsert:
			runs = append(runs, Run{Op: RunAdded, Lines: newLines[ni : ni+e.n : ni+e.n]})
			ni += e.n
		}
	}
	return runs
}
