package fold

import "github.com/zjrosen/sidediff/internal/diff"

// Summary counts records of a result by shape.
type Summary struct {
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Changed   int `json:"changed" yaml:"changed"` // paired removed/added records
	Removed   int `json:"removed" yaml:"removed"` // removed lines with no counterpart
	Added     int `json:"added" yaml:"added"`     // added lines with no counterpart
	Blocks    int `json:"blocks" yaml:"blocks"`
}

// Summarize counts the records of res.
func Summarize(res diff.Result) Summary {
	s := Summary{Blocks: len(res.DiffBlockStarts)}
	for _, rec := range res.Lines {
		switch {
		case !rec.Changed():
			s.Unchanged++
		case rec.Paired():
			s.Changed++
		case rec.Left.Type == diff.TypeRemoved:
			s.Removed++
		default:
			s.Added++
		}
	}
	return s
}

// Identical reports whether the result contains no changes.
func (s Summary) Identical() bool {
	return s.Changed == 0 && s.Removed == 0 && s.Added == 0
}
