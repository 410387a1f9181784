package diff

// classifier turns a line script into records. Each side keeps its own line
// counter, which only advances for lines that exist on that side.
type classifier struct {
	opts    Options
	method  Method
	left    int
	right   int
	records []LineRecord
}

func newClassifier(opts Options, capacity int) *classifier {
	method := opts.CompareMethod
	if !method.Valid() {
		method = DefaultMethod
	}
	return &classifier{
		opts:    opts,
		method:  method,
		left:    opts.LinesOffset,
		right:   opts.LinesOffset,
		records: make([]LineRecord, 0, capacity),
	}
}

// classify walks runs in order. A removed run immediately followed by an
// added run (or the reverse) is paired position by position; lines past the
// shorter run are reported alone. Pairing only looks at the script, so a
// reordered line is paired with whatever sits at its position.
func (c *classifier) classify(runs []Run) []LineRecord {
	for i := 0; i < len(runs); i++ {
		run := runs[i]
		if run.Op == RunCommon {
			c.common(run.Lines)
			continue
		}
		if i+1 < len(runs) && isOpposite(run.Op, runs[i+1].Op) {
			removed, added := run.Lines, runs[i+1].Lines
			if run.Op == RunAdded {
				removed, added = added, run.Lines
			}
			c.paired(removed, added)
			i++
			continue
		}
		if run.Op == RunRemoved {
			c.removed(run.Lines)
		} else {
			c.added(run.Lines)
		}
	}
	return c.records
}

func isOpposite(a, b RunOp) bool {
	return (a == RunRemoved && b == RunAdded) || (a == RunAdded && b == RunRemoved)
}

func (c *classifier) common(lines []string) {
	for _, line := range lines {
		c.left++
		c.right++
		c.records = append(c.records, LineRecord{
			Left:  Segment{Type: TypeDefault, Value: Text(line), LineNumber: c.left},
			Right: Segment{Type: TypeDefault, Value: Text(line), LineNumber: c.right},
		})
	}
}

func (c *classifier) paired(removed, added []string) {
	n := min(len(removed), len(added))
	for i := 0; i < n; i++ {
		c.left++
		c.right++
		var leftValue, rightValue Value = Text(removed[i]), Text(added[i])
		if !c.opts.DisableWordDiff {
			leftValue, rightValue = wordDiff(removed[i], added[i], c.method, c.opts.SemanticCleanup)
		}
		c.records = append(c.records, LineRecord{
			Left:  Segment{Type: TypeRemoved, Value: leftValue, LineNumber: c.left},
			Right: Segment{Type: TypeAdded, Value: rightValue, LineNumber: c.right},
		})
	}
	c.removed(removed[n:])
	c.added(added[n:])
}

func (c *classifier) removed(lines []string) {
	for _, line := range lines {
		c.left++
		c.records = append(c.records, LineRecord{
			Left:  Segment{Type: TypeRemoved, Value: Text(line), LineNumber: c.left},
			Right: placeholder(),
		})
	}
}

func (c *classifier) added(lines []string) {
	for _, line := range lines {
		c.right++
		c.records = append(c.records, LineRecord{
			Left:  placeholder(),
			Right: Segment{Type: TypeAdded, Value: Text(line), LineNumber: c.right},
		})
	}
}

// placeholder stands in for the side a line is missing from.
func placeholder() Segment {
	return Segment{Type: TypeDefault, Value: Text(""), Missing: true}
}
