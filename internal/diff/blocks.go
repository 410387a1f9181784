package diff

// BlockStarts returns the index of the first record of every maximal run of
// changed records, in ascending order.
func BlockStarts(lines []LineRecord) []int {
	starts := []int{}
	open := false
	for i, rec := range lines {
		changed := rec.Changed()
		if changed && !open {
			starts = append(starts, i)
		}
		open = changed
	}
	return starts
}

// BlockCursor walks block starts from left to right. It replaces a shared
// "consume the first entry" list: each caller holds its own cursor and the
// underlying starts are never modified.
type BlockCursor struct {
	starts []int
	pos    int
}

// NewBlockCursor returns a cursor positioned before the first start.
func NewBlockCursor(starts []int) *BlockCursor {
	return &BlockCursor{starts: starts}
}

// Peek returns the next start without consuming it.
func (c *BlockCursor) Peek() (int, bool) {
	if c == nil || c.pos >= len(c.starts) {
		return 0, false
	}
	return c.starts[c.pos], true
}

// Next consumes and returns the next start.
func (c *BlockCursor) Next() (int, bool) {
	start, ok := c.Peek()
	if ok {
		c.pos++
	}
	return start, ok
}

// SkipBefore consumes every start lower than index.
func (c *BlockCursor) SkipBefore(index int) {
	for {
		start, ok := c.Peek()
		if !ok || start >= index {
			return
		}
		c.pos++
	}
}

// Remaining returns the starts not yet consumed. The slice must not be modified.
func (c *BlockCursor) Remaining() []int {
	if c == nil || c.pos >= len(c.starts) {
		return nil
	}
	return c.starts[c.pos:]
}

// Len returns the number of starts not yet consumed.
func (c *BlockCursor) Len() int {
	return len(c.Remaining())
}
