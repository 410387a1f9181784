package diff

import (
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// edit is one step of an alignment: n tokens that are common, deleted from
// the old sequence, or inserted from the new sequence.
type edit struct {
	op diffmatchpatch.Operation
	n  int
}

// encoder maps token keys to runes so go-diff can align whole tokens as if
// they were characters. Encoders are pooled; the map and rune buffers are
// reused across calls.
type encoder struct {
	ids      map[string]rune
	oldRunes []rune
	newRunes []rune
	next     int
}

var encoderPool = sync.Pool{
	New: func() any {
		return &encoder{ids: make(map[string]rune)}
	},
}

func getEncoder() *encoder {
	return encoderPool.Get().(*encoder)
}

func (e *encoder) release() {
	clear(e.ids)
	e.oldRunes = e.oldRunes[:0]
	e.newRunes = e.newRunes[:0]
	e.next = 0
	encoderPool.Put(e)
}

// surrogateMin and surrogateMax bound the UTF-16 surrogate range, which does
// not survive a []rune to string round trip and is skipped when assigning ids.
const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// encode returns the rune for key. Ids stay valid runes for up to 1,112,063
// distinct keys per call.
func (e *encoder) encode(key string) rune {
	if r, ok := e.ids[key]; ok {
		return r
	}
	r := rune(e.next + 1)
	if r >= surrogateMin {
		r += surrogateMax - surrogateMin + 1
	}
	e.next++
	e.ids[key] = r
	return r
}

// align computes a minimal edit script between two key sequences. Equal keys
// are common tokens. When several minimal scripts exist, edits are slid as
// far right as they go, so earlier common tokens stay aligned: "a b" against
// "a a b" keeps the first "a" common and marks the second as inserted.
func align(oldKeys, newKeys []string, semantic bool) []edit {
	if len(oldKeys) == 0 && len(newKeys) == 0 {
		return nil
	}

	e := getEncoder()
	defer e.release()

	for _, k := range oldKeys {
		e.oldRunes = append(e.oldRunes, e.encode(k))
	}
	for _, k := range newKeys {
		e.newRunes = append(e.newRunes, e.encode(k))
	}

	dmp := diffmatchpatch.New()
	// No deadline: a timed-out bisect would make output depend on machine load.
	dmp.DiffTimeout = 0

	diffs := dmp.DiffMainRunes(e.oldRunes, e.newRunes, false)
	if semantic {
		diffs = dmp.DiffCleanupSemantic(diffs)
	}
	return slideRight(toHunks(diffs))
}

// hunk is one stretch of common tokens followed by the tokens deleted from
// and inserted into the old sequence before the next common stretch.
type hunk struct {
	common   []rune
	del, ins []rune
}

func (h *hunk) changed() bool { return len(h.del) > 0 || len(h.ins) > 0 }

// toHunks groups diffs into hunks. go-diff may interleave deletes and inserts
// between two equalities; only their order within a side matters.
func toHunks(diffs []diffmatchpatch.Diff) []hunk {
	hunks := []hunk{{}}
	for _, d := range diffs {
		r := []rune(d.Text)
		if len(r) == 0 {
			continue
		}
		cur := &hunks[len(hunks)-1]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			if cur.changed() {
				hunks = append(hunks, hunk{})
				cur = &hunks[len(hunks)-1]
			}
			cur.common = append(cur.common, r...)
		case diffmatchpatch.DiffDelete:
			cur.del = append(cur.del, r...)
		case diffmatchpatch.DiffInsert:
			cur.ins = append(cur.ins, r...)
		}
	}
	return hunks
}

// slideRight moves each run of edits past the following common tokens while
// that keeps the script valid and equally short. A token leaves the front of
// the next common stretch, joins the back of every non-empty edited side, and
// the token the edits started with becomes common with the previous stretch.
// That requires both edited sides to start with the token being passed.
// Hunks whose common stretch empties out are merged with their successor.
func slideRight(hunks []hunk) []edit {
	for i := 0; i < len(hunks)-1; i++ {
		cur, next := &hunks[i], &hunks[i+1]
		for cur.changed() && len(next.common) > 0 && canSlide(cur, next.common[0]) {
			tok := next.common[0]
			cur.common = append(cur.common, tok)
			if len(cur.del) > 0 {
				cur.del = append(cur.del[1:len(cur.del):len(cur.del)], tok)
			}
			if len(cur.ins) > 0 {
				cur.ins = append(cur.ins[1:len(cur.ins):len(cur.ins)], tok)
			}
			next.common = next.common[1:]
		}
		if len(next.common) == 0 {
			next.common = cur.common
			next.del = append(cur.del[:len(cur.del):len(cur.del)], next.del...)
			next.ins = append(cur.ins[:len(cur.ins):len(cur.ins)], next.ins...)
			*cur = hunk{}
		}
	}

	edits := make([]edit, 0, 3*len(hunks))
	for _, h := range hunks {
		edits = appendEdit(edits, diffmatchpatch.DiffEqual, len(h.common))
		edits = appendEdit(edits, diffmatchpatch.DiffDelete, len(h.del))
		edits = appendEdit(edits, diffmatchpatch.DiffInsert, len(h.ins))
	}
	return edits
}

func canSlide(h *hunk, tok rune) bool {
	if len(h.del) > 0 && h.del[0] != tok {
		return false
	}
	if len(h.ins) > 0 && h.ins[0] != tok {
		return false
	}
	return true
}

func appendEdit(edits []edit, op diffmatchpatch.Operation, n int) []edit {
	if n == 0 {
		return edits
	}
	if last := len(edits) - 1; last >= 0 && edits[last].op == op {
		edits[last].n += n
		return edits
	}
	return append(edits, edit{op: op, n: n})
}
