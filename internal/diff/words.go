package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/sidediff/internal/tokenize"
)

// WordDiff compares two lines at the granularity selected by m. The old side
// holds TypeDefault and TypeRemoved tokens, the new side TypeDefault and
// TypeAdded tokens. Common tokens carry their own side's text, so joining
// each side reproduces its input even when the method treats different
// spellings (white space, trimmed lines) as equal. Adjacent tokens of the
// same type are merged.
func WordDiff(oldLine, newLine string, m Method) (left, right Tokens) {
	return wordDiff(oldLine, newLine, m, false)
}

func wordDiff(oldLine, newLine string, m Method, semantic bool) (left, right Tokens) {
	tok := m.Tokenizer()
	oldSide := newSideWriter(tok, tok.Split(oldLine))
	newSide := newSideWriter(tok, tok.Split(newLine))

	for _, e := range align(oldSide.keys, newSide.keys, semantic) {
		switch e.op {
		case diffmatchpatch.DiffEqual:
			oldSide.emit(TypeDefault, e.n)
			newSide.emit(TypeDefault, e.n)
		case diffmatchpatch.DiffDelete:
			oldSide.emit(TypeRemoved, e.n)
		case diffmatchpatch.DiffInsert:
			newSide.emit(TypeAdded, e.n)
		}
	}
	return oldSide.finish(), newSide.finish()
}

// sideWriter emits one side's tokens in order while the alignment only sees
// the significant ones.
type sideWriter struct {
	tokens []string
	keys   []string // keys of significant tokens
	index  []int    // position in tokens of each significant token
	next   int      // next significant token to emit
	pos    int      // next position in tokens not yet emitted
	out    Tokens
}

func newSideWriter(tok tokenize.Tokenizer, tokens []string) *sideWriter {
	skipper, _ := tok.(tokenize.Skipper)
	w := &sideWriter{tokens: tokens, out: Tokens{}}
	for i, t := range tokens {
		if skipper != nil && skipper.Skip(t) {
			continue
		}
		w.keys = append(w.keys, tok.Key(t))
		w.index = append(w.index, i)
	}
	return w
}

func (w *sideWriter) emit(t Type, n int) {
	for ; n > 0; n-- {
		at := w.index[w.next]
		w.flushSkipped(at)
		w.out = appendToken(w.out, t, w.tokens[at])
		w.pos = at + 1
		w.next++
	}
}

// flushSkipped reports skipped tokens before position until as unchanged.
func (w *sideWriter) flushSkipped(until int) {
	if until > w.pos {
		w.out = appendToken(w.out, TypeDefault, strings.Join(w.tokens[w.pos:until], ""))
		w.pos = until
	}
}

func (w *sideWriter) finish() Tokens {
	w.flushSkipped(len(w.tokens))
	return w.out
}

// appendToken appends text as a segment of type t, merging it into the
// previous segment when that has the same type.
func appendToken(segs Tokens, t Type, text string) Tokens {
	if text == "" {
		return segs
	}
	if last := len(segs) - 1; last >= 0 && segs[last].Type == t {
		segs[last].Value = segs[last].Value.(Text) + Text(text)
		return segs
	}
	return append(segs, Segment{Type: t, Value: Text(text)})
}
