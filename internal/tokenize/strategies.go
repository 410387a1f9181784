package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
	"github.com/rivo/uniseg"
)

// Chars tokenizes into grapheme clusters, so a combining sequence or an emoji
// with modifiers is compared as one unit.
type Chars struct{}

func (Chars) Split(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, len(s))
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.StepString(s, state)
		tokens = append(tokens, cluster)
	}
	return tokens
}

func (Chars) Key(token string) string { return token }

// Words tokenizes on UAX #29 word boundaries. Whitespace runs are one token
// and compare equal to any other whitespace run.
type Words struct{}

func (Words) Split(s string) []string { return splitWords(s) }

func (Words) Key(token string) string {
	if isBlank(token) {
		return whitespaceKey
	}
	return token
}

// WordsWithSpace tokenizes like Words but compares whitespace exactly.
type WordsWithSpace struct{}

func (WordsWithSpace) Split(s string) []string { return splitWords(s) }

func (WordsWithSpace) Key(token string) string { return token }

func splitWords(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	iter := words.FromString(s)
	for iter.Next() {
		tokens = append(tokens, iter.Value())
	}
	return mergeBlank(tokens)
}

// Lines treats each line, terminator included, as a token.
type Lines struct{}

func (Lines) Split(s string) []string { return splitKeepingTerminator(s) }

func (Lines) Key(token string) string { return token }

// TrimmedLines compares lines ignoring leading and trailing white space.
type TrimmedLines struct{}

func (TrimmedLines) Split(s string) []string { return splitKeepingTerminator(s) }

func (TrimmedLines) Key(token string) string { return strings.TrimSpace(token) }

// Sentences tokenizes on UAX #29 sentence boundaries. The white space that
// follows a sentence is emitted as its own token.
type Sentences struct{}

func (Sentences) Split(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	iter := sentences.FromString(s)
	for iter.Next() {
		body, space := splitTrailingSpace(iter.Value())
		if body != "" {
			tokens = append(tokens, body)
		}
		if space != "" {
			tokens = append(tokens, space)
		}
	}
	return mergeBlank(tokens)
}

func (Sentences) Key(token string) string { return token }

// CSS tokenizes style sheet text: each of { } : ; , is a token, white space
// runs are tokens, and anything in between is one token.
type CSS struct{}

func (CSS) Split(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	start := 0
	flush := func(end int) {
		if end > start {
			tokens = append(tokens, s[start:end])
		}
		start = end
	}
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case strings.ContainsRune("{}:;,", r):
			flush(i)
			flush(i + size)
		case unicode.IsSpace(r):
			flush(i)
			j := i + size
			for j < len(s) {
				r2, size2 := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += size2
			}
			flush(j)
			i = j
			continue
		}
		i += size
	}
	flush(len(s))
	return tokens
}

func (CSS) Key(token string) string { return token }
