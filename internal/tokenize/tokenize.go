// Package tokenize splits a single line of text into comparison tokens.
//
// Every Tokenizer guarantees that concatenating the tokens returned by Split
// reproduces the input exactly. Key returns the equality key used when two
// token sequences are aligned: tokens with equal keys are treated as common
// even when their text differs (for example two different whitespace runs
// under the word granularities).
package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer splits text into tokens and maps tokens to equality keys.
type Tokenizer interface {
	Split(s string) []string
	Key(token string) string
}

// Skipper is implemented by tokenizers whose formatting tokens take no part
// in alignment. Skipped tokens are reported as unchanged on their own side.
type Skipper interface {
	Skip(token string) bool
}

// whitespaceKey is the shared key for whitespace-insensitive comparisons.
const whitespaceKey = " "

// isBlank reports whether s is non-empty and made only of white space.
func isBlank(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// mergeBlank joins consecutive whitespace-only tokens into a single token.
func mergeBlank(tokens []string) []string {
	if len(tokens) < 2 {
		return tokens
	}
	out := tokens[:0:0]
	for _, tok := range tokens {
		if n := len(out); n > 0 && isBlank(tok) && isBlank(out[n-1]) {
			out[n-1] += tok
			continue
		}
		out = append(out, tok)
	}
	return out
}

// splitTrailingSpace cuts trailing white space off tok.
func splitTrailingSpace(tok string) (body, space string) {
	end := len(tok)
	for end > 0 {
		r, size := utf8.DecodeLastRuneInString(tok[:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return tok[:end], tok[end:]
}

// splitKeepingTerminator splits s after every "\n".
func splitKeepingTerminator(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for {
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			out = append(out, s)
			return out
		}
		out = append(out, s[:idx+1])
		s = s[idx+1:]
		if s == "" {
			return out
		}
	}
}
