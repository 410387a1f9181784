package diff

import (
	"strings"

	"github.com/zjrosen/sidediff/internal/tokenize"
)

// Method selects the granularity of intra-line comparison.
type Method string

const (
	MethodChars          Method = "chars"
	MethodWords          Method = "words"
	MethodWordsWithSpace Method = "words_with_space"
	MethodLines          Method = "lines"
	MethodTrimmedLines   Method = "trimmed_lines"
	MethodSentences      Method = "sentences"
	MethodCSS            Method = "css"
	MethodJSON           Method = "json"
)

// DefaultMethod is used for empty and unrecognized methods.
const DefaultMethod = MethodChars

// Methods lists every supported method in display order.
func Methods() []Method {
	return []Method{
		MethodChars,
		MethodWords,
		MethodWordsWithSpace,
		MethodLines,
		MethodTrimmedLines,
		MethodSentences,
		MethodCSS,
		MethodJSON,
	}
}

// ParseMethod resolves s case-insensitively, accepting both the method names
// and their jsdiff aliases ("diffWords"). Unknown input resolves to
// DefaultMethod with ok set to false.
func ParseMethod(s string) (m Method, ok bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, candidate := range Methods() {
		if key == string(candidate) {
			return candidate, true
		}
	}
	for candidate, name := range jsdiffNames {
		if key == strings.ToLower(name) {
			return candidate, true
		}
	}
	return DefaultMethod, false
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	for _, candidate := range Methods() {
		if m == candidate {
			return true
		}
	}
	return false
}

// Tokenizer returns the tokenizer for m, falling back to characters.
func (m Method) Tokenizer() tokenize.Tokenizer {
	switch m {
	case MethodWords:
		return tokenize.Words{}
	case MethodWordsWithSpace:
		return tokenize.WordsWithSpace{}
	case MethodLines:
		return tokenize.Lines{}
	case MethodTrimmedLines:
		return tokenize.TrimmedLines{}
	case MethodSentences:
		return tokenize.Sentences{}
	case MethodCSS:
		return tokenize.CSS{}
	case MethodJSON:
		return tokenize.JSON{}
	default:
		return tokenize.Chars{}
	}
}

// Alias returns the jsdiff function name for m, for example "diffWords",
// or "" for an unsupported method.
func (m Method) Alias() string {
	if !m.Valid() {
		return ""
	}
	return jsdiffNames[m]
}

// jsdiffNames maps each method to the jsdiff function of the same granularity.
var jsdiffNames = map[Method]string{
	MethodChars:          "diffChars",
	MethodWords:          "diffWords",
	MethodWordsWithSpace: "diffWordsWithSpace",
	MethodLines:          "diffLines",
	MethodTrimmedLines:   "diffTrimmedLines",
	MethodSentences:      "diffSentences",
	MethodCSS:            "diffCss",
	MethodJSON:           "diffJson",
}
