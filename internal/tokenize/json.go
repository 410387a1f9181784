package tokenize

import (
	"unicode"
	"unicode/utf8"
)

// JSON tokenizes serialized JSON lexically: strings (with escapes), numbers,
// the literals true/false/null, the structural characters { } [ ] : , and
// white space runs. Lines are usually fragments of a larger document, so the
// input does not have to be a complete JSON value; bytes that fit no JSON
// token are grouped into runs. Formatting is ignored: white space runs are
// skipped during alignment.
type JSON struct{}

func (JSON) Split(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	for i := 0; i < len(s); {
		n := jsonTokenLen(s[i:])
		tokens = append(tokens, s[i:i+n])
		i += n
	}
	return tokens
}

func (JSON) Key(token string) string { return token }

func (JSON) Skip(token string) bool { return isBlank(token) }

// jsonTokenLen returns the byte length of the token at the start of s.
func jsonTokenLen(s string) int {
	r, size := utf8.DecodeRuneInString(s)
	switch {
	case r == '"':
		return jsonStringLen(s)
	case r == '{' || r == '}' || r == '[' || r == ']' || r == ':' || r == ',':
		return 1
	case unicode.IsSpace(r):
		return runLen(s, unicode.IsSpace)
	case r == '-' || (r >= '0' && r <= '9'):
		return runLen(s, isNumberRune)
	case r >= 'a' && r <= 'z':
		return runLen(s, isLiteralRune)
	}
	if n := runLen(s, isOtherRune); n > 0 {
		return n
	}
	return size
}

// jsonStringLen returns the length of the quoted string at the start of s,
// or len(s) for an unterminated string.
func jsonStringLen(s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(s)
}

func runLen(s string, keep func(rune) bool) int {
	n := 0
	for n < len(s) {
		r, size := utf8.DecodeRuneInString(s[n:])
		if !keep(r) {
			break
		}
		n += size
	}
	return n
}

func isNumberRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == '-' || r == '+' || r == '.' || r == 'e' || r == 'E'
}

func isLiteralRune(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isOtherRune(r rune) bool {
	switch r {
	case '"', '{', '}', '[', ']', ':', ',':
		return false
	}
	return !unicode.IsSpace(r) && r != '-' && (r < '0' || r > '9') && (r < 'a' || r > 'z')
}
