// Package quote turns arbitrary strings into tokens that a POSIX shell
// parses back into the original bytes.
//
// Every command line appbox hands to /bin/sh is assembled from tokens
// produced here, so a package name such as "foo; rm -rf /" reaches the
// shell as one literal word.
package quote

import "strings"

const (
	// safeChars may appear unquoted.
	safeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789@%_+=:,./-"

	// dangerousChars keep a special meaning inside double quotes.
	dangerousChars = "!\"`$\\"
)

// Tier identifies the quoting strategy applied to a word.
type Tier int

const (
	// TierBare leaves the word untouched.
	TierBare Tier = iota
	// TierDouble wraps the word in double quotes.
	TierDouble
	// TierSingle wraps the word in single quotes.
	TierSingle
	// TierEscaped wraps the word in double quotes and backslash-escapes
	// every dangerous byte.
	TierEscaped
)

// String returns the tier name used in logs
func (t Tier) String() string {
	switch t {
	case TierBare:
		return "bare"
	case TierDouble:
		return "double"
	case TierSingle:
		return "single"
	case TierEscaped:
		return "escaped"
	default:
		return "unknown"
	}
}

// TierOf reports which tier Quote applies to word.
func TierOf(word string) Tier {
	switch {
	case word != "" && onlyBytes(word, safeChars):
		return TierBare
	case !strings.ContainsAny(word, dangerousChars):
		return TierDouble
	case !strings.Contains(word, "'"):
		return TierSingle
	default:
		return TierEscaped
	}
}

// Quote returns word in a form safe to embed in a shell command line.
//
// Escaping in the last tier is byte-oriented: it only protects the
// single-byte metacharacters ! " ` $ and backslash. POSIX sh keeps the
// backslash of \! inside double quotes, so a word holding both ' and !
// reaches the shell with a backslash before each !. The result is still a
// single inert word.
func Quote(word string) string {
	switch TierOf(word) {
	case TierBare:
		return word
	case TierDouble:
		return `"` + word + `"`
	case TierSingle:
		return "'" + word + "'"
	}

	var b strings.Builder
	b.Grow(len(word) + 8)
	b.WriteByte('"')
	for i := 0; i < len(word); i++ {
		c := word[i]
		if strings.IndexByte(dangerousChars, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

// Join quotes every word and joins them with single spaces.
func Join(words ...string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = Quote(w)
	}
	return strings.Join(quoted, " ")
}

func onlyBytes(s, set string) bool {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(set, s[i]) < 0 {
			return false
		}
	}
	return true
}
