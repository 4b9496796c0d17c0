package quote_test

import (
	"os/exec"
	"testing"

	"github.com/arthur-debert/appbox/pkg/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		tier     quote.Tier
	}{
		{"safe word is untouched", "Firefox", "Firefox", quote.TierBare},
		{"safe punctuation is untouched", "a@b%c_d+e=f:g,h.i/j-k", "a@b%c_d+e=f:g,h.i/j-k", quote.TierBare},
		{"url is untouched", "https://example.com/app.zip", "https://example.com/app.zip", quote.TierBare},
		{"empty string is double quoted", "", `""`, quote.TierDouble},
		{"space is double quoted", "Google Chrome", `"Google Chrome"`, quote.TierDouble},
		{"semicolon is double quoted", "foo; rm -rf /", `"foo; rm -rf /"`, quote.TierDouble},
		{"single quote alone is double quoted", "it's", `"it's"`, quote.TierDouble},
		{"dollar is single quoted", "$HOME", `'$HOME'`, quote.TierSingle},
		{"backtick is single quoted", "a`id`b", "'a`id`b'", quote.TierSingle},
		{"double quote is single quoted", `say "hi"`, `'say "hi"'`, quote.TierSingle},
		{"quote and backtick are escaped", "it's`id`", "\"it's\\`id\\`\"", quote.TierEscaped},
		{"every dangerous byte is escaped", `'!"$\`, `"'\!\"\$\\"`, quote.TierEscaped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tier, quote.TierOf(tt.input))
			assert.Equal(t, tt.expected, quote.Quote(tt.input))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, `rm -rf "/Applications/My App.app"`, quote.Join("rm", "-rf", "/Applications/My App.app"))
	assert.Equal(t, "", quote.Join())
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "bare", quote.TierBare.String())
	assert.Equal(t, "escaped", quote.TierEscaped.String())
	assert.Equal(t, "unknown", quote.Tier(42).String())
}

// TestQuoteRoundTripsThroughShell feeds quoted words to a real shell and
// checks that printf receives the original bytes.
func TestQuoteRoundTripsThroughShell(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	words := []string{
		"plain",
		"",
		"foo; rm -rf /",
		"$(id)",
		"a`id`b",
		`say "hi"`,
		"it's",
		"it's $HOME",
		"it's`id`",
		"tab\there",
	}

	for _, w := range words {
		t.Run(w, func(t *testing.T) {
			out, err := exec.Command(sh, "-c", "printf '%s' "+quote.Quote(w)).Output()
			require.NoError(t, err)
			assert.Equal(t, w, string(out))
		})
	}
}

func TestQuoteKeepsBackslashBeforeBang(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	word := "it's done!"
	quoted := quote.Quote(word)
	assert.Equal(t, quote.TierEscaped, quote.TierOf(word))
	assert.Equal(t, `"it's done\!"`, quoted)

	// sh treats \! inside double quotes as two literal characters.
	out, err := exec.Command(sh, "-c", "printf '%s' "+quoted).Output()
	require.NoError(t, err)
	assert.Equal(t, `it's done\!`, string(out))
}
