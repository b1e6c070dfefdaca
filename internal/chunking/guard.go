package chunking

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Patterns that must never be split across chunks. Matched in list
// order, left to right, non-overlapping.
var protectedPatterns = []*regexp.Regexp{
	// Page markers: === PAGE 1 START ===, === PAGE 1 END ===
	regexp.MustCompile(`=== PAGE \d+ (?:START|END) ===`),

	// Table blocks: === TABLE 1 === ... === END TABLE 1 ===
	regexp.MustCompile(`(?s)=== TABLE \d+ ===.*?=== END TABLE \d+ ===`),

	// Phone numbers - US format
	regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),

	// Phone numbers - Ukrainian format (+380 XX XXX XX XX)
	regexp.MustCompile(`\+380\s?\d{2}\s?\d{3}\s?\d{2}\s?\d{2}`),

	// Phone numbers - international format
	regexp.MustCompile(`\+\d{1,4}[\s.-]?\d{1,5}[\s.-]?\d{1,5}[\s.-]?\d{1,9}`),
}

// placeholderPattern matches generated placeholder tokens. The
// character-slice fallback treats these as indivisible.
var placeholderPattern = regexp.MustCompile(`__PROTECTED_[0-9a-f]+_\d+__`)

// replacement records one protected span.
type replacement struct {
	placeholder string
	original    string
}

// guard performs reversible placeholder substitution for protected
// spans. Placeholders carry a per-guard uuid nonce so that source text
// containing a literal placeholder-shaped string cannot collide with a
// generated token and corrupt restoration.
type guard struct {
	nonce        string
	replacements []replacement
}

func newGuard() *guard {
	return &guard{nonce: uuid.NewString()[:8]}
}

// protect replaces every protected span with a unique placeholder and
// records the mapping for restore.
func (g *guard) protect(text string) string {
	for _, re := range protectedPatterns {
		var b strings.Builder
		rest := text
		for {
			loc := re.FindStringIndex(rest)
			if loc == nil {
				break
			}
			ph := g.placeholder()
			g.replacements = append(g.replacements, replacement{
				placeholder: ph,
				original:    rest[loc[0]:loc[1]],
			})
			b.WriteString(rest[:loc[0]])
			b.WriteString(ph)
			rest = rest[loc[1]:]
		}
		b.WriteString(rest)
		text = b.String()
	}
	return text
}

// restore replaces every placeholder present in text with its original
// span. Placeholders not present are ignored, so restore can run on
// individual chunks of the protected text.
func (g *guard) restore(text string) string {
	for _, r := range g.replacements {
		text = strings.ReplaceAll(text, r.placeholder, r.original)
	}
	return text
}

// count returns the number of protected spans.
func (g *guard) count() int {
	return len(g.replacements)
}

func (g *guard) placeholder() string {
	return fmt.Sprintf("__PROTECTED_%s_%d__", g.nonce, len(g.replacements))
}
