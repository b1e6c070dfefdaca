// Package sensitive detects personal-data patterns in chunk text.
// Detection is best effort and advisory; matches never block the
// pipeline.
package sensitive

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.SensitiveDetector = (*Detector)(nil)

// Pattern type labels stored with each match.
const (
	PatternSSN        = "ssn"
	PatternCreditCard = "credit_card"
	PatternEmail      = "email"
	PatternPhone      = "phone"
	PatternIBAN       = "iban"
)

// contextWindow is how many characters of surrounding text each match
// records on either side.
const contextWindow = 30

// Detector scans text with a fixed pattern set. Credit card numbers
// are additionally Luhn-checked and get lower confidence when the
// checksum fails.
type Detector struct{}

// New creates a new sensitive data detector.
func New() *Detector {
	return &Detector{}
}

type pattern struct {
	patternType string
	re          *regexp.Regexp
	confidence  float64
}

var patterns = []pattern{
	{PatternSSN, regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`), 0.9},
	{PatternCreditCard, regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`), 0.5},
	{PatternEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`), 0.95},
	{PatternPhone, regexp.MustCompile(`\+\d{1,3}[ .\-]?\(?\d{1,4}\)?[ .\-]?\d{2,4}[ .\-]?\d{2,4}[ .\-]?\d{0,4}`), 0.7},
	{PatternIBAN, regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`), 0.8},
}

// Detect returns every pattern match with its position and context.
// Chunk and document ids are left for the caller to assign.
func (d *Detector) Detect(_ context.Context, chunkText string) ([]domain.SensitiveMatch, error) {
	var matches []domain.SensitiveMatch

	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(chunkText, -1) {
			text := strings.TrimSpace(chunkText[loc[0]:loc[1]])
			confidence := p.confidence

			if p.patternType == PatternCreditCard {
				if luhnValid(text) {
					confidence = 0.9
				} else {
					confidence = 0.3
				}
			}

			matches = append(matches, domain.SensitiveMatch{
				PatternType:   p.patternType,
				MatchText:     text,
				Confidence:    confidence,
				StartPos:      loc[0],
				EndPos:        loc[1],
				ContextBefore: contextBefore(chunkText, loc[0]),
				ContextAfter:  contextAfter(chunkText, loc[1]),
			})
		}
	}

	return matches, nil
}

// luhnValid checks a candidate card number's checksum, ignoring spaces
// and dashes.
func luhnValid(text string) bool {
	var digits []int
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func contextBefore(text string, pos int) string {
	from := pos - contextWindow
	if from < 0 {
		from = 0
	}
	return text[from:pos]
}

func contextAfter(text string, pos int) string {
	to := pos + contextWindow
	if to > len(text) {
		to = len(text)
	}
	return text[pos:to]
}
