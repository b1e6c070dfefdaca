package sensitive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora/internal/core/domain"
)

func detect(t *testing.T, text string) []domain.SensitiveMatch {
	t.Helper()
	matches, err := New().Detect(context.Background(), text)
	require.NoError(t, err)
	return matches
}

func findType(matches []domain.SensitiveMatch, patternType string) *domain.SensitiveMatch {
	for i := range matches {
		if matches[i].PatternType == patternType {
			return &matches[i]
		}
	}
	return nil
}

func TestDetect_SSN(t *testing.T) {
	matches := detect(t, "Applicant SSN: 123-45-6789 on file.")

	m := findType(matches, PatternSSN)
	require.NotNil(t, m)
	assert.Equal(t, "123-45-6789", m.MatchText)
	assert.InDelta(t, 0.9, m.Confidence, 0.001)
	assert.Contains(t, m.ContextBefore, "SSN:")
	assert.Contains(t, m.ContextAfter, "on file")
}

func TestDetect_CreditCardLuhn(t *testing.T) {
	// 4532015112830366 passes the Luhn check.
	valid := findType(detect(t, "Card 4532015112830366 was charged."), PatternCreditCard)
	require.NotNil(t, valid)
	assert.InDelta(t, 0.9, valid.Confidence, 0.001)

	// Same shape, broken checksum.
	invalid := findType(detect(t, "Card 4532015112830367 was charged."), PatternCreditCard)
	require.NotNil(t, invalid)
	assert.InDelta(t, 0.3, invalid.Confidence, 0.001)
}

func TestDetect_Email(t *testing.T) {
	m := findType(detect(t, "Contact jane.doe@example.org for details."), PatternEmail)
	require.NotNil(t, m)
	assert.Equal(t, "jane.doe@example.org", m.MatchText)
}

func TestDetect_Phone(t *testing.T) {
	m := findType(detect(t, "Call +380 44 123 45 67 tomorrow."), PatternPhone)
	require.NotNil(t, m)
	assert.Contains(t, m.MatchText, "+380")
}

func TestDetect_IBAN(t *testing.T) {
	m := findType(detect(t, "Pay to DE89370400440532013000 by Friday."), PatternIBAN)
	require.NotNil(t, m)
	assert.Equal(t, "DE89370400440532013000", m.MatchText)
}

func TestDetect_CleanText(t *testing.T) {
	assert.Empty(t, detect(t, "Nothing sensitive in this sentence."))
}

func TestDetect_Positions(t *testing.T) {
	text := "SSN 123-45-6789 here."
	m := findType(detect(t, text), PatternSSN)
	require.NotNil(t, m)
	assert.Equal(t, "123-45-6789", text[m.StartPos:m.EndPos])
}
