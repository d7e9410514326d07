package security

import (
	"fmt"
	"regexp"
	"strings"
)

// Masking patterns for common PII shapes.
var (
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	cardPattern     = regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)
	ssnPattern      = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	phonePattern    = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	phoneAltPattern = regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.]?\d{4}\b`)
)

// Policy screens memory text against privacy rules before it reaches the
// store: blocked keywords, PII masking, and an optional retention window.
type Policy struct {
	blockedKeywords map[string]bool
	retentionDays   int
	maskSensitive   bool
}

// NewPolicy builds a policy. Zero retentionDays disables retention purging.
func NewPolicy(blockedKeywords []string, retentionDays int, maskSensitive bool) *Policy {
	p := &Policy{
		blockedKeywords: map[string]bool{},
		retentionDays:   retentionDays,
		maskSensitive:   maskSensitive,
	}
	for _, kw := range blockedKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			p.blockedKeywords[kw] = true
		}
	}
	return p
}

// RetentionDays returns the retention window, zero meaning unlimited.
func (p *Policy) RetentionDays() int {
	return p.retentionDays
}

// BlockedKeywordCount returns the number of active blocked keywords.
func (p *Policy) BlockedKeywordCount() int {
	return len(p.blockedKeywords)
}

// Screen rejects text containing any blocked keyword. The field name makes
// the error actionable.
func (p *Policy) Screen(field, text string) error {
	lower := strings.ToLower(text)
	for kw := range p.blockedKeywords {
		if strings.Contains(lower, kw) {
			return fmt.Errorf("%s contains blocked keyword: %s", field, kw)
		}
	}
	return nil
}

// Sanitize masks common PII patterns (emails, card numbers, SSNs, phone
// numbers) when masking is enabled. Card matching runs before phone matching
// so 16-digit groups are not half-eaten as phone numbers.
func (p *Policy) Sanitize(text string) string {
	if !p.maskSensitive || text == "" {
		return text
	}
	text = emailPattern.ReplaceAllString(text, "[EMAIL]")
	text = cardPattern.ReplaceAllString(text, "[CARD]")
	text = ssnPattern.ReplaceAllString(text, "[SSN]")
	text = phonePattern.ReplaceAllString(text, "[PHONE]")
	text = phoneAltPattern.ReplaceAllString(text, "[PHONE]")
	return text
}
