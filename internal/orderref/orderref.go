// Package orderref extracts the canonical OS-<digits> order reference from
// free-form text. Input frequently originates from Japanese-locale systems
// (Shopify notes, vendor CSV rows) where full-width digits, letters and
// punctuation are used interchangeably with their half-width forms.
package orderref

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// tokenPattern matches an OS token: "O", optional whitespace, "S", zero or
// more separators (whitespace plus the hyphen/dash variants vendors actually
// type, including the katakana prolonged sound mark), then the digit run.
// The token must be bounded by non-alphanumerics or the string edges so that
// e.g. "BOSS123" never matches.
var tokenPattern = regexp.MustCompile(`(?:^|[^0-9A-Za-z])O\s*S[\s\x{2010}\x{2011}\x{2012}\x{2013}\x{2014}\x{2212}\x{30FC}\x{FF70}-]*([0-9]+)(?:[^0-9A-Za-z]|$)`)

// Extract returns the canonical "OS-<digits>" reference found in text,
// scanning left to right, or ok=false when no token is present. A miss is an
// expected outcome, not an error.
func Extract(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	// Fold full-width variants (０-９, ｏｓ, －, （）…) to half-width before
	// matching. width.Fold covers letters, digits and the punctuation used
	// as separators and parentheses.
	folded := width.Fold.String(text)
	folded = strings.ToUpper(folded)

	m := tokenPattern.FindStringSubmatch(folded)
	if m == nil {
		return "", false
	}
	// The digit run is kept verbatim: no re-padding, no truncation.
	return "OS-" + m[1], true
}

// FromCandidates returns the first successful extraction across texts in
// input order, skipping empty entries.
func FromCandidates(texts ...string) (string, bool) {
	for _, t := range texts {
		if ref, ok := Extract(t); ok {
			return ref, true
		}
	}
	return "", false
}
