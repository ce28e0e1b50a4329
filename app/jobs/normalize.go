package jobs

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var titleFolder = cases.Fold()

// Tokens stripped from titles before signature matching. A "Senior Backend
// Engineer (Remote, Full-Time)" and a "Backend Engineer" posting from the
// same company describe the same underlying opening.
var titleStopTokens = map[string]struct{}{
	// Seniority
	"senior": {}, "sr": {}, "junior": {}, "jr": {}, "mid": {}, "lead": {},
	"principal": {}, "staff": {},
	"i": {}, "ii": {}, "iii": {}, "iv": {}, "v": {},
	// Work mode
	"remote": {}, "hybrid": {}, "onsite": {},
	// Employment type
	"full-time": {}, "fulltime": {}, "part-time": {}, "parttime": {},
	"contract": {}, "temporary": {},
}

// NormalizeTitle lowercases a job title, strips seniority, work-mode and
// employment-type tokens along with punctuation (space and hyphen survive),
// and collapses whitespace.
func NormalizeTitle(title string) string {
	folded := titleFolder.String(title)

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := titleStopTokens[token]; stop {
			continue
		}
		kept = append(kept, token)
	}

	return strings.Join(kept, " ")
}

// FoldCompany case-folds a company name for signature matching.
func FoldCompany(company string) string {
	return titleFolder.String(strings.TrimSpace(company))
}
