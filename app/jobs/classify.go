package jobs

import (
	"strings"
)

// Category is a heuristic job-type classification.
type Category string

const (
	CategoryCybersecurity Category = "cybersecurity"
	CategorySales         Category = "sales"
	CategoryFinance       Category = "finance"
	CategoryHR            Category = "hr"
	CategorySoftware      Category = "software"
	CategoryUnknown       Category = "unknown"
)

// categoryKeywords is checked in fixed priority order: the first category
// with a matching keyword wins, so "HR Business Partner" lands in hr even
// though "partner" appears nowhere near software.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryCybersecurity, []string{
		"cybersecurity", "cyber security", "security engineer", "security analyst",
		"penetration test", "pentest", "infosec", "information security",
		"soc analyst", "threat", "vulnerability",
	}},
	{CategorySales, []string{
		"sales", "account executive", "account manager", "business development",
		"customer success", "pre-sales", "solution consultant",
	}},
	{CategoryFinance, []string{
		"finance", "financial", "accountant", "accounting", "auditor", "audit",
		"treasury", "payroll", "controller", "fp&a",
	}},
	{CategoryHR, []string{
		"hr ", " hr", "human resources", "recruiter", "recruiting", "recruitment",
		"talent acquisition", "people operations", "people partner",
		"hr business partner",
	}},
	{CategorySoftware, []string{
		"software", "developer", "engineer", "programmer", "devops", "backend",
		"frontend", "front end", "back end", "full stack", "fullstack", "sre",
		"data scientist", "machine learning", "qa ", "test automation",
	}},
}

// Classify assigns a job-type category from posting text. It is the single
// classifier used both for ingestion-time backfill and read-time filtering.
func Classify(title, description, location string) Category {
	text := strings.ToLower(title + " " + description + " " + location)
	// Pad so edge-anchored keywords like "hr " match at string boundaries
	text = " " + text + " "

	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(text, keyword) {
				return entry.category
			}
		}
	}

	return CategoryUnknown
}

var seniorMarkers = []string{
	"senior", "lead", "principal", "staff", "director", "head of", "chief", "vp",
}

// LooksSenior reports whether a title reads as a senior-level posting. Used
// only when the posting carries no explicit experience level.
func LooksSenior(title string) bool {
	lowered := " " + strings.ToLower(title) + " "
	for _, marker := range seniorMarkers {
		if strings.Contains(lowered, " "+marker) {
			return true
		}
	}
	return false
}
