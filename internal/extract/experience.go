package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Devanath2003/HR-Agent/internal/candidate"
)

var (
	yearRangeRE = regexp.MustCompile(`(\d{4})\s*[-–]\s*(\d{4}|[Pp]resent|[Cc]urrent|[Nn]ow)`)
	yearsRE     = regexp.MustCompile(`(\d+(?:\.\d+)?)\+?\s*(?:years?|yrs?)`)
	monthsRE    = regexp.MustCompile(`(\d+)\+?\s*months?`)
	parenRE     = regexp.MustCompile(`\s*\([^)]*\)\s*`)
)

// parseExperience turns raw experience lines into structured entries. The
// role/organization split follows the common "Role at Organization" form;
// lines without it keep the whole text as the role. Duration is derived from
// year ranges or explicit "N years"/"N months" mentions, with nowYear closing
// open-ended ranges.
func parseExperience(items []string, nowYear int) []candidate.Experience {
	out := make([]candidate.Experience, 0, len(items))
	for _, item := range items {
		months := durationMonths(item, nowYear)

		// Strip the parenthesized date range before splitting, so
		// "Engineer at Acme (2020-2023)" keeps a clean organization.
		base := strings.TrimSpace(parenRE.ReplaceAllString(item, " "))

		entry := candidate.Experience{Role: base, Months: months}
		if idx := strings.Index(base, " at "); idx > 0 {
			entry.Role = strings.TrimSpace(base[:idx])
			entry.Organization = strings.TrimSpace(base[idx+len(" at "):])
		}
		if entry.Role == "" {
			entry.Role = strings.TrimSpace(item)
		}
		out = append(out, entry)
	}
	return out
}

// durationMonths derives a duration in months from free text, returning zero
// when nothing parseable is present.
func durationMonths(text string, nowYear int) int {
	if m := yearRangeRE.FindStringSubmatch(text); m != nil {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			return 0
		}
		end := nowYear
		if y, err := strconv.Atoi(m[2]); err == nil {
			end = y
		}
		if end < start {
			return 0
		}
		return (end - start) * 12
	}
	if m := yearsRE.FindStringSubmatch(strings.ToLower(text)); m != nil {
		if years, err := strconv.ParseFloat(m[1], 64); err == nil {
			return int(years * 12)
		}
	}
	if m := monthsRE.FindStringSubmatch(strings.ToLower(text)); m != nil {
		if months, err := strconv.Atoi(m[1]); err == nil {
			return months
		}
	}
	return 0
}
