package extract

import (
	"strings"
	"unicode"
)

// titleKeywords are words that indicate a header line is a job title or
// document label rather than the candidate's name.
var titleKeywords = []string{"engineer", "developer", "guidelines", "resume", "cv", "profile", "software"}

// extractName scans the first lines of the resume for a 2-5 word capitalized
// line that is not a job title or document label.
func extractName(text string) string {
	lines := strings.Split(text, "\n")
	limit := len(lines)
	if limit > 10 {
		limit = 10
	}

	for i := 0; i < limit; i++ {
		cand := strings.TrimSpace(lines[i])
		if cand == "" || emailRE.MatchString(cand) {
			continue
		}

		words := strings.Fields(cand)
		if len(words) < 2 || len(words) > 5 {
			continue
		}

		capitalized := true
		for _, w := range words {
			r := []rune(w)
			if len(r) == 0 || !unicode.IsUpper(r[0]) {
				capitalized = false
				break
			}
		}
		if !capitalized || hasTitleKeyword(cand) {
			continue
		}

		return cand
	}
	return ""
}

func hasTitleKeyword(line string) bool {
	low := strings.ToLower(line)
	for _, kw := range titleKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// extractEmail returns the first email address found, or "".
func extractEmail(text string) string {
	return emailRE.FindString(text)
}

// extractPhone returns the first phone-looking token found, or "".
func extractPhone(text string) string {
	return strings.TrimSpace(phoneRE.FindString(text))
}
