package extract

import (
	"regexp"
	"strings"
)

// Section names recognized in resumes.
const (
	SectionSkills       = "skills"
	SectionExperience   = "experience"
	SectionEducation    = "education"
	SectionAchievements = "achievements"
)

// fieldHeadings maps a section to the heading variants resumes use for it.
// All variants must be lowercase.
var fieldHeadings = map[string][]string{
	SectionSkills:       {"skills", "technical skills", "skillset", "core competencies"},
	SectionExperience:   {"experience", "work experience", "professional experience", "employment history", "work history"},
	SectionEducation:    {"education", "academic qualifications", "academic", "education & qualifications"},
	SectionAchievements: {"achievements", "awards", "honors", "accomplishments", "certifications"},
}

var (
	inlineSplitRE  = regexp.MustCompile(`[,|;/]`)
	bulletStartRE  = regexp.MustCompile(`^[-•*]\s*`)
	listMarkerRE   = regexp.MustCompile(`^\s*(\d+\.|[a-zA-Z]\)|[ivx]+\.)\s*`)
	blankRunRE     = regexp.MustCompile(`\n{3,}`)
	whitespaceRE   = regexp.MustCompile(`\s+`)
	emailRE        = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRE        = regexp.MustCompile(`\+?\d[\d\s\-()]{8,}\d`)
)

// normalize fixes newlines, non-breaking spaces and runs of blank lines so
// the section scanners see a predictable shape.
func normalize(text string) string {
	t := strings.ReplaceAll(text, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")
	t = strings.ReplaceAll(t, " ", " ")
	t = blankRunRE.ReplaceAllString(t, "\n\n")
	return strings.TrimSpace(t)
}

// findInline matches the one-line form "Skills: Python, Java | C++" and
// returns the text after the separator.
func findInline(text string, variants []string) string {
	for _, h := range variants {
		re := regexp.MustCompile(`(?im)\b` + regexp.QuoteMeta(h) + `[ \t]*[:\-][ \t]*(.+)`)
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		captured := strings.TrimSpace(strings.SplitN(m[1], "\n", 2)[0])
		if captured != "" {
			return captured
		}
	}
	return ""
}

// findBlock locates a heading line and collects the indented or bulleted
// lines beneath it, stopping at a blank line or the next known heading.
func findBlock(text string, variants []string) string {
	alts := make([]string, len(variants))
	for i, h := range variants {
		alts[i] = regexp.QuoteMeta(h)
	}
	re := regexp.MustCompile(`(?im)^ *(` + strings.Join(alts, "|") + `)\b.*`)
	loc := re.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	var collected []string
	lines := strings.Split(strings.TrimSpace(text[loc[1]:]), "\n")

	var otherHeadings []string
	for section, hs := range fieldHeadings {
		_ = section
		for _, h := range hs {
			if !containsFold(variants, h) {
				otherHeadings = append(otherHeadings, h)
			}
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(collected) > 0 {
				break
			}
			continue
		}
		low := strings.ToLower(strings.TrimSpace(line))
		stop := false
		for _, h := range otherHeadings {
			if strings.HasPrefix(low, h) {
				stop = true
				break
			}
		}
		if stop {
			break
		}
		collected = append(collected, line)
		if len(collected) >= 30 {
			break
		}
	}
	return strings.TrimSpace(strings.Join(collected, "\n"))
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

// parseInlineList splits "Python, Java | C++" into items.
func parseInlineList(raw string) []string {
	parts := inlineSplitRE.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseBlockList strips bullets and list markers, splitting lines that carry
// several comma-separated items.
func parseBlockList(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		ln := bulletStartRE.ReplaceAllString(line, "")
		ln = strings.TrimSpace(listMarkerRE.ReplaceAllString(ln, ""))
		if ln == "" {
			continue
		}
		if inlineSplitRE.MatchString(ln) {
			out = append(out, parseInlineList(ln)...)
			continue
		}
		out = append(out, ln)
	}
	return out
}

// cleanList normalizes whitespace, trims trailing punctuation and removes
// case-insensitive duplicates while keeping first-occurrence order.
func cleanList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		norm := strings.Trim(whitespaceRE.ReplaceAllString(strings.TrimSpace(it), " "), ".;,:")
		if norm == "" {
			continue
		}
		key := strings.ToLower(norm)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, norm)
	}
	return out
}
