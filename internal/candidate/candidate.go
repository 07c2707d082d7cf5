package candidate

import "strings"

// NotFound marks a field the extractor looked for but could not locate.
// Absence is always recorded explicitly, never guessed.
const NotFound = ""

// Contact holds the ways to reach a candidate. Either field may be empty
// when the resume does not expose it.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Experience is a single employment entry. Months is zero when no duration
// could be derived from the source text.
type Experience struct {
	Role         string `json:"role"`
	Organization string `json:"organization,omitempty"`
	Months       int    `json:"months,omitempty"`
}

// Record is the structured form of one resume. ID is derived from the source
// file and is unique within a batch. Slice fields keep first-occurrence order
// from the source text; Skills are deduplicated case-insensitively.
type Record struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Contact      Contact      `json:"contact"`
	Skills       []string     `json:"skills"`
	Experience   []Experience `json:"experience"`
	Education    []string     `json:"education"`
	Achievements []string     `json:"achievements"`
}

// JobDescription is the reference a batch of candidates is ranked against.
// It is immutable once a run starts.
type JobDescription struct {
	Text           string   `json:"text"`
	RequiredSkills []string `json:"required_skills,omitempty"`
}

// DedupeSkills removes case-insensitive duplicates while keeping the first
// occurrence and its original casing.
func DedupeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// HasSkill reports whether the record lists the skill, case-insensitively.
func (r *Record) HasSkill(skill string) bool {
	for _, s := range r.Skills {
		if strings.EqualFold(s, skill) {
			return true
		}
	}
	return false
}

// ExperienceText flattens the experience entries into a single block used by
// the semantic scoring backend.
func (r *Record) ExperienceText() string {
	parts := make([]string, 0, len(r.Experience))
	for _, e := range r.Experience {
		line := e.Role
		if e.Organization != "" {
			line += " at " + e.Organization
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, "\n")
}
