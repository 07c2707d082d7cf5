package candidate

import (
	"reflect"
	"testing"
)

func TestDedupeSkills(t *testing.T) {
	got := DedupeSkills([]string{"Python", "  SQL ", "python", "", "Go", "sql"})
	want := []string{"Python", "SQL", "Go"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestHasSkill(t *testing.T) {
	r := &Record{Skills: []string{"Python", "SQL"}}

	if !r.HasSkill("python") {
		t.Fatal("expected a case-insensitive match")
	}
	if r.HasSkill("Go") {
		t.Fatal("expected no match for an unlisted skill")
	}
}

func TestExperienceText(t *testing.T) {
	r := &Record{Experience: []Experience{
		{Role: "Engineer", Organization: "Acme"},
		{Role: "Analyst"},
	}}

	want := "Engineer at Acme\nAnalyst"
	if got := r.ExperienceText(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
