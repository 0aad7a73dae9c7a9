package variables

import (
	"regexp"
	"sort"
	"strings"
)

// Token describes one entry of the template variable vocabulary.
type Token struct {
	Name  string   `json:"name"`
	Paths []string `json:"paths"` // record paths tried in order
	Date  bool     `json:"date,omitempty"`
}

var vocabulary = []Token{
	{Name: "student_name", Paths: []string{"student_name", "student.full_name", "full_name"}},
	{Name: "student_first_name", Paths: []string{"student_first_name", "student.first_name", "first_name"}},
	{Name: "student_last_name", Paths: []string{"student_last_name", "student.last_name", "last_name"}},
	{Name: "student_cin", Paths: []string{"student_cin", "student.cin", "cin"}},
	{Name: "student_email", Paths: []string{"student_email", "student.email", "email"}},
	{Name: "student_phone", Paths: []string{"student_phone", "student.phone", "phone"}},
	{Name: "student_birth_date", Paths: []string{"student_birth_date", "student.birth_date", "birth_date"}, Date: true},
	{Name: "student_birth_place", Paths: []string{"student_birth_place", "student.birth_place", "birth_place"}},
	{Name: "student_photo", Paths: []string{"student_photo", "student.photo_url", "profile_image_url"}},
	{Name: "formation_title", Paths: []string{"formation_title", "formation.title"}},
	{Name: "formation_level", Paths: []string{"formation_level", "formation.level"}},
	{Name: "formation_duration", Paths: []string{"formation_duration", "formation.duration_hours", "duration_hours"}},
	{Name: "session_title", Paths: []string{"session_title", "session.title"}},
	{Name: "session_location", Paths: []string{"session_location", "session.location", "session.city"}},
	{Name: "session_start_date", Paths: []string{"session_start_date", "session.start_date"}, Date: true},
	{Name: "session_end_date", Paths: []string{"session_end_date", "session.end_date"}, Date: true},
	{Name: "completion_date", Paths: []string{"completion_date", "certificate.completion_date"}, Date: true},
	{Name: "issued_date", Paths: []string{"issued_date", "issued_at", "certificate.issued_at"}, Date: true},
	{Name: "certificate_number", Paths: []string{"certificate_number", "certificate.number"}},
	{Name: "grade", Paths: []string{"grade", "certificate.grade"}},
	{Name: "organization_name", Paths: []string{"organization_name", "organization.name"}},
	{Name: "organization_logo", Paths: []string{"organization_logo", "organization.logo_url"}},
	{Name: "signature_url", Paths: []string{"signature_url", "organization.signature_url"}},
	{Name: "verification_url", Paths: []string{"verification_url", "certificate.verification_url"}},
}

var byName = func() map[string]Token {
	m := make(map[string]Token, len(vocabulary))
	for _, t := range vocabulary {
		m[t.Name] = t
	}
	return m
}()

// Vocabulary returns the known tokens sorted by name.
func Vocabulary() []Token {
	out := make([]Token, len(vocabulary))
	copy(out, vocabulary)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// tokenRE matches any brace pair without nested braces. Names are trimmed,
// so "{ student_name }" resolves like "{student_name}" and an unknown name
// such as "{student-name}" still substitutes to its record value or nothing.
var tokenRE = regexp.MustCompile(`\{[^{}]*\}`)

// Substitute replaces every {token} in text with its value from rec, using
// the French locale for dates. Unresolvable tokens become empty strings.
func Substitute(text string, rec Record, dateFormat string) string {
	return Substituter{Locale: French}.Substitute(text, rec, dateFormat)
}

// IsSingleToken reports whether s, ignoring surrounding space, is exactly one
// {token}.
func IsSingleToken(s string) bool {
	s = strings.TrimSpace(s)
	loc := tokenRE.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}

// Substituter resolves tokens with a configurable locale.
type Substituter struct {
	Locale Locale
}

// Substitute replaces every occurrence of every token.
func (s Substituter) Substitute(text string, rec Record, dateFormat string) string {
	if !strings.Contains(text, "{") {
		return text
	}
	return tokenRE.ReplaceAllStringFunc(text, func(m string) string {
		return s.Resolve(strings.TrimSpace(m[1:len(m)-1]), rec, dateFormat)
	})
}

// Resolve returns the value of a single token name.
func (s Substituter) Resolve(name string, rec Record, dateFormat string) string {
	if tok, ok := byName[name]; ok {
		v, found := first(rec, tok.Paths)
		if !found && tok.Name == "student_name" {
			return fullName(rec)
		}
		if !found {
			return ""
		}
		if tok.Date {
			return s.Locale.FormatDate(v, dateFormat)
		}
		return Stringify(v)
	}
	return rec.String(name)
}

func first(rec Record, paths []string) (any, bool) {
	for _, p := range paths {
		if v, ok := rec.Lookup(p); ok && Stringify(v) != "" {
			return v, true
		}
	}
	return nil, false
}

func fullName(rec Record) string {
	firstName := Substituter{}.Resolve("student_first_name", rec, "")
	lastName := Substituter{}.Resolve("student_last_name", rec, "")
	return strings.TrimSpace(firstName + " " + lastName)
}
