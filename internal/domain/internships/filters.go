package internships

import (
	"fmt"
	"net/url"
	"strings"
)

const maxFilterLength = 200

// Filters are the optional listing parameters. Empty fields do not restrict.
type Filters struct {
	// Search matches title or company and takes precedence over Role.
	Search   string
	Role     string
	Location string
	Type     string
	Duration string
	PartTime bool

	// MinStipend is accepted for compatibility but not applied, since stipend
	// is free text.
	MinStipend string
}

// Ignored lists parameters the caller sent that had no effect.
func (f Filters) Ignored() []string {
	var ignored []string
	if f.MinStipend != "" {
		ignored = append(ignored, "minStipend")
	}
	if f.Search != "" && f.Role != "" {
		ignored = append(ignored, "role")
	}
	return ignored
}

// TitleTerm is the substring matched against the title alone, which is the
// role filter unless a search is present.
func (f Filters) TitleTerm() string {
	if f.Search != "" {
		return ""
	}
	return f.Role
}

type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func ParseFilters(values url.Values) (Filters, error) {
	filters := Filters{
		PartTime: values.Get("partTime") == "true",
	}

	fields := []struct {
		name string
		dst  *string
	}{
		{"search", &filters.Search},
		{"role", &filters.Role},
		{"location", &filters.Location},
		{"type", &filters.Type},
		{"duration", &filters.Duration},
		{"minStipend", &filters.MinStipend},
	}
	for _, field := range fields {
		value := strings.TrimSpace(values.Get(field.name))
		if len(value) > maxFilterLength {
			return Filters{}, FilterError{Field: field.name, Message: fmt.Sprintf("must be at most %d characters", maxFilterLength)}
		}
		*field.dst = value
	}

	return filters, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes user input match literally inside an ILIKE pattern that
// uses backslash as its escape character.
func EscapeLike(value string) string {
	return likeEscaper.Replace(value)
}

// ContainsFold is the in-process equivalent of ILIKE '%' || needle || '%'.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Matches applies the filter semantics to a single posting in memory.
func (f Filters) Matches(i Internship) bool {
	if i.Status != StatusActive {
		return false
	}
	if f.Search != "" && !ContainsFold(i.Title, f.Search) && !ContainsFold(i.Company, f.Search) {
		return false
	}
	if !ContainsFold(i.Title, f.TitleTerm()) {
		return false
	}
	if !ContainsFold(i.Location, f.Location) {
		return false
	}
	if f.Type != "" && string(i.Type) != f.Type {
		return false
	}
	if f.PartTime && !i.PartTime {
		return false
	}
	return ContainsFold(i.Duration, f.Duration)
}
