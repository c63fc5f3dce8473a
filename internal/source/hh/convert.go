package hh

import (
	"strings"
	"time"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/source"
)

const (
	defaultPosition = "Стажер"
	remoteMarker    = "удаленн"
	selectionWindow = 30 * 24 * time.Hour
)

var publishedLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

// Convert maps a vacancy onto canonical fields. vocabulary feeds the keyword
// fallback when the vacancy has no key skills.
func Convert(v Vacancy, vocabulary []string) domain.Fields {
	description := domain.NormalizeDescription(v.Description)
	if description == "" {
		description = snippetText(v.Snippet)
	}

	f := domain.Fields{
		URL:            strings.TrimSpace(v.AlternateURL),
		Title:          source.OptionalText(v.Name),
		Position:       position(v.ProfessionalRoles),
		EmploymentType: employment(v, description),
		Keywords:       keywords(v, description, vocabulary),
	}

	if id := strings.TrimSpace(v.ID); id != "" {
		f.ExternalID = &id
	}
	if description != "" {
		f.Description = &description
	}
	if v.Employer != nil {
		f.Company = source.OptionalText(v.Employer.Name)
	}
	if v.Area != nil {
		f.City = source.OptionalText(v.Area.Name)
	}
	if v.Salary != nil {
		f.Salary = source.FormatSalary(v.Salary.From, v.Salary.To, v.Salary.Currency)
	}
	if published, ok := parsePublished(v.PublishedAt); ok {
		start := dateOnly(published)
		end := dateOnly(published.Add(selectionWindow))
		f.SelectionStartDate = &start
		f.SelectionEndDate = &end
	}

	return f
}

func employment(v Vacancy, description string) *domain.EmploymentType {
	et := domain.EmploymentOffice
	switch {
	case strings.Contains(strings.ToLower(v.Name), remoteMarker),
		strings.Contains(strings.ToLower(description), remoteMarker):
		et = domain.EmploymentRemote
	case v.Schedule != nil && v.Schedule.ID == "remote":
		et = domain.EmploymentRemote
	case v.Schedule != nil && v.Schedule.ID == "flexible":
		et = domain.EmploymentHybrid
	}
	return &et
}

func keywords(v Vacancy, description string, vocabulary []string) *string {
	var skills []string
	for _, s := range v.KeySkills {
		if name := strings.TrimSpace(s.Name); name != "" {
			skills = append(skills, name)
		}
	}
	if len(skills) > 0 {
		return source.JoinKeywords(skills)
	}
	return source.JoinKeywords(source.MatchKeywords(description, vocabulary))
}

func position(roles []Named) *string {
	if len(roles) > 0 {
		if p := source.OptionalText(roles[0].Name); p != nil {
			return p
		}
	}
	p := defaultPosition
	return &p
}

func snippetText(s *Snippet) string {
	if s == nil {
		return ""
	}
	var parts []string
	for _, p := range []*string{s.Responsibility, s.Requirement} {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	return domain.NormalizeDescription(strings.Join(parts, "\n"))
}

func parsePublished(s string) (time.Time, bool) {
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
