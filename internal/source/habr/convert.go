package habr

import (
	"strconv"
	"strings"
	"time"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/source"
)

const (
	defaultPosition = "Стажер"
	selectionWindow = 30 * 24 * time.Hour
)

// Convert maps a list summary onto canonical fields. description is the
// text chosen from the detail page and may be empty.
func Convert(v Vacancy, baseURL, description string, vocabulary []string) domain.Fields {
	f := domain.Fields{
		URL:            vacancyURL(v, baseURL),
		Title:          source.OptionalText(v.Title),
		Position:       position(v.Divisions),
		EmploymentType: employment(v),
	}

	if v.ID != 0 {
		id := strconv.FormatInt(v.ID, 10)
		f.ExternalID = &id
	}
	if description != "" {
		f.Description = &description
	}
	if v.Company != nil {
		f.Company = source.OptionalText(v.Company.Title)
	}
	if len(v.Locations) > 0 {
		f.City = source.OptionalText(v.Locations[0].Title)
	}
	if v.Salary != nil {
		f.Salary = source.FormatSalary(v.Salary.From, v.Salary.To, strings.ToUpper(v.Salary.Currency))
		if f.Salary == nil {
			f.Salary = source.OptionalText(v.Salary.Formatted)
		}
	}

	var skills []string
	for _, s := range v.Skills {
		if t := strings.TrimSpace(s.Title); t != "" {
			skills = append(skills, t)
		}
	}
	if len(skills) > 0 {
		f.Keywords = source.JoinKeywords(skills)
	} else {
		f.Keywords = source.JoinKeywords(source.MatchKeywords(v.Title+"\n"+description, vocabulary))
	}

	if v.PublishedDate != nil {
		if t, err := time.Parse(time.RFC3339, v.PublishedDate.Date); err == nil {
			start := dateOnly(t)
			end := dateOnly(t.Add(selectionWindow))
			f.SelectionStartDate = &start
			f.SelectionEndDate = &end
		}
	}

	return f
}

func vacancyURL(v Vacancy, baseURL string) string {
	href := strings.TrimSpace(v.Href)
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case href != "":
		return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(href, "/")
	case v.ID != 0:
		return strings.TrimRight(baseURL, "/") + "/vacancies/" + strconv.FormatInt(v.ID, 10)
	}
	return ""
}

func employment(v Vacancy) *domain.EmploymentType {
	if v.RemoteWork {
		et := domain.EmploymentRemote
		return &et
	}
	if et, ok := domain.ParseEmploymentType(v.Employment); ok {
		return &et
	}
	et := domain.EmploymentOffice
	return &et
}

func position(divisions []Titled) *string {
	for _, d := range divisions {
		if p := source.OptionalText(d.Title); p != nil {
			return p
		}
	}
	p := defaultPosition
	return &p
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
