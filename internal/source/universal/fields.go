package universal

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"internship_fetcher/internal/domain"
	"internship_fetcher/internal/extract"
	"internship_fetcher/internal/llm"
	"internship_fetcher/internal/source"
)

// candidate holds raw strategy output before cleanup.
type candidate struct {
	title          string
	company        string
	position       string
	salary         string
	city           string
	duration       string
	description    string
	employmentType string
	startDate      string
	endDate        string
}

func fromExtraction(e *llm.Extraction) candidate {
	return candidate{
		title:          val(e.Title),
		company:        val(e.Company),
		position:       val(e.Position),
		salary:         val(e.Salary),
		city:           val(e.City),
		duration:       val(e.Duration),
		description:    val(e.Description),
		employmentType: val(e.EmploymentType),
		startDate:      val(e.SelectionStartDate),
		endDate:        val(e.SelectionEndDate),
	}
}

func fromJobPosting(p extract.JobPosting) candidate {
	return candidate{
		title:          p.Title,
		company:        p.Company,
		salary:         p.Salary,
		city:           p.City,
		description:    p.Description,
		employmentType: p.EmploymentType,
		startDate:      dateOf(p.DatePosted),
		endDate:        dateOf(p.ValidThrough),
	}
}

func fromMeta(m extract.Meta) candidate {
	return candidate{
		title:       m.Title,
		company:     m.SiteName,
		city:        m.Place,
		description: m.Description,
	}
}

// finalize cleans a candidate into canonical fields. Title and company
// missing from the page are derived from the URL. A posting without title
// or description is rejected.
func finalize(c candidate, pageURL *url.URL, vocabulary []string) (*domain.Fields, error) {
	title := domain.NormalizeText(c.title)
	if title == "" {
		title = titleFromPath(pageURL.Path)
	}
	company := domain.NormalizeText(c.company)
	if company == "" {
		company = companyFromHost(pageURL.Hostname())
	}
	if company == "" {
		company = pageURL.Host
	}
	position := domain.NormalizeText(c.position)
	if position == "" {
		position = title
	}
	description := domain.NormalizeDescription(c.description)

	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: %s has no title or description", domain.ErrExtraction, pageURL)
	}

	f := &domain.Fields{
		URL:                pageURL.String(),
		Title:              ptr(truncate(title, maxTitle)),
		Company:            ptr(truncate(company, maxCompany)),
		Position:           ptr(truncate(position, maxPosition)),
		Salary:             short(c.salary),
		City:               short(c.city),
		Duration:           short(c.duration),
		Description:        &description,
		Keywords:           source.JoinKeywords(source.MatchKeywords(title+"\n"+description, vocabulary)),
		SelectionStartDate: parseDate(c.startDate),
		SelectionEndDate:   parseDate(c.endDate),
	}
	if et, ok := domain.ParseEmploymentType(c.employmentType); ok {
		f.EmploymentType = &et
	}

	return f, nil
}

// titleFromPath turns the last path segment into a title:
// "/jobs/backend-intern_2026" becomes "Backend Intern 2026".
func titleFromPath(p string) string {
	seg := path.Base(strings.Trim(p, "/"))
	if seg == "." || seg == "/" || seg == "" {
		return ""
	}
	if unescaped, err := url.PathUnescape(seg); err == nil {
		seg = unescaped
	}
	seg = strings.NewReplacer("-", " ", "_", " ").Replace(seg)

	words := strings.Fields(seg)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// companyFromHost uses the first host label: "jobs.acme.io" gives "Jobs",
// "www.acme.io" gives "Acme".
func companyFromHost(host string) string {
	host = strings.TrimPrefix(host, "www.")
	label, _, _ := strings.Cut(host, ".")
	return capitalize(label)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:limit]))
}

func short(s string) *string {
	s = domain.NormalizeText(s)
	if s == "" {
		return nil
	}
	s = truncate(s, maxShort)
	return &s
}

// dateOf keeps the date part of an ISO timestamp.
func dateOf(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

func val(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func ptr(s string) *string {
	return &s
}
