package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"internship_fetcher/internal/domain"
)

// JobPosting is the subset of schema.org/JobPosting the pipeline uses.
// Description is normalized plain text.
type JobPosting struct {
	Title          string
	Description    string
	Company        string
	City           string
	Salary         string
	EmploymentType string
	DatePosted     string
	ValidThrough   string
}

// FindJobPostings returns every JobPosting found in the page's JSON-LD
// blocks. Top-level arrays and @graph containers are both searched.
// Invalid blocks are skipped.
func FindJobPostings(doc *goquery.Document) []JobPosting {
	var postings []JobPosting

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return
		}

		for _, obj := range flattenJSONLD(data) {
			if !isType(obj["@type"], "JobPosting") {
				continue
			}
			if p, ok := toJobPosting(obj); ok {
				postings = append(postings, p)
			}
		}
	})

	return postings
}

func flattenJSONLD(data any) []map[string]any {
	var out []map[string]any

	switch v := data.(type) {
	case []any:
		for _, item := range v {
			out = append(out, flattenJSONLD(item)...)
		}
	case map[string]any:
		out = append(out, v)
		if graph, ok := v["@graph"]; ok {
			out = append(out, flattenJSONLD(graph)...)
		}
	}

	return out
}

func isType(v any, want string) bool {
	switch t := v.(type) {
	case string:
		return t == want
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func toJobPosting(obj map[string]any) (JobPosting, bool) {
	p := JobPosting{
		Title:          domain.NormalizeText(str(obj["title"])),
		Description:    domain.NormalizeDescription(str(obj["description"])),
		DatePosted:     str(obj["datePosted"]),
		ValidThrough:   str(obj["validThrough"]),
		EmploymentType: employmentType(obj["employmentType"]),
	}

	switch org := obj["hiringOrganization"].(type) {
	case map[string]any:
		p.Company = domain.NormalizeText(str(org["name"]))
	case string:
		p.Company = domain.NormalizeText(org)
	}

	p.City = locality(obj["jobLocation"])
	p.Salary = salary(obj["baseSalary"])

	if p.Title == "" && p.Description == "" {
		return JobPosting{}, false
	}
	return p, true
}

func locality(v any) string {
	switch loc := v.(type) {
	case []any:
		for _, item := range loc {
			if city := locality(item); city != "" {
				return city
			}
		}
	case map[string]any:
		if addr, ok := loc["address"].(map[string]any); ok {
			return domain.NormalizeText(str(addr["addressLocality"]))
		}
	}
	return ""
}

// salary renders baseSalary as "<value> <currency> per <unit>". A
// QuantitativeValue is flattened to its value or min-max range.
func salary(v any) string {
	data, ok := v.(map[string]any)
	if !ok {
		return ""
	}

	currency := str(data["currency"])
	unit := ""
	amount := ""

	switch val := data["value"].(type) {
	case map[string]any:
		unit = str(val["unitText"])
		switch {
		case str(val["value"]) != "":
			amount = str(val["value"])
		case str(val["minValue"]) != "" && str(val["maxValue"]) != "":
			amount = str(val["minValue"]) + "-" + str(val["maxValue"])
		default:
			amount = firstNonEmpty(str(val["minValue"]), str(val["maxValue"]))
		}
	default:
		amount = str(val)
	}
	if u := str(data["unitText"]); u != "" {
		unit = u
	}

	if amount == "" {
		return ""
	}
	if currency == "" {
		return amount
	}

	out := amount + " " + currency
	if unit != "" {
		out += " per " + unit
	}
	return out
}

func employmentType(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			return str(t[0])
		}
	}
	return ""
}

func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case json.Number:
		return t.String()
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
