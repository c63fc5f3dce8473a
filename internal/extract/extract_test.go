package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobPage = `<!DOCTYPE html>
<html>
<head>
  <title>Go Intern | Acme Careers</title>
  <meta name="description" content="Join Acme as a Go intern.">
  <meta property="og:site_name" content="Acme">
  <meta name="geo.placename" content="Moscow">
  <script type="application/ld+json">
  {
    "@context": "https://schema.org",
    "@graph": [
      {"@type": "Organization", "name": "Acme"},
      {
        "@type": "JobPosting",
        "title": "Go Intern",
        "description": "<p>Build services in Go.</p><p>Learn PostgreSQL.</p>",
        "hiringOrganization": {"@type": "Organization", "name": "Acme"},
        "jobLocation": {"@type": "Place", "address": {"addressLocality": "Moscow"}},
        "baseSalary": {"@type": "MonetaryAmount", "currency": "RUB", "value": {"@type": "QuantitativeValue", "value": 50000, "unitText": "MONTH"}},
        "employmentType": ["INTERN"]
      }
    ]
  }
  </script>
  <script type="application/ld+json">{not json</script>
</head>
<body>
  <nav>Menu</nav>
  <div class="vacancy"><p>First paragraph.</p><p>Second&nbsp;paragraph.</p></div>
  <script>var x = 1;</script>
</body>
</html>`

func TestFindJobPostings_Graph(t *testing.T) {
	doc, err := Parse(jobPage)
	require.NoError(t, err)

	postings := FindJobPostings(doc)
	require.Len(t, postings, 1)

	p := postings[0]
	assert.Equal(t, "Go Intern", p.Title)
	assert.Equal(t, "Build services in Go.\n\nLearn PostgreSQL.", p.Description)
	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, "Moscow", p.City)
	assert.Equal(t, "50000 RUB per MONTH", p.Salary)
	assert.Equal(t, "INTERN", p.EmploymentType)
}

func TestFindJobPostings_ListAndPlainSalary(t *testing.T) {
	page := `<html><head><script type="application/ld+json">
	[{"@type": "WebPage"}, {"@type": "JobPosting", "title": "QA", "description": "Test things",
	  "hiringOrganization": "Beta", "baseSalary": {"currency": "USD", "value": 1000, "unitText": "HOUR"}}]
	</script></head><body></body></html>`

	doc, err := Parse(page)
	require.NoError(t, err)

	postings := FindJobPostings(doc)
	require.Len(t, postings, 1)
	assert.Equal(t, "Beta", postings[0].Company)
	assert.Equal(t, "1000 USD per HOUR", postings[0].Salary)
}

func TestFindJobPostings_None(t *testing.T) {
	doc, err := Parse(`<html><head><script type="application/ld+json">{"@type":"Article"}</script></head></html>`)
	require.NoError(t, err)
	assert.Empty(t, FindJobPostings(doc))
}

func TestExtractMeta(t *testing.T) {
	doc, err := Parse(jobPage)
	require.NoError(t, err)

	m := ExtractMeta(doc)
	assert.Equal(t, "Go Intern | Acme Careers", m.Title)
	assert.Equal(t, "Join Acme as a Go intern.", m.Description)
	assert.Equal(t, "Acme", m.SiteName)
	assert.Equal(t, "Moscow", m.Place)
}

func TestExtractMeta_OpenGraphFallback(t *testing.T) {
	doc, err := Parse(`<html><head>
	<meta property="og:title" content="OG title">
	<meta property="og:description" content="OG description">
	</head></html>`)
	require.NoError(t, err)

	m := ExtractMeta(doc)
	assert.Equal(t, "OG title", m.Title)
	assert.Equal(t, "OG description", m.Description)
}

func TestSelectorText(t *testing.T) {
	doc, err := Parse(jobPage)
	require.NoError(t, err)

	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", SelectorText(doc, ".vacancy"))
	assert.Empty(t, SelectorText(doc, ".missing"))
}

func TestBodyText_DropsNoise(t *testing.T) {
	doc, err := Parse(jobPage)
	require.NoError(t, err)

	text := BodyText(doc)
	assert.Contains(t, text, "First paragraph.")
	assert.NotContains(t, text, "Menu")
	assert.NotContains(t, text, "var x")
}

func TestVisibleText(t *testing.T) {
	assert.Empty(t, VisibleText("   ", "https://example.com"))

	text := VisibleText(jobPage, "https://example.com/jobs/1")
	assert.Contains(t, text, "First paragraph.")
	assert.False(t, strings.Contains(text, "<p>"))
}
