// Package extract pulls text and structured metadata out of HTML pages.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"internship_fetcher/internal/domain"
)

// minReadableLength is the shortest readability output accepted before
// falling back to the raw body text.
const minReadableLength = 200

var noiseSelectors = "script, style, noscript, template, svg, iframe, nav, header, footer"

// Meta holds the page-level metadata used by the heuristic fallback.
type Meta struct {
	Title       string
	Description string
	SiteName    string
	Place       string
}

func Parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// VisibleText returns the readable text of a page. Readability is tried
// first; pages it cannot make sense of fall back to the body text with
// scripts and chrome removed.
func VisibleText(html, pageURL string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}

	if parsedURL, err := url.Parse(pageURL); err == nil {
		article, err := readability.FromReader(strings.NewReader(html), parsedURL)
		if err == nil {
			text := domain.NormalizeDescription(article.TextContent)
			if len(text) >= minReadableLength {
				return text
			}
		}
	}

	doc, err := Parse(html)
	if err != nil {
		return ""
	}
	return BodyText(doc)
}

// BodyText is the goquery rendition of the page body without noise elements.
func BodyText(doc *goquery.Document) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	body = body.Clone()
	body.Find(noiseSelectors).Remove()

	markup, err := body.Html()
	if err != nil {
		return domain.NormalizeDescription(body.Text())
	}
	return domain.NormalizeDescription(markup)
}

// ExtractMeta reads <title> and the common description/site/location meta
// tags. OpenGraph values are used when the plain ones are missing.
func ExtractMeta(doc *goquery.Document) Meta {
	m := Meta{
		Title:       domain.NormalizeText(doc.Find("title").First().Text()),
		Description: metaContent(doc, `meta[name="description"]`),
		SiteName:    metaContent(doc, `meta[property="og:site_name"]`),
		Place:       metaContent(doc, `meta[name="geo.placename"]`),
	}

	if m.Title == "" {
		m.Title = metaContent(doc, `meta[property="og:title"]`)
	}
	if m.Description == "" {
		m.Description = metaContent(doc, `meta[property="og:description"]`)
	}

	return m
}

// SelectorText returns the normalized text of every node matching selector,
// keeping paragraph breaks.
func SelectorText(doc *goquery.Document, selector string) string {
	var parts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		markup, err := s.Html()
		if err != nil {
			markup = s.Text()
		}
		if text := domain.NormalizeDescription(markup); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return domain.NormalizeText(content)
}
