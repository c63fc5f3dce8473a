package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// DefaultStaleAfter is how long a stored posting stays fresh enough to skip
// refetching its details.
const DefaultStaleAfter = 7 * 24 * time.Hour

const identitySeparator = "\x1f"

var (
	breakTagRe = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/h[1-6]|/tr|p|li)\b[^>]*>`)
	tagRe      = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
	spaceRe    = regexp.MustCompile(`[ \t\f\v]+`)
)

// NormalizeDescription turns raw description text or markup into plain text
// paragraphs separated by one blank line.
func NormalizeDescription(raw string) string {
	text := raw
	// Unescaping can expose new markup, so run until the text settles.
	// Every pass after the first either returns its input or drops a tag
	// or entity, so the loop ends.
	for {
		next := normalizePass(text)
		if next == text {
			return text
		}
		text = next
	}
}

func normalizePass(raw string) string {
	if raw == "" {
		return ""
	}

	text := breakTagRe.ReplaceAllString(raw, "\n")
	text = tagRe.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = stripNonPrintable(text)

	lines := strings.Split(text, "\n")
	paragraphs := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

// NormalizeText is the single-line variant used for titles, companies and
// other short fields.
func NormalizeText(s string) string {
	s = html.UnescapeString(s)
	s = stripNonPrintable(s)
	return strings.Join(strings.Fields(s), " ")
}

func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return ' '
		case r == '\n' || r == '\t':
			return r
		case unicode.IsSpace(r):
			return ' '
		case !unicode.IsPrint(r):
			return -1
		}
		return r
	}, s)
}

// ContentIdentity is the fallback identity for postings without a reliable
// external id.
func ContentIdentity(title, company, position, description string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{title, company, position, description}, identitySeparator)))
	return hex.EncodeToString(sum[:])
}

// IsStale reports whether p should be refetched. A missing posting is
// always stale.
func IsStale(p *Posting, now time.Time, threshold time.Duration) bool {
	if p == nil {
		return true
	}
	return now.Sub(p.UpdatedAt) > threshold
}

// ParseEmploymentType maps loosely formatted values onto the known set.
func ParseEmploymentType(s string) (EmploymentType, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "-", "_")
	v = strings.ReplaceAll(v, " ", "_")
	switch v {
	case "remote", "удаленно", "удалённо", "удаленная_работа":
		return EmploymentRemote, true
	case "office", "onsite", "on_site", "очно", "офис":
		return EmploymentOffice, true
	case "hybrid", "гибрид", "гибридный":
		return EmploymentHybrid, true
	case "full_time", "fulltime", "полный_день":
		return EmploymentFullTime, true
	case "part_time", "parttime", "неполный_день":
		return EmploymentPartTime, true
	case "flexible", "гибкий_график":
		return EmploymentFlexible, true
	}
	return "", false
}
