package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrMalformed = errors.New("malformed llm response")

var (
	fenceRe     = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	bulletRe    = regexp.MustCompile(`(?m)^\s*\*\s*`)
	bareKeyRe   = regexp.MustCompile(`^\s*"[a-zA-Z_]+"\s*:`)
	trailingRe  = regexp.MustCompile(`,\s*([}\]])`)
	requiredKey = []string{"title", "company", "description"}
)

// Extraction is the field set the model is asked to return. Nil means the
// model returned null or omitted the field.
type Extraction struct {
	Title              *string
	Company            *string
	Position           *string
	Salary             *string
	SelectionStartDate *string
	SelectionEndDate   *string
	Duration           *string
	Description        *string
	EmploymentType     *string
	City               *string
}

// ParseResponse recovers an Extraction from raw model output. Fenced blocks,
// surrounding prose, markdown bullets and truncated objects are tolerated.
// As a last resort the required fields are pulled out with a regular
// expression.
func ParseResponse(content string) (*Extraction, error) {
	candidate := isolateObject(content)

	if m, err := decode(candidate); err == nil {
		return fromMap(m), nil
	}

	repaired := repair(candidate)
	if m, err := decode(repaired); err == nil {
		return fromMap(m), nil
	}

	if m, err := decode(repair(strings.ReplaceAll(candidate, "'", `"`))); err == nil {
		return fromMap(m), nil
	}

	if m, ok := scrapeRequired(content); ok {
		return fromMap(m), nil
	}

	return nil, fmt.Errorf("%w: %.100q", ErrMalformed, content)
}

func isolateObject(content string) string {
	if m := fenceRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}

	s := content
	if strings.Contains(s, "*") {
		s = bulletRe.ReplaceAllString(s, "")
	}

	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && bareKeyRe.MatchString(trimmed) {
		s = "{" + trimmed + "}"
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
		return s[start:]
	}

	return s
}

func decode(s string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMalformed
	}
	return m, nil
}

// repair closes an unterminated string and any open objects or arrays, and
// drops trailing commas.
func repair(s string) string {
	var (
		stack    []byte
		inString bool
		escaped  bool
	)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 && stack[len(stack)-1] == ch {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		b.WriteByte('"')
	}

	out := strings.TrimRight(b.String(), " \t\r\n,")
	for i := len(stack) - 1; i >= 0; i-- {
		out += string(stack[i])
	}

	return trailingRe.ReplaceAllString(out, "$1")
}

func scrapeRequired(content string) (map[string]any, bool) {
	m := make(map[string]any, len(requiredKey))
	for _, field := range requiredKey {
		re := regexp.MustCompile(`"(` + field + `)"\s*:\s*"([^"]*)"`)
		match := re.FindStringSubmatch(content)
		if match == nil {
			return nil, false
		}
		m[match[1]] = match[2]
	}
	return m, true
}

func fromMap(m map[string]any) *Extraction {
	return &Extraction{
		Title:              field(m, "title"),
		Company:            field(m, "company"),
		Position:           field(m, "position"),
		Salary:             field(m, "salary"),
		SelectionStartDate: field(m, "selection_start_date"),
		SelectionEndDate:   field(m, "selection_end_date"),
		Duration:           field(m, "duration"),
		Description:        field(m, "description"),
		EmploymentType:     field(m, "employment_type"),
		City:               field(m, "city"),
	}
}

func field(m map[string]any, key string) *string {
	var s string
	switch v := m[key].(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok && strings.TrimSpace(str) != "" {
				parts = append(parts, strings.TrimSpace(str))
			}
		}
		s = strings.Join(parts, "\n")
	default:
		return nil
	}

	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}
