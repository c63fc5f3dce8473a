// Package llm turns page text into posting fields with a hosted language
// model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"internship_fetcher/internal/fetch"
)

const systemPrompt = `You extract structured data about internships and job openings from web page text.
Return ONLY a single valid JSON object. Do not wrap it in markdown, do not add comments or any text before or after it.
Every key and string value must be double quoted. Use null for fields you cannot find.`

const userPromptTemplate = `Extract the internship or job opening described in the page text below.
Return a JSON object with exactly these fields:
- title: name of the opening (string, required)
- company: hiring company (string, required)
- position: role or position, if different from the title (string or null)
- salary: compensation as written on the page (string or null)
- selection_start_date: when applications open, YYYY-MM-DD (string or null)
- selection_end_date: when applications close, YYYY-MM-DD (string or null)
- duration: length of the internship (string or null)
- description: a detailed and complete description including duties, requirements, conditions and team information. Do not shorten relevant text. (string, required)
- employment_type: "remote", "hybrid", "office", "full_time" or "part_time" when it can be determined, otherwise null
- city: city of the opening (string or null)

Page text:
%s`

// Retrier runs fn with retries for transient failures.
type Retrier interface {
	Retry(ctx context.Context, op string, fn func(ctx context.Context) error) error
}

type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
	MaxChars  int
	BaseURL   string
}

type Client struct {
	api     anthropic.Client
	cfg     Config
	retrier Retrier
	logger  *slog.Logger
}

func New(cfg Config, retrier Retrier, logger *slog.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:     anthropic.NewClient(opts...),
		cfg:     cfg,
		retrier: retrier,
		logger:  logger.With("component", "llm"),
	}
}

// Extract asks the model for the posting fields in text. Text longer than
// the configured limit is truncated.
func (c *Client) Extract(ctx context.Context, text string) (*Extraction, error) {
	text = truncate(text, c.cfg.MaxChars)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fmt.Sprintf(userPromptTemplate, text))),
		},
		Temperature: anthropic.Float(0.1),
	}

	var content string
	err := c.retrier.Retry(ctx, "llm.extract", func(ctx context.Context) error {
		msg, err := c.api.Messages.New(ctx, params)
		if err != nil {
			return classify(err)
		}
		content = responseText(msg)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}

	c.logger.Debug("llm responded", "input_chars", len([]rune(text)), "output_chars", len(content))

	return ParseResponse(content)
}

func responseText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// classify maps SDK errors onto the fetch error taxonomy. Rate limiting is
// retried here since the model API asks callers to back off and try again.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", fetch.ErrTransient, err)
		}
		if class := fetch.Classify(apiErr.StatusCode); class != nil {
			return fmt.Errorf("%w: %w", class, err)
		}
		return err
	}

	return fmt.Errorf("%w: %w", fetch.ErrTransient, err)
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars])
}
