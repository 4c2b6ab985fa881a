package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nao1215/webpulse/internal/model"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5"

// maxSuggestionTokens bounds the length of one generated suggestion.
const maxSuggestionTokens = 400

// ErrEmptyResponse is returned when the API answers without text.
var ErrEmptyResponse = errors.New("no text content in API response")

const systemPrompt = `You are a senior web consultant. You receive one defect found by an automated audit of a web page and write remediation advice for the site owner.

Rules:
- Answer with 2 to 4 plain sentences, no markdown, no lists, no headings
- Be concrete: name the tag, attribute or setting to change and give a short example when useful
- Explain the business impact in one sentence (search ranking, accessibility compliance, conversion or load time)
- Do not repeat the issue title`

// Claude asks the Anthropic Messages API for remediation advice.
type Claude struct {
	api      *anthropic.Client
	model    anthropic.Model
	logger   *slog.Logger
	fallback *Static
}

// ClaudeOption configures a Claude suggester.
type ClaudeOption func(*claudeSettings)

type claudeSettings struct {
	logger   *slog.Logger
	requests []option.RequestOption
}

// WithClaudeLogger sets the logger used to report API failures.
func WithClaudeLogger(logger *slog.Logger) ClaudeOption {
	return func(s *claudeSettings) {
		s.logger = logger
	}
}

// WithRequestOptions passes extra options to the Anthropic client, for
// example option.WithBaseURL.
func WithRequestOptions(opts ...option.RequestOption) ClaudeOption {
	return func(s *claudeSettings) {
		s.requests = append(s.requests, opts...)
	}
}

// NewClaude creates a Claude suggester. An empty model selects DefaultModel.
func NewClaude(apiKey, model string, opts ...ClaudeOption) *Claude {
	settings := &claudeSettings{logger: slog.Default()}
	for _, opt := range opts {
		opt(settings)
	}

	requests := []option.RequestOption{}
	if apiKey != "" {
		requests = append(requests, option.WithAPIKey(apiKey))
	}
	requests = append(requests, settings.requests...)
	client := anthropic.NewClient(requests...)

	if model == "" {
		model = DefaultModel
	}
	return &Claude{
		api:      &client,
		model:    anthropic.Model(model),
		logger:   settings.logger,
		fallback: NewStatic(),
	}
}

// Name returns ModeClaude.
func (c *Claude) Name() string {
	return ModeClaude
}

// Model returns the configured model name.
func (c *Claude) Model() string {
	return string(c.model)
}

// Suggest returns generated advice. When the API call fails the static
// table answers instead and no error is returned, unless ctx is done.
func (c *Claude) Suggest(ctx context.Context, issue model.Issue) (string, error) {
	text, err := c.generate(ctx, issue)
	if err == nil {
		return text, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	c.logger.Warn("claude suggestion failed, using static table",
		"title", issue.Title,
		"error", err)
	return c.fallback.Suggest(ctx, issue)
}

func (c *Claude) generate(ctx context.Context, issue model.Issue) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxSuggestionTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(issue))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			if text := strings.TrimSpace(block.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", ErrEmptyResponse
}

// buildPrompt describes the issue to the model.
func buildPrompt(issue model.Issue) string {
	var sb strings.Builder
	sb.WriteString("Category: ")
	sb.WriteString(string(issue.Category))
	sb.WriteString("\nSeverity: ")
	sb.WriteString(issue.Severity.String())
	sb.WriteString("\nIssue: ")
	sb.WriteString(issue.Title)
	if issue.Detail != "" {
		sb.WriteString("\nDetail: ")
		sb.WriteString(issue.Detail)
	}
	return sb.String()
}
