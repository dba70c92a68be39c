package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/autotranslate"
	"github.com/goccy/go-json"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Backend with a chat completion model.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.2)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate translates a single text.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &autotranslate.ProviderError{
			Message:    "OpenAI API call failed",
			Cause:      err,
			StatusCode: statusCode(err),
			Retryable:  isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &autotranslate.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return parseResponse(resp.Choices[0].Message.Content)
}

func buildSystemPrompt(req TranslateRequest) string {
	source := autotranslate.GetLanguageName(req.SourceLang)
	target := autotranslate.GetLanguageName(req.TargetLang)

	prompt := fmt.Sprintf(`You translate short business texts from %s to %s.
The user message is the text to translate, nothing else. It may be a field label, an enum label or free text from an application.
- Keep the meaning; use natural, concise %s.
- Do NOT translate placeholders ({name}, %%s), URLs, email addresses or identifiers.
- Preserve leading and trailing whitespace.`, source, target, target)

	if req.Format == "html" {
		prompt += "\n- The text is HTML: translate text content only, keep every tag and attribute."
	}

	prompt += `
Return a JSON object with a single key "translation", e.g. {"translation": "..."}.`

	return prompt
}

func parseResponse(content string) (string, error) {
	var obj struct {
		Translation *string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &obj); err != nil || obj.Translation == nil {
		return "", &autotranslate.ProviderError{
			Message:   "invalid response format from OpenAI",
			Cause:     err,
			Retryable: false,
		}
	}
	return *obj.Translation, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	return 0
}

func isRetryableError(err error) bool {
	if code := statusCode(err); code != 0 {
		return code == 429 || code >= 500
	}

	// Transport errors carry no status
	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"rate limit", "timeout", "connection refused", "temporary"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

var _ Backend = (*OpenAIProvider)(nil)
