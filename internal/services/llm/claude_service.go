package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
)

// ClaudeService implements the LLMService interface using the Anthropic API.
// Structured outputs are requested as raw JSON and parsed locally, with a
// bounded re-prompt loop on parse failures.
type ClaudeService struct {
	config  *common.ClaudeConfig
	logger  arbor.ILogger
	client  anthropic.Client
	timeout time.Duration
}

var _ interfaces.LLMService = (*ClaudeService)(nil)

// NewClaudeService creates a Claude LLM service instance
func NewClaudeService(claudeConfig *common.ClaudeConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if claudeConfig.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required for Claude service (set via ANTHROPIC_API_KEY, VENARI_CLAUDE_API_KEY, or claude.api_key in config)")
	}

	if claudeConfig.FastModel == "" {
		claudeConfig.FastModel = "claude-haiku-4-5-20251001"
	}
	if claudeConfig.SmartModel == "" {
		claudeConfig.SmartModel = "claude-sonnet-4-5-20250514"
	}

	timeout, err := time.ParseDuration(claudeConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", claudeConfig.Timeout, err)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(claudeConfig.APIKey),
	)

	service := &ClaudeService{
		config:  claudeConfig,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}

	logger.Debug().
		Str("fast_model", claudeConfig.FastModel).
		Str("smart_model", claudeConfig.SmartModel).
		Dur("timeout", timeout).
		Msg("Claude LLM service initialized")

	return service, nil
}

// FastModel returns the model id for cheap extraction calls
func (s *ClaudeService) FastModel() string {
	return s.config.FastModel
}

// SmartModel returns the model id for high-quality calls
func (s *ClaudeService) SmartModel() string {
	return s.config.SmartModel
}

// CompleteStructured sends the request and parses the JSON response into out.
// Parse failures are re-prompted with the failed output fed back, for at
// most maxStructuredRetries attempts in all; usage accumulates across attempts.
func (s *ClaudeService) CompleteStructured(ctx context.Context, req interfaces.CompletionRequest, out any) (interfaces.TokenUsage, error) {
	usage := interfaces.TokenUsage{Model: req.Model}
	if req.Model == "" {
		req.Model = s.config.SmartModel
		usage.Model = req.Model
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := withSchemaSuffix(req.Messages, req.Schema)

	var lastErr error
	for attempt := 0; attempt < maxStructuredRetries; attempt++ {
		response, callUsage, err := s.generateCompletion(timeoutCtx, messages, req)
		usage.InputTokens += callUsage.InputTokens
		usage.OutputTokens += callUsage.OutputTokens
		if err != nil {
			return usage, err
		}

		if err := parseStructured(response, out); err != nil {
			lastErr = err
			s.logger.Warn().
				Int("attempt", attempt+1).
				Err(err).
				Msg("Claude structured output failed to parse")
			messages = retryMessages(messages, response, err)
			continue
		}

		return usage, nil
	}

	return usage, fmt.Errorf("structured output failed after %d attempts: %w", maxStructuredRetries, lastErr)
}

// Close releases resources held by the client
func (s *ClaudeService) Close() error {
	s.logger.Debug().Msg("Closing Claude LLM service")
	return nil
}

// generateCompletion performs one Anthropic API call
func (s *ClaudeService) generateCompletion(ctx context.Context, messages []interfaces.Message, req interfaces.CompletionRequest) (string, interfaces.TokenUsage, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", interfaces.TokenUsage{}, err
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.config.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", interfaces.TokenUsage{}, fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	callUsage := interfaces.TokenUsage{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
		Model:        req.Model,
	}

	if response.Len() == 0 {
		return "", callUsage, fmt.Errorf("no response generated from Claude API")
	}

	return response.String(), callUsage, nil
}

// convertMessagesToClaude converts messages to the Anthropic MessageParam
// format, extracting system messages for the System parameter.
func convertMessagesToClaude(messages []interfaces.Message) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		switch msg.Role {
		case "assistant":
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	if len(claudeMessages) == 0 {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	return claudeMessages, systemText, nil
}

// withSchemaSuffix appends the structured-output instruction to the final
// user message
func withSchemaSuffix(messages []interfaces.Message, schema string) []interfaces.Message {
	if schema == "" {
		return messages
	}
	extended := make([]interfaces.Message, len(messages))
	copy(extended, messages)
	for i := len(extended) - 1; i >= 0; i-- {
		if extended[i].Role == "user" {
			extended[i].Content += schemaInstruction(schema)
			break
		}
	}
	return extended
}
