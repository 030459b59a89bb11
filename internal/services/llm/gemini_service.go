package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiService implements the LLMService interface using Google Gemini.
// JSON mode is requested natively via ResponseMIMEType.
type GeminiService struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

var _ interfaces.LLMService = (*GeminiService)(nil)

// NewGeminiService creates a Gemini LLM service instance
func NewGeminiService(geminiConfig *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Google API key is required for Gemini service (set via GEMINI_API_KEY, VENARI_GEMINI_API_KEY, or gemini.api_key in config)")
	}

	if geminiConfig.FastModel == "" {
		geminiConfig.FastModel = "gemini-3-flash-preview"
	}
	if geminiConfig.SmartModel == "" {
		geminiConfig.SmartModel = geminiConfig.FastModel
	}

	timeout, err := time.ParseDuration(geminiConfig.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout duration '%s': %w", geminiConfig.Timeout, err)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  geminiConfig,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}

	logger.Debug().
		Str("fast_model", geminiConfig.FastModel).
		Str("smart_model", geminiConfig.SmartModel).
		Dur("timeout", timeout).
		Msg("Gemini LLM service initialized")

	return service, nil
}

// FastModel returns the model id for cheap extraction calls
func (s *GeminiService) FastModel() string {
	return s.config.FastModel
}

// SmartModel returns the model id for high-quality calls
func (s *GeminiService) SmartModel() string {
	return s.config.SmartModel
}

// CompleteStructured sends the request and parses the JSON response into out
func (s *GeminiService) CompleteStructured(ctx context.Context, req interfaces.CompletionRequest, out any) (interfaces.TokenUsage, error) {
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
		response, callUsage, err := s.generateCompletion(timeoutCtx, messages, req.Model)
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
				Msg("Gemini structured output failed to parse")
			messages = retryMessages(messages, response, err)
			continue
		}

		return usage, nil
	}

	return usage, fmt.Errorf("structured output failed after %d attempts: %w", maxStructuredRetries, lastErr)
}

// Close releases resources held by the client
func (s *GeminiService) Close() error {
	s.logger.Debug().Msg("Closing Gemini LLM service")
	return nil
}

// generateCompletion performs one Gemini API call in JSON mode
func (s *GeminiService) generateCompletion(ctx context.Context, messages []interfaces.Message, model string) (string, interfaces.TokenUsage, error) {
	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", interfaces.TokenUsage{}, err
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(s.config.Temperature),
		ResponseMIMEType: "application/json",
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", interfaces.TokenUsage{}, fmt.Errorf("Gemini API call failed: %w", err)
	}

	var response strings.Builder
	if resp != nil && len(resp.Candidates) > 0 {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	callUsage := interfaces.TokenUsage{Model: model}
	if resp != nil && resp.UsageMetadata != nil {
		callUsage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		callUsage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	if response.Len() == 0 {
		return "", callUsage, fmt.Errorf("no response generated from Gemini API")
	}

	return response.String(), callUsage, nil
}

// convertMessagesToGemini converts messages to the Gemini Content format,
// extracting system messages for the SystemInstruction parameter.
func convertMessagesToGemini(messages []interfaces.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == "system" {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		role := genai.RoleUser
		if msg.Role == "assistant" {
			role = genai.RoleModel
		}

		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	if len(contents) == 0 {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	return contents, systemText, nil
}
