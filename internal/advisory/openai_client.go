package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chain-risk-lab/internal/domain"
)

// Defaults for OpenAIClient.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTimeout     = 20 * time.Second
	DefaultTemperature = 0.3
)

const systemPrompt = "You are a blockchain security expert analyzing transactions for scam patterns."

// OpenAIClient posts chat-completion requests to an OpenAI-compatible API.
type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

// Option configures OpenAIClient.
type Option func(*OpenAIClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(base string) Option {
	return func(c *OpenAIClient) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *OpenAIClient) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *OpenAIClient) {
		c.client = client
	}
}

// NewOpenAIClient creates a client.
func NewOpenAIClient(apiKey string, opts ...Option) *OpenAIClient {
	c := &OpenAIClient{
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		client:      &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Analyzer = (*OpenAIClient)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// tradeSummary is the per-trade view sent in the prompt.
type tradeSummary struct {
	Timestamp int64           `json:"timestamp"`
	Dex       string          `json:"dex"`
	TokenIn   domain.TokenLeg `json:"tokenIn"`
	TokenOut  domain.TokenLeg `json:"tokenOut"`
	Value     domain.Quantity `json:"value"`
}

// BuildPrompt renders the user prompt for a trade batch.
func BuildPrompt(trades []domain.Trade) (string, error) {
	summaries := make([]tradeSummary, len(trades))
	for i, t := range trades {
		summaries[i] = tradeSummary{
			Timestamp: t.Timestamp,
			Dex:       t.Dex,
			TokenIn:   t.TokenIn,
			TokenOut:  t.TokenOut,
			Value:     t.TokenIn.Amount,
		}
	}
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal trades: %w", err)
	}

	var b strings.Builder
	b.WriteString("Analyze these blockchain transactions for potential scam patterns:\n")
	b.Write(data)
	b.WriteString("\n\nConsider:\n")
	b.WriteString("1. Unusual trading patterns\n")
	b.WriteString("2. Known scam token interactions\n")
	b.WriteString("3. Suspicious contract interactions\n")
	b.WriteString("4. Price manipulation patterns\n")
	b.WriteString("5. Liquidity removal patterns\n")
	b.WriteString("6. Flash loan attack patterns\n")
	b.WriteString("7. Front-running patterns\n\n")
	b.WriteString("Provide a risk assessment and identify any suspicious patterns.")
	return b.String(), nil
}

// Analyze implements Analyzer.
func (c *OpenAIClient) Analyze(ctx context.Context, trades []domain.Trade) (domain.AdvisoryResult, error) {
	prompt, err := BuildPrompt(trades)
	if err != nil {
		return domain.AdvisoryResult{}, err
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return domain.AdvisoryResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return domain.AdvisoryResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.AdvisoryResult{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AdvisoryResult{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.AdvisoryResult{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return domain.AdvisoryResult{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if chat.Error != nil {
		return domain.AdvisoryResult{}, fmt.Errorf("completion error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return domain.AdvisoryResult{}, fmt.Errorf("completion returned no choices")
	}

	return ParseResponse(chat.Choices[0].Message.Content), nil
}
