package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-4o-mini"

	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
	maxErrorBodyBytes     = 1 << 20

	schemaInstruction = "Odpowiadaj zawsze w formacie JSON zgodnym z poniższym schematem:\n"
)

// Role of a chat message author.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Params are sampling parameters. Nil fields fall back to the client defaults.
type Params struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

// Merge returns p with every non-nil field of over applied on top.
func (p Params) Merge(over Params) Params {
	if over.Temperature != nil {
		p.Temperature = over.Temperature
	}
	if over.TopP != nil {
		p.TopP = over.TopP
	}
	if over.MaxTokens != nil {
		p.MaxTokens = over.MaxTokens
	}
	return p
}

// DefaultParams are the sampling parameters used when Config.Params leaves a field unset.
func DefaultParams() Params {
	temperature, topP := 0.7, 1.0
	return Params{Temperature: &temperature, TopP: &topP}
}

// ResponseFormat asks the model for JSON matching a schema.
type ResponseFormat struct {
	Type       string     `json:"type"`
	JSONSchema JSONSchema `json:"json_schema"`
}

type JSONSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

// NewJSONSchemaFormat builds a strict json_schema response format.
func NewJSONSchemaFormat(name string, schema json.RawMessage) *ResponseFormat {
	return &ResponseFormat{
		Type:       "json_schema",
		JSONSchema: JSONSchema{Name: name, Strict: true, Schema: schema},
	}
}

// ChatRequest is one call to SendChat or StreamChat. Model and Params override
// the client defaults for this call only.
type ChatRequest struct {
	Messages       []Message
	Model          string
	Params         Params
	ResponseFormat *ResponseFormat
}

type ChatResponse struct {
	Content   string
	Model     string
	CreatedAt time.Time
}

// Config captures the runtime settings required to talk to OpenRouter.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Params  Params
	Referer string
	Title   string
	// NativeSchema forwards response_format upstream in addition to the
	// prompt instruction.
	NativeSchema bool
	Timeout      time.Duration
}

// Client wraps the OpenRouter chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for retry and stream diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRetryMaxAttempts overrides the default attempt count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New constructs a client. The API key is mandatory.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("llm: api key required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	cfg.Params = DefaultParams().Merge(cfg.Params)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}

	client := &Client{
		cfg:              cfg,
		httpClient:       &http.Client{Timeout: cfg.Timeout},
		log:              zap.NewNop(),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.retryMaxAttempts <= 0 {
		client.retryMaxAttempts = 1
	}
	return client, nil
}

// WithDefaultModel returns a copy of the client using model by default.
func (c *Client) WithDefaultModel(model string) *Client {
	clone := *c
	if model = strings.TrimSpace(model); model != "" {
		clone.cfg.Model = model
	}
	return &clone
}

// WithDefaultParams returns a copy of the client with params merged into its defaults.
func (c *Client) WithDefaultParams(params Params) *Client {
	clone := *c
	clone.cfg.Params = c.cfg.Params.Merge(params)
	return &clone
}

// DefaultModel is the model used when a request does not name one.
func (c *Client) DefaultModel() string {
	return c.cfg.Model
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	TopP           *float64        `json:"top_p,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// SendChat issues a chat completion. With a strict ResponseFormat the content
// is guaranteed to be JSON that satisfies the schema.
func (c *Client) SendChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("llm send: at least one message required")
	}

	var validator *schemaValidator
	if req.ResponseFormat != nil && req.ResponseFormat.JSONSchema.Strict {
		v, err := compileSchema(req.ResponseFormat.JSONSchema)
		if err != nil {
			return nil, fmt.Errorf("llm send: %w", err)
		}
		validator = v
	}

	payload := c.buildPayload(req, withSchemaInstruction(req.Messages, req.ResponseFormat))
	if !c.cfg.NativeSchema {
		payload.ResponseFormat = nil
	}

	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		resp, err := c.sendChatOnce(ctx, payload)
		if err == nil && validator != nil {
			err = validator.validate(resp.Content)
		}
		if err == nil {
			return resp, nil
		}
		lastErr = err

		llmErr, ok := AsError(err)
		if !ok || !llmErr.Retryable() || attempt == c.retryMaxAttempts {
			return nil, err
		}

		delay := c.backoffDelay(attempt)
		c.log.Warn("openrouter request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("code", llmErr.Code),
			zap.Error(err))
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) sendChatOnce(ctx context.Context, payload chatCompletionRequest) (*ChatResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/chat/completions", payload, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errorFromResponse(resp)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, &Error{Kind: KindAPI, Code: CodeInvalidResponse, StatusCode: 500, Message: "undecodable response body", Err: err}
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, &Error{Kind: KindAPI, Code: CodeInvalidResponse, StatusCode: 500, Message: "response has no message content"}
	}

	out := &ChatResponse{
		Content: completion.Choices[0].Message.Content,
		Model:   completion.Model,
	}
	if completion.Created > 0 {
		out.CreatedAt = time.Unix(completion.Created, 0).UTC()
	} else {
		out.CreatedAt = time.Now().UTC()
	}
	return out, nil
}

func (c *Client) buildPayload(req ChatRequest, messages []Message) chatCompletionRequest {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.cfg.Model
	}
	params := c.cfg.Params.Merge(req.Params)
	return chatCompletionRequest{
		Model:          model,
		Messages:       messages,
		Temperature:    params.Temperature,
		TopP:           params.TopP,
		MaxTokens:      params.MaxTokens,
		ResponseFormat: req.ResponseFormat,
	}
}

// withSchemaInstruction returns a copy of messages whose system message asks
// for JSON matching format's schema. The input slice is left untouched.
func withSchemaInstruction(messages []Message, format *ResponseFormat) []Message {
	out := make([]Message, len(messages), len(messages)+1)
	copy(out, messages)
	if format == nil || len(format.JSONSchema.Schema) == 0 {
		return out
	}

	schema := string(format.JSONSchema.Schema)
	var indented bytes.Buffer
	if err := json.Indent(&indented, format.JSONSchema.Schema, "", "  "); err == nil {
		schema = indented.String()
	}

	for i := range out {
		if out[i].Role == RoleSystem {
			out[i].Content += "\n\n" + schemaInstruction + schema
			return out
		}
	}
	return append([]Message{{Role: RoleSystem, Content: schemaInstruction + schema}}, out...)
}

func (c *Client) do(ctx context.Context, method, path string, payload any, accept string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("llm request: encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("llm request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", accept)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("llm request: %w", ctxErr)
		}
		return nil, networkError("request to OpenRouter failed", err)
	}
	return resp, nil
}

type errorEnvelope struct {
	Error *struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		// Code is a string or a number depending on the provider.
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

func (e errorEnvelope) code() string {
	if e.Error == nil || len(e.Error.Code) == 0 {
		return ""
	}
	var code string
	if err := json.Unmarshal(e.Error.Code, &code); err == nil {
		return code
	}
	return string(e.Error.Code)
}

// errorFromResponse maps a non-2xx response to an *Error. A body that is not
// JSON is treated as a network failure.
func errorFromResponse(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return networkError("failed to read error response", err)
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return networkError("failed to parse error response", err)
	}

	message, errType := "unknown API error", "unknown_error"
	if envelope.Error != nil {
		if envelope.Error.Message != "" {
			message = envelope.Error.Message
		}
		if envelope.Error.Type != "" {
			errType = envelope.Error.Type
		}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return authenticationError(message)
	case http.StatusTooManyRequests:
		return rateLimitError(message)
	case http.StatusNotFound:
		if errType == CodeModelNotFound || envelope.code() == CodeModelNotFound {
			return modelNotSupportedError(message)
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return networkError("OpenRouter server error", fmt.Errorf("http %d: %s", resp.StatusCode, message))
	}
	return &Error{Kind: KindAPI, Code: errType, StatusCode: resp.StatusCode, Message: message}
}

// backoffDelay is 2^attempt times the base delay: 2s after the first attempt, 4s after the second.
func (c *Client) backoffDelay(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * c.retryBaseDelay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
