package notify

import (
	"becoming_backend/internal/config"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"golang.org/x/time/rate"
)

var (
	ErrNoAPIKey   = errors.New("ai api key not configured")
	ErrNoChoices  = errors.New("ai returned no choices")
	ErrEmptyReply = errors.New("ai returned empty content")
	// ErrTruncatedReply 回复被 max tokens 截断或 JSON 未闭合
	ErrTruncatedReply = errors.New("ai reply truncated")
)

const (
	maxResponseBytes = 1 << 20
	// ai.timeout 之外的传输层上限
	defaultHTTPTimeout = 30 * time.Second
	finishReasonLength = "length"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionRequest struct {
	Model               string          `json:"model"`
	Messages            []ChatMessage   `json:"messages"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
	Temperature         float64         `json:"temperature"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CompletionOptions 单次补全的采样参数
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
	JSON        bool
}

// ChatClient OpenAI 兼容的 chat/completions 客户端。
// 配置可以在运行时整体替换，限流器在所有调用方之间共享。
type ChatClient struct {
	mu         sync.RWMutex
	cfg        config.AIConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewChatClient(cfg config.AIConfig, burst int) *ChatClient {
	if burst < 1 {
		burst = 1
	}
	return &ChatClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    rate.NewLimiter(limitOf(cfg.RequestsPerSecond), burst),
	}
}

func limitOf(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

// Settings 当前生效的 AI 配置快照
func (c *ChatClient) Settings() config.AIConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// UpdateConfig 配置热更新时调用
func (c *ChatClient) UpdateConfig(cfg config.AIConfig) {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	c.limiter.SetLimit(limitOf(cfg.RequestsPerSecond))
}

// Complete 发送一次补全请求并返回第一条回复的内容。不做重试。
func (c *ChatClient) Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) (string, error) {
	cfg := c.Settings()
	if cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for rate limiter: %w", err)
	}

	reqBody := chatCompletionRequest{
		Model:               cfg.Model,
		Messages:            messages,
		Temperature:         opts.Temperature,
		MaxCompletionTokens: opts.MaxTokens,
	}
	if opts.JSON {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", ErrNoChoices
	}

	if result.Choices[0].FinishReason == finishReasonLength {
		return "", ErrTruncatedReply
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}

// CompleteJSON 以 json_object 模式请求并把回复解码到 out
func (c *ChatClient) CompleteJSON(ctx context.Context, messages []ChatMessage, opts CompletionOptions, out interface{}) error {
	opts.JSON = true
	content, err := c.Complete(ctx, messages, opts)
	if err != nil {
		return err
	}
	return decodeJSONContent(content, out)
}

// decodeJSONContent 先严格解析，失败时用 jsonrepair 修复一次再解析。
// 只接受代码块、尾逗号之类的修复，未闭合的字符串或对象视为截断。
func decodeJSONContent(content string, out interface{}) error {
	if err := json.Unmarshal([]byte(content), out); err == nil {
		return nil
	}
	if unterminated(content) {
		return ErrTruncatedReply
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return fmt.Errorf("malformed completion: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("malformed completion after repair: %w", err)
	}
	return nil
}

// unterminated 报告 content 结束时是否仍在字符串内或有未闭合的 { [
func unterminated(content string) bool {
	depth := 0
	inString, escaped := false, false
	for _, r := range content {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '{' || r == '[':
			depth++
		case r == '}' || r == ']':
			depth--
		}
	}
	return inString || depth > 0
}

// truncate 按字符截断，避免切开多字节字符
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
