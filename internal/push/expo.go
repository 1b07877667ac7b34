package push

import (
	"becoming_backend/internal/config"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultExpoURL = "https://exp.host/--/api/v2/push/send"
	expoChunkSize  = 100
)

var expoTokenPattern = regexp.MustCompile(
	`^(?:(?:Exponent|Expo)PushToken\[.+\]|(?i:[a-z\d]{8}-[a-z\d]{4}-[a-z\d]{4}-[a-z\d]{4}-[a-z\d]{12}))$`)

type expoMessage struct {
	To       string            `json:"to"`
	Title    string            `json:"title,omitempty"`
	Body     string            `json:"body"`
	Data     map[string]string `json:"data,omitempty"`
	Sound    string            `json:"sound,omitempty"`
	Priority string            `json:"priority,omitempty"`
}

type expoTicket struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
	Details struct {
		Error string `json:"error"`
	} `json:"details"`
}

type expoResponse struct {
	Data   []expoTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// ExpoTransport Expo 推送服务
type ExpoTransport struct {
	url         string
	accessToken string
	client      *http.Client
	log         *zap.Logger
}

func NewExpoTransport(cfg config.PushConfig, log *zap.Logger) *ExpoTransport {
	url := cfg.ExpoURL
	if url == "" {
		url = DefaultExpoURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ExpoTransport{
		url:         url,
		accessToken: cfg.ExpoAccessToken,
		client:      &http.Client{Timeout: timeout},
		log:         log,
	}
}

func (t *ExpoTransport) Name() string {
	return ProviderExpo
}

// ValidToken ExponentPushToken[...]、ExpoPushToken[...] 或裸 UUID
func (t *ExpoTransport) ValidToken(token string) bool {
	return expoTokenPattern.MatchString(token)
}

func (t *ExpoTransport) Send(ctx context.Context, msgs []Message) []Result {
	results := make([]Result, len(msgs))
	valid := partition(msgs, t.ValidToken, results)

	for _, idx := range chunk(valid, expoChunkSize) {
		batch := make([]expoMessage, len(idx))
		for j, i := range idx {
			m := msgs[i]
			batch[j] = expoMessage{
				To:       m.Token,
				Title:    m.Title,
				Body:     m.Body,
				Data:     m.Data,
				Sound:    m.Sound,
				Priority: m.Priority,
			}
		}

		tickets, err := t.post(ctx, batch)
		if err != nil {
			t.log.Error("Expo push chunk failed", zap.Int("size", len(batch)), zap.Error(err))
			for _, i := range idx {
				results[i].Err = err
			}
			continue
		}

		for j, i := range idx {
			if j >= len(tickets) {
				results[i].Err = errors.New("expo returned no ticket")
				continue
			}
			ticket := tickets[j]
			if ticket.Status != "ok" {
				results[i].Err = ticketError(ticket)
				continue
			}
			results[i].OK = true
			results[i].ID = ticket.ID
		}
	}
	return results
}

func (t *ExpoTransport) post(ctx context.Context, batch []expoMessage) ([]expoTicket, error) {
	jsonData, err := json.Marshal(batch)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if t.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("expo push error (status %d): %s", resp.StatusCode, string(body))
	}

	var result expoResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode expo response: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("expo push error %s: %s", result.Errors[0].Code, result.Errors[0].Message)
	}
	return result.Data, nil
}

func ticketError(ticket expoTicket) error {
	if ticket.Details.Error != "" {
		return fmt.Errorf("expo ticket %s: %s", ticket.Details.Error, ticket.Message)
	}
	return fmt.Errorf("expo ticket error: %s", ticket.Message)
}
