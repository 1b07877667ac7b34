package push

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	// SendEach 单次最多 500 条
	fcmChunkSize = 500
	// RE2 的重复次数上限是 1000，长度上限单独判断
	fcmMaxTokenLen = 4096
)

var fcmTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_:\-]{32,}$`)

type fcmSender interface {
	SendEach(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
}

// FCMTransport Firebase Cloud Messaging
type FCMTransport struct {
	client fcmSender
	log    *zap.Logger
}

func NewFCMTransport(ctx context.Context, credentialsPath string, log *zap.Logger) (*FCMTransport, error) {
	if credentialsPath == "" {
		return nil, errors.New("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase messaging client: %w", err)
	}

	log.Info("Firebase messaging client initialized")
	return &FCMTransport{client: client, log: log}, nil
}

func (t *FCMTransport) Name() string {
	return ProviderFCM
}

func (t *FCMTransport) ValidToken(token string) bool {
	return len(token) <= fcmMaxTokenLen && fcmTokenPattern.MatchString(token)
}

func (t *FCMTransport) Send(ctx context.Context, msgs []Message) []Result {
	results := make([]Result, len(msgs))
	valid := partition(msgs, t.ValidToken, results)

	for _, idx := range chunk(valid, fcmChunkSize) {
		batch := make([]*messaging.Message, len(idx))
		for j, i := range idx {
			batch[j] = toFCM(msgs[i])
		}

		br, err := t.client.SendEach(ctx, batch)
		if err != nil {
			t.log.Error("FCM push chunk failed", zap.Int("size", len(batch)), zap.Error(err))
			for _, i := range idx {
				results[i].Err = err
			}
			continue
		}

		for j, i := range idx {
			if j >= len(br.Responses) || br.Responses[j] == nil {
				results[i].Err = errors.New("fcm returned no response")
				continue
			}
			resp := br.Responses[j]
			if !resp.Success {
				results[i].Err = resp.Error
				continue
			}
			results[i].OK = true
			results[i].ID = resp.MessageID
		}
	}
	return results
}

func toFCM(m Message) *messaging.Message {
	priority := "normal"
	if m.Priority == PriorityHigh {
		priority = "high"
	}
	return &messaging.Message{
		Token: m.Token,
		Notification: &messaging.Notification{
			Title: m.Title,
			Body:  m.Body,
		},
		Data: m.Data,
		Android: &messaging.AndroidConfig{
			Priority:     priority,
			Notification: &messaging.AndroidNotification{Sound: m.Sound},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: m.Sound},
			},
		},
	}
}
