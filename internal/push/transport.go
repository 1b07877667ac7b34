package push

import (
	"becoming_backend/internal/config"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	ProviderExpo = "expo"
	ProviderFCM  = "fcm"

	SoundDefault = "default"
	PriorityHigh = "high"
)

var ErrInvalidToken = errors.New("invalid push token")

// Message 一条待投递的推送
type Message struct {
	UserID   uint
	Token    string
	Title    string
	Body     string
	Data     map[string]string
	Sound    string
	Priority string
}

// Result 单条推送的投递结果，与输入顺序一一对应
type Result struct {
	Message Message
	OK      bool
	ID      string
	Err     error
}

// Transport 推送通道。Send 从不因单条失败而中断，失败体现在对应的 Result 中。
type Transport interface {
	Name() string
	ValidToken(token string) bool
	Send(ctx context.Context, msgs []Message) []Result
}

// New 按配置创建推送通道
func New(ctx context.Context, cfg config.PushConfig, log *zap.Logger) (Transport, error) {
	switch cfg.Provider {
	case "", ProviderExpo:
		return NewExpoTransport(cfg, log), nil
	case ProviderFCM:
		return NewFCMTransport(ctx, cfg.FirebaseCredentials, log)
	default:
		return nil, fmt.Errorf("unknown push provider %q", cfg.Provider)
	}
}

// chunk 按 size 切分
func chunk[T any](items []T, size int) [][]T {
	var chunks [][]T
	for size < len(items) {
		items, chunks = items[size:], append(chunks, items[:size])
	}
	if len(items) > 0 {
		chunks = append(chunks, items)
	}
	return chunks
}

// partition 校验地址，非法的直接写入失败结果，返回合法消息的下标
func partition(msgs []Message, valid func(string) bool, results []Result) []int {
	indices := make([]int, 0, len(msgs))
	for i, msg := range msgs {
		results[i].Message = msg
		if !valid(msg.Token) {
			results[i].Err = ErrInvalidToken
			continue
		}
		indices = append(indices, i)
	}
	return indices
}

// Failed 统计失败条数
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK {
			n++
		}
	}
	return n
}
