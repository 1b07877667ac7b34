package notify

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/repository"
	"becoming_backend/internal/util"
	"becoming_backend/pkg/monitoring"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	signalTemperature = 0.85
	signalMaxTokens   = 100

	// IdentityFallbackText 使命范围的固定兜底文本
	IdentityFallbackText = "What small choice right now would honor who you are becoming?"
	goalFallbackFormat   = "What would someone who is %s choose right now?"
)

var (
	errEmptySignal   = errors.New("signal text is empty")
	errSignalTooLong = errors.New("signal text exceeds length limit")
)

// Content 生成的信号内容
type Content struct {
	Text     string
	Category model.SignalCategory
	Fallback bool
}

// GenerateRequest 一次生成所需的上下文
type GenerateRequest struct {
	UserID   uint
	RunID    string
	Scope    model.TargetType
	Goal     *model.Goal
	Mission  string
	Tone     model.Tone
	Liked    []string
	Disliked []string
	Recent   []string
}

// Identity 目标范围取目标标题，使命范围取使命文本
func (r GenerateRequest) Identity() string {
	if r.Scope == model.TargetGoal && r.Goal != nil {
		return r.Goal.Title
	}
	return r.Mission
}

// Generator 生成信号内容，任何失败都以兜底内容返回
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) Content
}

// FallbackContent 固定的兜底内容
func FallbackContent(req GenerateRequest) Content {
	if req.Scope == model.TargetGoal && req.Goal != nil {
		return Content{
			Text:     fmt.Sprintf(goalFallbackFormat, req.Goal.Title),
			Category: model.CategoryInquiry,
			Fallback: true,
		}
	}
	return Content{
		Text:     IdentityFallbackText,
		Category: model.CategoryInquiry,
		Fallback: true,
	}
}

type OpenAIGenerator struct {
	chat     *ChatClient
	bank     *TemplateBank
	rnd      Rand
	recorder GenerationRecorder
	log      *zap.Logger
}

func NewOpenAIGenerator(chat *ChatClient, bank *TemplateBank, rnd Rand, recorder GenerationRecorder, log *zap.Logger) *OpenAIGenerator {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &OpenAIGenerator{
		chat:     chat,
		bank:     bank,
		rnd:      rnd,
		recorder: recorder,
		log:      log,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) Content {
	req.Tone = req.Tone.OrDefault()
	cfg := g.chat.Settings()
	start := time.Now()

	content, err := g.request(ctx, req)
	reason := ""
	if err != nil {
		reason = err.Error()
		content = g.fallback(cfg.TemplateFallback, req)
		g.log.Warn("Signal generation fell back",
			zap.String("run_id", req.RunID),
			zap.Uint("user_id", req.UserID),
			zap.String("scope", string(req.Scope)),
			zap.Error(err))
	}

	source := "model"
	if content.Fallback {
		source = "fallback"
	}
	monitoring.SignalsTotal.WithLabelValues(string(req.Scope), source).Inc()

	g.recorder.Record(ctx, &repository.GenerationLog{
		UserID:    req.UserID,
		RunID:     req.RunID,
		Scope:     string(req.Scope),
		Tone:      string(req.Tone),
		Model:     cfg.Model,
		Category:  string(content.Category),
		Text:      content.Text,
		Fallback:  content.Fallback,
		Reason:    reason,
		LatencyMS: time.Since(start).Milliseconds(),
	})
	return content
}

func (g *OpenAIGenerator) request(ctx context.Context, req GenerateRequest) (Content, error) {
	messages := []ChatMessage{
		{Role: "system", Content: systemPrompt(req.Scope, req.Tone)},
		{Role: "user", Content: userPrompt(req)},
	}

	var out struct {
		Text string               `json:"text"`
		Type model.SignalCategory `json:"type"`
	}
	opts := CompletionOptions{Temperature: signalTemperature, MaxTokens: signalMaxTokens}
	if err := g.chat.CompleteJSON(ctx, messages, opts, &out); err != nil {
		return Content{}, err
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return Content{}, errEmptySignal
	}
	if !out.Type.Valid() {
		return Content{}, fmt.Errorf("invalid signal type %q", out.Type)
	}
	if utf8.RuneCountInString(text) > util.MaxSignalLength {
		return Content{}, errSignalTooLong
	}
	return Content{Text: text, Category: out.Type}, nil
}

// fallback 默认使用固定文本；开启模板兜底时从语气内容池中挑选并避开最近用过的模板
func (g *OpenAIGenerator) fallback(useTemplates bool, req GenerateRequest) Content {
	identity := req.Identity()
	if !useTemplates || g.bank == nil || identity == "" {
		return FallbackContent(req)
	}

	avoid := g.bank.RecentIndices(req.Tone, identity, req.Recent)
	pick := g.bank.Pick(req.Tone, identity, avoid, g.rnd)
	return Content{Text: pick.Text, Category: pick.Category, Fallback: true}
}
