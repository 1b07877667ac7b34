package service

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/notify"
	"becoming_backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	reframeTemperature = 0.7
	reframeMaxTokens   = 300
	missionTemperature = 0.7
	missionMaxTokens   = 100

	// FallbackWhyItMatters 改写失败时的固定说明
	FallbackWhyItMatters = "This matters because it aligns with your deepest potential. Every step you take toward this identity is a declaration of who you are becoming."
	// FallbackMission 使命生成失败时的固定文本
	FallbackMission = "I am committed to my evolution."
)

// Reframe 目标改写结果
type Reframe struct {
	NorthStar    string `json:"northStar"`
	WhyItMatters string `json:"whyItMatters"`
	Fallback     bool   `json:"fallback"`
}

// AIService 按需调用文本生成
type AIService struct {
	Chat         *notify.ChatClient
	Selector     *notify.Selector
	Generator    notify.Generator
	GoalRepo     *repository.GoalRepository
	SignalRepo   *repository.SignalRepository
	SettingsRepo *repository.SettingsRepository
	HistorySize  int
	Log          *zap.Logger
}

func NewAIService(
	chat *notify.ChatClient,
	selector *notify.Selector,
	generator notify.Generator,
	goalRepo *repository.GoalRepository,
	signalRepo *repository.SignalRepository,
	settingsRepo *repository.SettingsRepository,
	historySize int,
	log *zap.Logger,
) *AIService {
	if historySize < 1 {
		historySize = notify.DefaultHistorySize
	}
	return &AIService{
		Chat:         chat,
		Selector:     selector,
		Generator:    generator,
		GoalRepo:     goalRepo,
		SignalRepo:   signalRepo,
		SettingsRepo: settingsRepo,
		HistorySize:  historySize,
		Log:          log,
	}
}

// ReframeGoal 把目标改写为身份陈述，失败时返回确定性的兜底
func (s *AIService) ReframeGoal(ctx context.Context, title, note string, tone model.Tone) Reframe {
	title = strings.TrimSpace(title)

	var out struct {
		NorthStar    string `json:"northStar"`
		WhyItMatters string `json:"whyItMatters"`
	}
	messages := []notify.ChatMessage{
		{Role: "system", Content: reframeSystemPrompt(tone.OrDefault())},
		{Role: "user", Content: fmt.Sprintf("Goal: %s\nContext: %s", title, strings.TrimSpace(note))},
	}
	err := s.Chat.CompleteJSON(ctx, messages, notify.CompletionOptions{
		Temperature: reframeTemperature,
		MaxTokens:   reframeMaxTokens,
		JSON:        true,
	}, &out)
	if err == nil && strings.TrimSpace(out.NorthStar) != "" {
		why := strings.TrimSpace(out.WhyItMatters)
		if why == "" {
			why = FallbackWhyItMatters
		}
		return Reframe{NorthStar: strings.TrimSpace(out.NorthStar), WhyItMatters: why}
	}
	if err == nil {
		err = errors.New("empty northStar")
	}

	s.Log.Warn("Goal reframe failed, using fallback", zap.Error(err))
	return Reframe{
		NorthStar:    ReframeFallback(title),
		WhyItMatters: FallbackWhyItMatters,
		Fallback:     true,
	}
}

// ReframeFallback 不依赖模型的身份陈述
func ReframeFallback(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	switch {
	case strings.HasPrefix(t, "become "):
		return "I am becoming " + strings.TrimPrefix(t, "become ") + "."
	case strings.HasPrefix(t, "be "):
		return "I am becoming " + strings.TrimPrefix(t, "be ") + "."
	}
	return "I am someone who " + strings.TrimPrefix(t, "to ") + "."
}

// GenerateMission 根据用户已保存的目标合成一句使命
func (s *AIService) GenerateMission(ctx context.Context, userID uint) (string, bool, error) {
	goals, err := s.GoalRepo.ListByUser(ctx, userID)
	if err != nil {
		return "", false, err
	}

	parts := make([]string, 0, len(goals))
	for _, g := range goals {
		line := g.NorthStar
		if line == "" {
			line = g.Title
		}
		if g.Note != "" {
			line += " (" + g.Note + ")"
		}
		parts = append(parts, "- "+line)
	}

	var out struct {
		MainMission string `json:"mainMission"`
	}
	messages := []notify.ChatMessage{
		{Role: "system", Content: missionSystemPrompt},
		{Role: "user", Content: "Identity goals:\n" + strings.Join(parts, "\n")},
	}
	err = s.Chat.CompleteJSON(ctx, messages, notify.CompletionOptions{
		Temperature: missionTemperature,
		MaxTokens:   missionMaxTokens,
		JSON:        true,
	}, &out)
	if err == nil && strings.TrimSpace(out.MainMission) != "" {
		return strings.TrimSpace(out.MainMission), false, nil
	}
	if err == nil {
		err = errors.New("empty mainMission")
	}

	s.Log.Warn("Mission generation failed, using fallback", zap.Uint("user_id", userID), zap.Error(err))
	return FallbackMission, true, nil
}

// GenerateSignal 为当前用户立即生成并保存一条信号，不推送
func (s *AIService) GenerateSignal(ctx context.Context, userID uint) (*model.Signal, error) {
	settings, err := s.SettingsRepo.FindOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	goals, err := s.GoalRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := s.SignalRepo.RecentByUser(ctx, userID, s.HistorySize)
	if err != nil {
		return nil, err
	}

	target, err := s.Selector.Select(goals, settings.MainMission, history)
	if err != nil {
		return nil, err
	}

	steering := notify.SteeringContext(history)
	content := s.Generator.Generate(ctx, notify.GenerateRequest{
		UserID:   userID,
		Scope:    target.Scope,
		Goal:     target.Goal,
		Mission:  target.Mission,
		Tone:     settings.Tone,
		Liked:    steering.Liked,
		Disliked: steering.Disliked,
		Recent:   steering.Recent,
	})

	signal := &model.Signal{
		UserID:         userID,
		Text:           content.Text,
		Category:       content.Category,
		TargetType:     target.Scope,
		TargetIdentity: target.Label(),
		Feedback:       model.FeedbackNone,
		Origin:         model.OriginOnDemand,
	}
	if err := s.SignalRepo.Create(ctx, signal); err != nil {
		return nil, err
	}
	return signal, nil
}

var missionSystemPrompt = `You condense a person's identity goals into one mission statement.
Write a single first-person sentence in the present tense, under 25 words, that ties the goals together.
Return JSON: {"mainMission": "..."}`

func reframeSystemPrompt(tone model.Tone) string {
	return fmt.Sprintf(`You turn goals into identity statements.
Rewrite the goal as who the person is becoming, in the first person and present tense, in one sentence.
Then explain in two sentences why this identity matters to them.
Keep a %s voice.
Return JSON: {"northStar": "...", "whyItMatters": "..."}`, tone)
}
