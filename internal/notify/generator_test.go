package notify

import (
	"becoming_backend/internal/config"
	"becoming_backend/internal/model"
	"becoming_backend/internal/repository"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryRecorder struct {
	mu      sync.Mutex
	entries []*repository.GenerationLog
}

func (r *memoryRecorder) Record(_ context.Context, entry *repository.GenerationLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func completionServer(t *testing.T, status int, content string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestGenerator(baseURL, apiKey string, recorder GenerationRecorder) *OpenAIGenerator {
	chat := NewChatClient(config.AIConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   "gpt-4o",
		Timeout: 2 * time.Second,
	}, 1)
	return NewOpenAIGenerator(chat, nil, fixedRand{}, recorder, zap.NewNop())
}

var calmParent = &model.Goal{
	Title:        "Calm Parent",
	NorthStar:    "I am becoming a calm and present parent.",
	WhyItMatters: "My kids deserve my patience.",
}

func goalRequest() GenerateRequest {
	return GenerateRequest{
		UserID:   7,
		RunID:    "run-1",
		Scope:    model.TargetGoal,
		Goal:     calmParent,
		Tone:     model.ToneDirect,
		Liked:    []string{"liked one"},
		Disliked: []string{"disliked one"},
		Recent:   []string{"recent one"},
	}
}

func TestGenerateSendsExpectedRequest(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"text\":\"Right now you get to choose calm.\",\"type\":\"manifesto\"}"}}]}`))
	}))
	defer srv.Close()

	recorder := &memoryRecorder{}
	content := newTestGenerator(srv.URL, "sk-test", recorder).Generate(context.Background(), goalRequest())

	assert.Equal(t, Content{Text: "Right now you get to choose calm.", Category: model.CategoryManifesto}, content)

	require.NotNil(t, captured)
	assert.Equal(t, "gpt-4o", captured["model"])
	assert.Equal(t, 0.85, captured["temperature"])
	assert.Equal(t, float64(100), captured["max_completion_tokens"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, captured["response_format"])

	messages := captured["messages"].([]interface{})
	require.Len(t, messages, 2)
	system := messages[0].(map[string]interface{})["content"].(string)
	user := messages[1].(map[string]interface{})["content"].(string)
	assert.Contains(t, system, "clear and grounded")
	assert.Contains(t, user, calmParent.NorthStar)
	assert.Contains(t, user, calmParent.WhyItMatters)
	assert.Contains(t, user, "liked one")
	assert.Contains(t, user, "disliked one")
	assert.Contains(t, user, "recent one")

	require.Len(t, recorder.entries, 1)
	assert.False(t, recorder.entries[0].Fallback)
	assert.Equal(t, "goal", recorder.entries[0].Scope)
	assert.Equal(t, uint(7), recorder.entries[0].UserID)
}

func TestGenerateFallsBack(t *testing.T) {
	goalFallback := "What would someone who is Calm Parent choose right now?"

	cases := []struct {
		name    string
		status  int
		content string
	}{
		{"server error", http.StatusInternalServerError, `{"text":"x","type":"inquiry"}`},
		{"malformed body", http.StatusOK, "this is not json"},
		{"invalid type", http.StatusOK, `{"text":"Breathe.","type":"poem"}`},
		{"empty text", http.StatusOK, `{"text":"   ","type":"insight"}`},
		{"too long", http.StatusOK, `{"text":"` + strings.Repeat("a", 121) + `","type":"insight"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := completionServer(t, tc.status, tc.content)
			recorder := &memoryRecorder{}

			content := newTestGenerator(srv.URL, "sk-test", recorder).Generate(context.Background(), goalRequest())
			assert.Equal(t, Content{Text: goalFallback, Category: model.CategoryInquiry, Fallback: true}, content)

			require.Len(t, recorder.entries, 1)
			assert.True(t, recorder.entries[0].Fallback)
			assert.NotEmpty(t, recorder.entries[0].Reason)
		})
	}
}

func TestGenerateTruncatedReplyFallsBack(t *testing.T) {
	goalFallback := Content{
		Text:     "What would someone who is Calm Parent choose right now?",
		Category: model.CategoryInquiry,
		Fallback: true,
	}

	t.Run("finish reason length", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[{"finish_reason":"length","message":{"role":"assistant","content":"{\"type\":\"insight\",\"text\":\"If you feel rushed\"}"}}]}`))
		}))
		defer srv.Close()

		recorder := &memoryRecorder{}
		content := newTestGenerator(srv.URL, "sk-test", recorder).Generate(context.Background(), goalRequest())
		assert.Equal(t, goalFallback, content)
		require.Len(t, recorder.entries, 1)
		assert.Contains(t, recorder.entries[0].Reason, "truncated")
	})

	t.Run("unterminated string", func(t *testing.T) {
		srv, _ := completionServer(t, http.StatusOK, `{"type": "insight", "text": "If you feel rushed, take`)
		content := newTestGenerator(srv.URL, "sk-test", nil).Generate(context.Background(), goalRequest())
		assert.Equal(t, goalFallback, content)
	})

	t.Run("unclosed object", func(t *testing.T) {
		srv, _ := completionServer(t, http.StatusOK, `{"text": "Take one slow breath first.", "type": "insight"`)
		content := newTestGenerator(srv.URL, "sk-test", nil).Generate(context.Background(), goalRequest())
		assert.Equal(t, goalFallback, content)
	})
}

func TestGenerateRepairsCosmeticJSON(t *testing.T) {
	cases := map[string]string{
		"code fence":     "```json\n{\"text\": \"Take one slow breath first.\", \"type\": \"insight\"}\n```",
		"trailing comma": `{"text": "Take one slow breath first.", "type": "insight",}`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := completionServer(t, http.StatusOK, reply)
			content := newTestGenerator(srv.URL, "sk-test", nil).Generate(context.Background(), goalRequest())
			assert.Equal(t, Content{Text: "Take one slow breath first.", Category: model.CategoryInsight}, content)
		})
	}
}

func TestUnterminated(t *testing.T) {
	assert.False(t, unterminated(`{"text":"a } brace","type":"insight"}`))
	assert.False(t, unterminated(`{"text":"escaped \" quote"}`))
	assert.True(t, unterminated(`{"text":"cut`))
	assert.True(t, unterminated(`{"text":"done"`))
	assert.True(t, unterminated(`{"list":["a"`))
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "平静的...", truncate("平静的父母", 3))
	assert.Equal(t, "ab...", truncate("abcdef", 2))
}

func TestGenerateWithoutAPIKeyNeverCallsProvider(t *testing.T) {
	srv, calls := completionServer(t, http.StatusOK, `{"text":"x","type":"inquiry"}`)

	req := GenerateRequest{Scope: model.TargetIdentity, Mission: "I build and nurture with intention.", Tone: model.ToneGentle}
	content := newTestGenerator(srv.URL, "", nil).Generate(context.Background(), req)

	assert.Equal(t, IdentityFallbackText, content.Text)
	assert.Equal(t, model.CategoryInquiry, content.Category)
	assert.True(t, content.Fallback)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestGenerateTimeoutFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	chat := NewChatClient(config.AIConfig{BaseURL: srv.URL, APIKey: "sk-test", Timeout: 50 * time.Millisecond}, 1)
	gen := NewOpenAIGenerator(chat, nil, fixedRand{}, nil, zap.NewNop())

	started := time.Now()
	content := gen.Generate(context.Background(), goalRequest())
	assert.True(t, content.Fallback)
	assert.Less(t, time.Since(started), time.Second)
}

func TestGenerateTemplateFallback(t *testing.T) {
	bank, err := LoadTemplateBank()
	require.NoError(t, err)

	chat := NewChatClient(config.AIConfig{TemplateFallback: true}, 1)
	gen := NewOpenAIGenerator(chat, bank, fixedRand{i: 1}, nil, zap.NewNop())

	content := gen.Generate(context.Background(), goalRequest())
	assert.True(t, content.Fallback)
	assert.Contains(t, content.Text, "Calm Parent")
	assert.True(t, content.Category.Valid())
	assert.Equal(t, 1, bank.IndexOf(model.ToneDirect, content.Text, "Calm Parent"))
}

func TestUpdateConfigSwapsSettings(t *testing.T) {
	srv, calls := completionServer(t, http.StatusOK, `{"text":"Who are you choosing to be?","type":"inquiry"}`)

	chat := NewChatClient(config.AIConfig{BaseURL: srv.URL}, 1)
	gen := NewOpenAIGenerator(chat, nil, fixedRand{}, nil, zap.NewNop())

	assert.True(t, gen.Generate(context.Background(), goalRequest()).Fallback)

	chat.UpdateConfig(config.AIConfig{BaseURL: srv.URL, APIKey: "sk-new", Model: "gpt-4o-mini", Timeout: time.Second})
	content := gen.Generate(context.Background(), goalRequest())
	assert.False(t, content.Fallback)
	assert.Equal(t, "gpt-4o-mini", chat.Settings().Model)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}
