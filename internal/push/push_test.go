package push

import (
	"becoming_backend/internal/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExpoValidToken(t *testing.T) {
	tr := NewExpoTransport(config.PushConfig{}, zap.NewNop())

	cases := []struct {
		token string
		valid bool
	}{
		{"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxx]", true},
		{"ExpoPushToken[abc]", true},
		{"0d1f9c2e-4b5a-4c3d-9e8f-7a6b5c4d3e2f", true},
		{"0D1F9C2E-4B5A-4C3D-9E8F-7A6B5C4D3E2F", true},
		{"ExponentPushToken[]", false},
		{"ExponentPushToken[abc", false},
		{"fcm-token-without-brackets", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.valid, tr.ValidToken(tc.token), tc.token)
	}
}

func expoServer(t *testing.T, handle func(call int, batch []expoMessage) (int, interface{})) (*httptest.Server, *[]int) {
	t.Helper()
	var (
		mu    sync.Mutex
		sizes []int
		calls int32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var batch []expoMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&batch))

		mu.Lock()
		sizes = append(sizes, len(batch))
		mu.Unlock()

		status, body := handle(int(atomic.AddInt32(&calls, 1)), batch)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &sizes
}

func messages(n int) []Message {
	msgs := make([]Message, n)
	for i := range msgs {
		msgs[i] = Message{
			UserID:   uint(i + 1),
			Token:    fmt.Sprintf("ExponentPushToken[tok-%03d]", i),
			Title:    "The Becoming",
			Body:     "What would someone who is Calm Parent choose right now?",
			Data:     map[string]string{"type": "scheduled_signal"},
			Sound:    SoundDefault,
			Priority: PriorityHigh,
		}
	}
	return msgs
}

func TestExpoSendChunksAndMapsTickets(t *testing.T) {
	srv, sizes := expoServer(t, func(_ int, batch []expoMessage) (int, interface{}) {
		tickets := make([]expoTicket, len(batch))
		for i, m := range batch {
			if strings.Contains(m.To, "tok-007") {
				tickets[i] = expoTicket{Status: "error", Message: "not registered"}
				tickets[i].Details.Error = "DeviceNotRegistered"
				continue
			}
			tickets[i] = expoTicket{Status: "ok", ID: "ticket-" + m.To}
		}
		return http.StatusOK, expoResponse{Data: tickets}
	})

	tr := NewExpoTransport(config.PushConfig{ExpoURL: srv.URL}, zap.NewNop())

	msgs := messages(150)
	msgs[3].Token = "not-a-token"

	results := tr.Send(context.Background(), msgs)
	require.Len(t, results, 150)
	assert.Equal(t, []int{100, 49}, *sizes)

	assert.ErrorIs(t, results[3].Err, ErrInvalidToken)
	assert.False(t, results[3].OK)
	assert.Equal(t, uint(4), results[3].Message.UserID)

	assert.False(t, results[7].OK)
	assert.Contains(t, results[7].Err.Error(), "DeviceNotRegistered")

	assert.True(t, results[0].OK)
	assert.Equal(t, "ticket-ExponentPushToken[tok-000]", results[0].ID)
	assert.True(t, results[149].OK)
	assert.Equal(t, 2, Failed(results))
}

func TestExpoChunkFailureIsIsolated(t *testing.T) {
	srv, sizes := expoServer(t, func(call int, batch []expoMessage) (int, interface{}) {
		if call == 1 {
			return http.StatusInternalServerError, map[string]string{"error": "boom"}
		}
		tickets := make([]expoTicket, len(batch))
		for i := range tickets {
			tickets[i] = expoTicket{Status: "ok", ID: "id"}
		}
		return http.StatusOK, expoResponse{Data: tickets}
	})

	tr := NewExpoTransport(config.PushConfig{ExpoURL: srv.URL}, zap.NewNop())
	results := tr.Send(context.Background(), messages(120))

	assert.Equal(t, []int{100, 20}, *sizes)
	for i := 0; i < 100; i++ {
		assert.False(t, results[i].OK)
		assert.Error(t, results[i].Err)
	}
	for i := 100; i < 120; i++ {
		assert.True(t, results[i].OK)
	}
	assert.Equal(t, 100, Failed(results))
}

func TestExpoAllInvalidSendsNothing(t *testing.T) {
	srv, sizes := expoServer(t, func(int, []expoMessage) (int, interface{}) {
		return http.StatusOK, expoResponse{}
	})
	tr := NewExpoTransport(config.PushConfig{ExpoURL: srv.URL}, zap.NewNop())

	results := tr.Send(context.Background(), []Message{{Token: "bogus"}})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, ErrInvalidToken)
	assert.Empty(t, *sizes)
}

type fakeSender struct {
	batches [][]*messaging.Message
	err     error
}

func (f *fakeSender) SendEach(_ context.Context, msgs []*messaging.Message) (*messaging.BatchResponse, error) {
	f.batches = append(f.batches, msgs)
	if f.err != nil {
		return nil, f.err
	}
	br := &messaging.BatchResponse{}
	for i, m := range msgs {
		if i%2 == 1 {
			br.Responses = append(br.Responses, &messaging.SendResponse{Error: errors.New("unregistered")})
			br.FailureCount++
			continue
		}
		br.Responses = append(br.Responses, &messaging.SendResponse{Success: true, MessageID: "m-" + m.Token[:4]})
		br.SuccessCount++
	}
	return br, nil
}

func TestFCMValidToken(t *testing.T) {
	tr := &FCMTransport{log: zap.NewNop()}

	cases := []struct {
		token string
		valid bool
	}{
		{"dQw4w9WgXcQ:APA91bHun4MxP5egoKMwt2KZFBaFUH-1RYqx_" + strings.Repeat("a", 100), true},
		{strings.Repeat("a", 32), true},
		{strings.Repeat("a", 4096), true},
		{strings.Repeat("a", 4097), false},
		{strings.Repeat("a", 31), false},
		{"ExponentPushToken[xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx]", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.valid, tr.ValidToken(tc.token), "len=%d", len(tc.token))
	}
}

func TestFCMSendMapsResponses(t *testing.T) {
	sender := &fakeSender{}
	tr := &FCMTransport{client: sender, log: zap.NewNop()}

	valid := strings.Repeat("a", 40)
	msgs := []Message{
		{UserID: 1, Token: "aaaa" + valid, Title: "The Becoming", Body: "b", Sound: SoundDefault, Priority: PriorityHigh},
		{UserID: 2, Token: "short"},
		{UserID: 3, Token: "bbbb" + valid},
	}
	results := tr.Send(context.Background(), msgs)

	require.Len(t, sender.batches, 1)
	require.Len(t, sender.batches[0], 2)
	assert.Equal(t, "high", sender.batches[0][0].Android.Priority)
	assert.Equal(t, "default", sender.batches[0][0].APNS.Payload.Aps.Sound)

	assert.True(t, results[0].OK)
	assert.Equal(t, "m-aaaa", results[0].ID)
	assert.ErrorIs(t, results[1].Err, ErrInvalidToken)
	assert.False(t, results[2].OK)
	assert.EqualError(t, results[2].Err, "unregistered")
}

func TestFCMBatchErrorFailsChunk(t *testing.T) {
	tr := &FCMTransport{client: &fakeSender{err: errors.New("unavailable")}, log: zap.NewNop()}
	results := tr.Send(context.Background(), []Message{{Token: strings.Repeat("x", 64)}})
	assert.False(t, results[0].OK)
	assert.EqualError(t, results[0].Err, "unavailable")
}

func TestChunk(t *testing.T) {
	assert.Nil(t, chunk([]int{}, 3))
	assert.Equal(t, [][]int{{1, 2, 3}, {4}}, chunk([]int{1, 2, 3, 4}, 3))
	assert.Equal(t, [][]int{{1, 2}}, chunk([]int{1, 2}, 2))
}
