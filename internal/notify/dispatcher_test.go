package notify

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/push"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu       sync.Mutex
	due      []model.DueUser
	dueErr   error
	goals    map[uint][]model.Goal
	history  map[uint][]model.Signal
	goalsErr map[uint]error
	saveErr  map[uint]error
	slots    []model.Slot
	saved    []*model.Signal
}

func (s *fakeStore) FindDue(_ context.Context, slot model.Slot) ([]model.DueUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots = append(s.slots, slot)
	return s.due, s.dueErr
}

func (s *fakeStore) Goals(_ context.Context, userID uint) ([]model.Goal, error) {
	if err := s.goalsErr[userID]; err != nil {
		return nil, err
	}
	return s.goals[userID], nil
}

func (s *fakeStore) RecentSignals(_ context.Context, userID uint, limit int) ([]model.Signal, error) {
	h := s.history[userID]
	if len(h) > limit {
		h = h[:limit]
	}
	return h, nil
}

func (s *fakeStore) SaveSignal(_ context.Context, signal *model.Signal) error {
	if err := s.saveErr[signal.UserID]; err != nil {
		return err
	}
	signal.ID = model.NewID()
	signal.CreatedAt = time.Date(2026, time.October, 21, 10, 0, 1, 0, time.UTC)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, signal)
	return nil
}

type fakeGenerator struct {
	mu       sync.Mutex
	requests []GenerateRequest
	panicFor uint
}

func (g *fakeGenerator) Generate(_ context.Context, req GenerateRequest) Content {
	if req.UserID == g.panicFor {
		panic("generator exploded")
	}
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	return Content{Text: "Act as " + req.Identity() + " now.", Category: model.CategoryInsight}
}

type fakeTransport struct {
	mu     sync.Mutex
	calls  [][]push.Message
	failed map[string]bool
}

func (f *fakeTransport) Name() string                 { return "fake" }
func (f *fakeTransport) ValidToken(token string) bool { return token != "" }

func (f *fakeTransport) Send(_ context.Context, msgs []push.Message) []push.Result {
	f.mu.Lock()
	f.calls = append(f.calls, msgs)
	f.mu.Unlock()

	results := make([]push.Result, len(msgs))
	for i, m := range msgs {
		results[i] = push.Result{Message: m, OK: !f.failed[m.Token], ID: "ticket"}
		if f.failed[m.Token] {
			results[i].Err = errors.New("device not registered")
		}
	}
	return results
}

// 2026-10-21 是星期三
var wednesdayTen = time.Date(2026, time.October, 21, 10, 0, 30, 0, time.UTC)

func newTestDispatcher(t *testing.T, store Store, gen Generator, tr push.Transport, rnd Rand) *Dispatcher {
	t.Helper()
	guard, err := NewMemorySlotGuard(128)
	require.NoError(t, err)
	return NewDispatcher(store, NewSelector(rnd), gen, tr, guard, Options{Location: time.UTC, Workers: 3}, zap.NewNop())
}

func dueUser(id uint, token string) model.DueUser {
	return model.DueUser{
		UserID:           id,
		Name:             "user",
		Tone:             model.ToneDirect,
		MainMission:      "I build and nurture with intention.",
		NotificationTime: "10:00",
		NotificationDays: model.Weekdays{"Mon", "Wed", "Fri"},
		Token:            token,
	}
}

func TestTickEndToEnd(t *testing.T) {
	store := &fakeStore{
		due:   []model.DueUser{dueUser(1, "ExponentPushToken[u1]")},
		goals: map[uint][]model.Goal{1: goals("Prolific Builder", "Calm Parent")},
		history: map[uint][]model.Signal{1: {
			{Text: "first", TargetType: model.TargetGoal, TargetIdentity: "Prolific Builder", Feedback: model.FeedbackLike},
			{Text: "second", TargetType: model.TargetGoal, TargetIdentity: "Prolific Builder", Feedback: model.FeedbackDislike},
		}},
	}
	gen := &fakeGenerator{}
	tr := &fakeTransport{}

	report := newTestDispatcher(t, store, gen, tr, fixedRand{f: 0.9}).Tick(context.Background(), wednesdayTen)

	require.NoError(t, report.Err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, model.Slot{Time: "10:00", Weekday: "Wed", Date: "2026-10-21"}, store.slots[0])
	assert.Equal(t, 1, report.Due)
	assert.Equal(t, 1, report.Generated)
	assert.Equal(t, 1, report.Delivered)
	assert.Zero(t, report.Failed)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, model.TargetGoal, req.Scope)
	assert.Equal(t, "Calm Parent", req.Goal.Title)
	assert.Equal(t, model.ToneDirect, req.Tone)
	assert.Equal(t, []string{"first", "second"}, req.Recent)
	assert.Equal(t, []string{"first"}, req.Liked)
	assert.Equal(t, []string{"second"}, req.Disliked)

	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	assert.Equal(t, model.TargetGoal, saved.TargetType)
	assert.Equal(t, "Calm Parent", saved.TargetIdentity)
	assert.Equal(t, model.FeedbackNone, saved.Feedback)
	assert.Equal(t, model.OriginScheduled, saved.Origin)

	require.Len(t, tr.calls, 1)
	require.Len(t, tr.calls[0], 1)
	msg := tr.calls[0][0]
	assert.Equal(t, "ExponentPushToken[u1]", msg.Token)
	assert.Equal(t, PushTitle, msg.Title)
	assert.Equal(t, saved.Text, msg.Body)
	assert.Equal(t, push.SoundDefault, msg.Sound)
	assert.Equal(t, push.PriorityHigh, msg.Priority)
	assert.Equal(t, map[string]string{
		"type":           "scheduled_signal",
		"signalId":       saved.ID,
		"text":           saved.Text,
		"signalType":     "insight",
		"targetType":     "goal",
		"targetIdentity": "Calm Parent",
		"timestamp":      "2026-10-21T10:00:01Z",
	}, msg.Data)
}

func TestTickUsesConfiguredLocation(t *testing.T) {
	store := &fakeStore{}
	guard, err := NewMemorySlotGuard(8)
	require.NoError(t, err)

	tokyo := time.FixedZone("JST", 9*60*60)
	d := NewDispatcher(store, NewSelector(fixedRand{}), &fakeGenerator{}, &fakeTransport{}, guard, Options{Location: tokyo}, zap.NewNop())
	d.Tick(context.Background(), wednesdayTen)

	assert.Equal(t, model.Slot{Time: "19:00", Weekday: "Wed", Date: "2026-10-21"}, store.slots[0])
}

func TestTickIsolatesUserFailures(t *testing.T) {
	store := &fakeStore{
		due: []model.DueUser{
			dueUser(1, "ok-1"),
			dueUser(2, "ok-2"),
			dueUser(3, "ok-3"),
			dueUser(4, "ok-4"),
			dueUser(5, "rejected"),
		},
		goals: map[uint][]model.Goal{
			1: goals("A"), 2: goals("A"), 3: goals("A"), 4: goals("A"), 5: goals("A"),
		},
		goalsErr: map[uint]error{2: errors.New("connection reset")},
		saveErr:  map[uint]error{3: errors.New("disk full")},
	}
	gen := &fakeGenerator{panicFor: 4}
	tr := &fakeTransport{failed: map[string]bool{"rejected": true}}

	report := newTestDispatcher(t, store, gen, tr, fixedRand{f: 0.9}).Tick(context.Background(), wednesdayTen)

	require.NoError(t, report.Err)
	assert.Equal(t, 5, report.Due)
	assert.Equal(t, 2, report.Generated)
	assert.Equal(t, 1, report.Delivered)
	assert.Equal(t, 4, report.Failed)

	require.Len(t, tr.calls, 1)
	var users []uint
	for _, m := range tr.calls[0] {
		users = append(users, m.UserID)
	}
	assert.ElementsMatch(t, []uint{1, 5}, users)
}

func TestTickAbortsWhenDueQueryFails(t *testing.T) {
	store := &fakeStore{dueErr: errors.New("database unavailable")}
	gen := &fakeGenerator{}
	tr := &fakeTransport{}

	report := newTestDispatcher(t, store, gen, tr, fixedRand{}).Tick(context.Background(), wednesdayTen)

	assert.EqualError(t, report.Err, "database unavailable")
	assert.Empty(t, gen.requests)
	assert.Empty(t, tr.calls)
}

func TestOverlappingTicksClaimSlotOnce(t *testing.T) {
	store := &fakeStore{
		due:   []model.DueUser{dueUser(1, "tok")},
		goals: map[uint][]model.Goal{1: goals("A")},
	}
	tr := &fakeTransport{}
	d := newTestDispatcher(t, store, &fakeGenerator{}, tr, fixedRand{f: 0.9})

	first := d.Tick(context.Background(), wednesdayTen)
	second := d.Tick(context.Background(), wednesdayTen.Add(10*time.Second))

	assert.Equal(t, 1, first.Delivered)
	assert.Equal(t, 1, second.Skipped)
	assert.Zero(t, second.Delivered)
	assert.Len(t, tr.calls, 1)
	assert.Len(t, store.saved, 1)

	next := d.Tick(context.Background(), wednesdayTen.Add(7*24*time.Hour))
	assert.Equal(t, 1, next.Delivered)
}

func TestTickSkipsUserWithNothingToTarget(t *testing.T) {
	user := dueUser(1, "tok")
	user.MainMission = ""
	store := &fakeStore{due: []model.DueUser{user}}
	tr := &fakeTransport{}

	report := newTestDispatcher(t, store, &fakeGenerator{}, tr, fixedRand{}).Tick(context.Background(), wednesdayTen)

	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, store.saved)
	assert.Empty(t, tr.calls)
}

func TestTickIdentityScope(t *testing.T) {
	store := &fakeStore{
		due:   []model.DueUser{dueUser(1, "tok")},
		goals: map[uint][]model.Goal{1: goals("A")},
	}
	gen := &fakeGenerator{}

	report := newTestDispatcher(t, store, gen, &fakeTransport{}, fixedRand{f: 0.1}).Tick(context.Background(), wednesdayTen)

	assert.Equal(t, 1, report.Delivered)
	require.Len(t, store.saved, 1)
	assert.Equal(t, model.TargetIdentity, store.saved[0].TargetType)
	assert.Empty(t, store.saved[0].TargetIdentity)
	assert.Equal(t, "I build and nurture with intention.", gen.requests[0].Mission)
}

func TestStartAndStop(t *testing.T) {
	d := newTestDispatcher(t, &fakeStore{}, &fakeGenerator{}, &fakeTransport{}, fixedRand{})
	require.NoError(t, d.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	d.Stop(ctx)
}
