package notify

import (
	"becoming_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goals(titles ...string) []model.Goal {
	out := make([]model.Goal, len(titles))
	for i, title := range titles {
		out[i] = model.Goal{Title: title}
	}
	return out
}

func goalSignal(title string) model.Signal {
	return model.Signal{TargetType: model.TargetGoal, TargetIdentity: title, Text: "about " + title}
}

func TestSelectRoundRobin(t *testing.T) {
	goalScope := fixedRand{f: 0.9}

	cases := []struct {
		name    string
		goals   []model.Goal
		history []model.Signal
		want    string
	}{
		{
			name:    "recent signals target first goal",
			goals:   goals("Prolific Builder", "Calm Parent"),
			history: []model.Signal{goalSignal("Prolific Builder"), goalSignal("Prolific Builder")},
			want:    "Calm Parent",
		},
		{
			name:  "empty history starts with first goal",
			goals: goals("A", "B", "C"),
			want:  "A",
		},
		{
			name:    "all used picks least recent",
			goals:   goals("A", "B", "C"),
			history: []model.Signal{goalSignal("A"), goalSignal("C"), goalSignal("B")},
			want:    "B",
		},
		{
			name:    "only window of len(goals) counts",
			goals:   goals("A", "B"),
			history: []model.Signal{goalSignal("B"), goalSignal("A"), goalSignal("A")},
			want:    "A",
		},
		{
			name:    "identity signals do not mark goals used",
			goals:   goals("A", "B"),
			history: []model.Signal{{TargetType: model.TargetIdentity}, goalSignal("A")},
			want:    "B",
		},
		{
			name:    "renamed goals are ignored",
			goals:   goals("A", "B"),
			history: []model.Signal{goalSignal("Old"), goalSignal("A")},
			want:    "B",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, err := NewSelector(goalScope).Select(tc.goals, "I build and nurture with intention.", tc.history)
			require.NoError(t, err)
			assert.Equal(t, model.TargetGoal, target.Scope)
			assert.Equal(t, tc.want, target.Label())
		})
	}
}

func TestSelectIdentityCoin(t *testing.T) {
	g := goals("A")

	target, err := NewSelector(fixedRand{f: 0.1}).Select(g, "Mission", nil)
	require.NoError(t, err)
	assert.Equal(t, model.TargetIdentity, target.Scope)
	assert.Equal(t, "Mission", target.Mission)
	assert.Empty(t, target.Label())

	target, err = NewSelector(fixedRand{f: 0.25}).Select(g, "Mission", nil)
	require.NoError(t, err)
	assert.Equal(t, model.TargetGoal, target.Scope)

	target, err = NewSelector(fixedRand{f: 0.0}).Select(g, "   ", nil)
	require.NoError(t, err)
	assert.Equal(t, model.TargetGoal, target.Scope)
}

func TestSelectForcedAndEmpty(t *testing.T) {
	target, err := NewSelector(fixedRand{f: 0.99}).Select(nil, "Live with intention.", nil)
	require.NoError(t, err)
	assert.Equal(t, model.TargetIdentity, target.Scope)

	_, err = NewSelector(fixedRand{f: 0.1}).Select(nil, " ", nil)
	assert.ErrorIs(t, err, ErrNothingToTarget)
}

func TestSelectIdentityRate(t *testing.T) {
	sel := NewSelector(NewRand(42))
	g := goals("A", "B")

	const draws = 20000
	identity := 0
	for i := 0; i < draws; i++ {
		target, err := sel.Select(g, "Mission", nil)
		require.NoError(t, err)
		if target.Scope == model.TargetIdentity {
			identity++
		}
	}

	rate := float64(identity) / draws
	assert.InDelta(t, IdentityBias, rate, 0.02)
}

func TestSteeringContext(t *testing.T) {
	var history []model.Signal
	for i := 0; i < 12; i++ {
		s := model.Signal{Text: string(rune('a' + i)), Feedback: model.FeedbackNone}
		switch {
		case i%2 == 0:
			s.Feedback = model.FeedbackLike
		case i%3 == 0:
			s.Feedback = model.FeedbackDislike
		}
		history = append(history, s)
	}

	st := SteeringContext(history)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, st.Recent)
	assert.Equal(t, []string{"a", "c", "e", "g", "i"}, st.Liked)
	assert.Equal(t, []string{"d", "j"}, st.Disliked)

	empty := SteeringContext(nil)
	assert.Empty(t, empty.Recent)
	assert.Empty(t, empty.Liked)
}
