package notify

import (
	"becoming_backend/internal/model"
	"errors"
	"strings"
)

// IdentityBias 有使命时选择使命范围的概率
const IdentityBias = 0.25

const steeringDepth = 5

var ErrNothingToTarget = errors.New("user has neither goals nor a mission")

// Target 本次信号指向的对象
type Target struct {
	Scope   model.TargetType
	Goal    *model.Goal
	Mission string
}

// Label 目标范围返回目标标题，使命范围返回空串
func (t Target) Label() string {
	if t.Scope == model.TargetGoal && t.Goal != nil {
		return t.Goal.Title
	}
	return ""
}

// Steering 引导生成避开重复、贴近偏好的上下文
type Steering struct {
	Recent   []string
	Liked    []string
	Disliked []string
}

type Selector struct {
	rnd          Rand
	identityBias float64
}

func NewSelector(rnd Rand) *Selector {
	return &Selector{rnd: rnd, identityBias: IdentityBias}
}

// Select 决定信号范围和目标。goals 按创建顺序排列，history 按时间倒序。
func (s *Selector) Select(goals []model.Goal, mission string, history []model.Signal) (Target, error) {
	mission = strings.TrimSpace(mission)

	if len(goals) == 0 {
		if mission == "" {
			return Target{}, ErrNothingToTarget
		}
		return Target{Scope: model.TargetIdentity, Mission: mission}, nil
	}

	if mission != "" && s.rnd.Float64() < s.identityBias {
		return Target{Scope: model.TargetIdentity, Mission: mission}, nil
	}

	return Target{Scope: model.TargetGoal, Goal: nextGoal(goals, history), Mission: mission}, nil
}

// nextGoal 按最近使用情况轮转：最近 len(goals) 条信号里没出现过的第一个目标优先，
// 都出现过时选最久未用的那个
func nextGoal(goals []model.Goal, history []model.Signal) *model.Goal {
	window := history
	if len(window) > len(goals) {
		window = window[:len(goals)]
	}

	var used []string
	for _, sig := range window {
		if sig.TargetType == model.TargetGoal {
			used = append(used, sig.TargetIdentity)
		}
	}

	for i := range goals {
		if indexOf(used, goals[i].Title) < 0 {
			return &goals[i]
		}
	}

	best, bestIdx := 0, indexOf(used, goals[0].Title)
	for i := 1; i < len(goals); i++ {
		if idx := indexOf(used, goals[i].Title); idx > bestIdx {
			best, bestIdx = i, idx
		}
	}
	return &goals[best]
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// SteeringContext 最近五条文本，以及最近各五条喜欢和不喜欢的文本
func SteeringContext(history []model.Signal) Steering {
	var st Steering
	for _, sig := range history {
		if len(st.Recent) < steeringDepth {
			st.Recent = append(st.Recent, sig.Text)
		}
		switch sig.Feedback {
		case model.FeedbackLike:
			if len(st.Liked) < steeringDepth {
				st.Liked = append(st.Liked, sig.Text)
			}
		case model.FeedbackDislike:
			if len(st.Disliked) < steeringDepth {
				st.Disliked = append(st.Disliked, sig.Text)
			}
		}
	}
	return st
}
