package notify

import (
	"becoming_backend/internal/model"
	"fmt"
	"strings"
)

var tonePsychology = map[model.Tone]string{
	model.ToneGentle: `VOICE: warm and self-compassionate
- Sound like a caring inner mentor who trusts their potential
- Motivate through care, never through a sense of inadequacy
- Treat struggle as a normal part of growth
- Invite reflection instead of issuing commands`,

	model.ToneDirect: `VOICE: clear and grounded
- Be honest and plain, without shaming or confronting
- Draw out their own reasons rather than pushing outside pressure
- Tie this exact moment to the identity they are building
- Remind them that the choice is theirs and within their ability`,

	model.ToneMotivational: `VOICE: energizing and identity-affirming
- Treat each small action as a vote for who they are becoming
- Highlight agency and capability
- Link effort to meaning rather than to outcomes
- Make the future self feel like someone worth showing up for`,
}

const signalCategories = `CATEGORIES (pick the one that fits the moment best):
1. "inquiry": an open, evocative question that invites self-reflection without judgment.
2. "manifesto": a declarative affirmation of who they are already practicing being.
3. "insight": an if-then bridge from a concrete situation to an identity-aligned action.
Across many signals aim for roughly 40% inquiry, 35% manifesto and 25% insight.`

const signalRules = `RULES:
- At most 120 characters, grammatically clean.
- Never shame, guilt or use fear.
- No empty hype or cliches.
- Never mention an app, a notification or a reminder.
- Speak as their own wisest inner voice, not as an outside coach.
- Vary sentence openings; do not start every signal with "What".

Respond with JSON only: {"text": "...", "type": "inquiry" | "manifesto" | "insight"}`

// systemPrompt 生成信号的系统提示词
func systemPrompt(scope model.TargetType, tone model.Tone) string {
	var b strings.Builder
	if scope == model.TargetGoal {
		b.WriteString("You write a short \"Signal\": a moment of inner clarity that helps a person live out one specific identity they are growing into.\n\n")
	} else {
		b.WriteString("You write a short \"Signal\": a moment of inner clarity that keeps a person connected to the whole of who they are becoming.\n\n")
	}
	b.WriteString("Ground every signal in autonomy, competence and connection to the future self. ")
	b.WriteString("Habits follow identity, and each action is a vote for the person they want to be. ")
	b.WriteString("Motivation comes from self-compassion, never from criticism.\n\n")
	b.WriteString(tonePsychology[tone.OrDefault()])
	b.WriteString("\n\n")
	b.WriteString(signalCategories)
	b.WriteString("\n\n")
	b.WriteString(signalRules)
	return b.String()
}

// userPrompt 生成信号的用户消息
func userPrompt(req GenerateRequest) string {
	var b strings.Builder
	if req.Scope == model.TargetGoal && req.Goal != nil {
		northStar := req.Goal.NorthStar
		if northStar == "" {
			northStar = req.Goal.Title
		}
		fmt.Fprintf(&b, "Identity they are embodying: %q\n", northStar)
		if req.Goal.WhyItMatters != "" {
			fmt.Fprintf(&b, "Why it matters to them: %q\n", req.Goal.WhyItMatters)
		}
	} else {
		fmt.Fprintf(&b, "Their life philosophy: %q\n", req.Mission)
		b.WriteString("Speak to their identity as a whole, not to a single goal.\n")
	}

	if len(req.Liked) > 0 {
		fmt.Fprintf(&b, "\nSignals that resonated (learn from their style): %s\n", strings.Join(req.Liked, " | "))
	}
	if len(req.Disliked) > 0 {
		fmt.Fprintf(&b, "\nSignals that did not land (avoid this style): %s\n", strings.Join(req.Disliked, " | "))
	}
	if len(req.Recent) > 0 {
		fmt.Fprintf(&b, "\nDo not repeat or closely paraphrase: %s\n", strings.Join(req.Recent, " | "))
	}
	return b.String()
}
