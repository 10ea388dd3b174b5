package wellness

import "strings"

// Tip is a short, profession-specific nudge.
type Tip struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

var tipGroups = []struct {
	keywords []string
	tips     []Tip
}{
	{
		keywords: []string{"developer", "programmer", "coder", "software", "desk", "it"},
		tips: []Tip{
			{"Use the 20-20-20 rule: Every 20 mins, look 20 ft away for 20 secs.", "👁️"},
			{"Check your posture: Are your shoulders relaxed?", "🪑"},
			{"Mental block? Step away from the screen for a 2-minute walk.", "🚶"},
		},
	},
	{
		keywords: []string{"student", "university", "college", "school"},
		tips: []Tip{
			{"Try the Pomodoro technique: 25m focus, 5m break.", "🍅"},
			{"Exam stress? Focus on what you can control right now.", "📚"},
			{"Stay hydrated! Your brain needs water to retain info.", "💧"},
		},
	},
	{
		keywords: []string{"teacher", "educator"},
		tips: []Tip{
			{"Between classes, take 3 deep breaths to reset.", "🌬️"},
			{"Remember to drink water while speaking all day.", "🥤"},
			{"Your energy sets the tone. Take a moment for yourself.", "✨"},
		},
	},
	{
		keywords: []string{"nurse", "doctor", "medical", "health"},
		tips: []Tip{
			{"Hydration is key. Drink a glass of water now.", "💧"},
			{"Take a micro-break: Close your eyes for 10 seconds.", "😌"},
			{"Compassion fatigue is real. Check in with your own needs.", "❤️"},
		},
	},
	{
		keywords: []string{"manager", "lead", "executive"},
		tips: []Tip{
			{"Delegate one small task to lighten your load.", "📉"},
			{"Model work-life balance for your team today.", "⚖️"},
			{"Celebrate small wins before moving to the next problem.", "🎉"},
		},
	},
}

var defaultTips = []Tip{
	{"Taking 5 mins for mindfulness improves focus by 30%.", "✨"},
	{"Unclench your jaw and drop your shoulders.", "😌"},
	{"Name one thing you are grateful for today.", "🙏"},
}

// TipFor picks a tip for profession. pick(n) must return an index in [0, n).
// It reports false when profession is empty.
func TipFor(profession string, pick func(n int) int) (Tip, bool) {
	p := strings.ToLower(strings.TrimSpace(profession))
	if p == "" {
		return Tip{}, false
	}
	tips := defaultTips
	for _, g := range tipGroups {
		if containsAny(p, g.keywords) {
			tips = g.tips
			break
		}
	}
	i := pick(len(tips))
	if i < 0 || i >= len(tips) {
		i = 0
	}
	return tips[i], true
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
