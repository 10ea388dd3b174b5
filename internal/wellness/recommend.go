package wellness

import "fmt"

// Technique is a single coping action.
type Technique struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	ColorTag    string `json:"color_tag"`
}

// Solution is one card of the solutions view: a tag, its presentation, and an
// ordered list of techniques, most urgent first.
type Solution struct {
	Tag         Classification `json:"tag"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       string         `json:"color"`
	Techniques  []Technique    `json:"techniques"`
}

// Analysis is the canned feedback returned with a new check-in.
type Analysis struct {
	Summary         string      `json:"summary"`
	Recommendations []Technique `json:"recommendations"`
}

type solutionDef struct {
	title       string
	description string
	color       string
	techniques  [3][3]string // name, description, duration
}

var levelSolutions = []struct {
	level Level
	def   solutionDef
}{
	{LevelLow, solutionDef{
		title:       "Maintenance & Growth",
		description: "You're doing well! Keep up these habits to maintain your mental wellness.",
		color:       "#10b981",
		techniques: [3][3]string{
			{"Gratitude Practice", "Write down 3 things you're grateful for today.", "5 minutes"},
			{"Mindful Walking", "Take a walk and focus entirely on the sensations of moving.", "15 minutes"},
			{"New Skill Learning", "Challenge your brain by learning something new and exciting.", "Ongoing"},
		},
	}},
	{LevelModerate, solutionDef{
		title:       "Stress Reduction",
		description: "You're feeling some strain. These techniques can help you reset.",
		color:       "#f59e0b",
		techniques: [3][3]string{
			{"Box Breathing", "Inhale 4s, hold 4s, exhale 4s, hold 4s. Repeat.", "5 minutes"},
			{"Progressive Muscle Relaxation", "Tense and relax each muscle group from toes to head.", "10 minutes"},
			{"Digital Detox", "Take a break from all screens for at least one hour.", "1 hour"},
		},
	}},
	{LevelHigh, solutionDef{
		title:       "Crisis Management & Support",
		description: "Your stress levels are high. Prioritize self-care and professional support.",
		color:       "#ef4444",
		techniques: [3][3]string{
			{"Reach Out", "Call a trusted friend or a mental health professional immediately.", "Immediate"},
			{"Cold Water Splash", "Splash cold water on your face to trigger the dive reflex and calm down.", "1 minute"},
			{"5-4-3-2-1 Grounding", "5 things you see, 4 you hear, 3 feel, 2 smell, 1 taste.", "3 minutes"},
		},
	}},
}

var emotionSolutions = []struct {
	emotion Emotion
	def     solutionDef
}{
	{EmotionAnxious, solutionDef{
		title: "Breathing & Grounding",
		color: "#8b5cf6",
		techniques: [3][3]string{
			{"4-7-8 Breathing", "Inhale for 4 seconds, hold for 7, exhale for 8. Repeat 4 times.", "2 minutes"},
			{"5-4-3-2-1 Grounding", "Name 5 things you see, 4 you hear, 3 you feel, 2 you smell, 1 you taste.", "3 minutes"},
			{"Box Breathing", "Inhale 4 seconds, hold 4, exhale 4, hold 4. Visualize a square.", "5 minutes"},
		},
	}},
	{EmotionTired, solutionDef{
		title: "Energy & Rest",
		color: "#6366f1",
		techniques: [3][3]string{
			{"Power Nap Technique", "15-20 minute nap in a quiet, dark room. Set an alarm to avoid deep sleep.", "20 minutes"},
			{"Progressive Muscle Relaxation", "Tense and relax each muscle group from toes to head.", "10 minutes"},
			{"Sleep Hygiene Tips", "Dim lights 1 hour before bed, avoid screens, keep room cool (65-68°F).", "Ongoing"},
		},
	}},
	{EmotionAngry, solutionDef{
		title: "Calm & Release",
		color: "#ef4444",
		techniques: [3][3]string{
			{"Progressive Counting", "Count backwards from 100 by 7s while taking deep breaths.", "3 minutes"},
			{"Physical Release", "Do 20 jumping jacks or take a brisk 5-minute walk to release tension.", "5 minutes"},
			{"Anger Journal", "Write down what triggered you without filtering. Then tear it up.", "10 minutes"},
		},
	}},
	{EmotionCalm, solutionDef{
		title: "Maintain Balance",
		color: "#10b981",
		techniques: [3][3]string{
			{"Gratitude Practice", "Write down 3 things you're grateful for today, no matter how small.", "5 minutes"},
			{"Mindful Observation", "Focus on an object for 2 minutes. Notice every detail without judgment.", "2 minutes"},
			{"Loving-Kindness Meditation", "Repeat: 'May I be happy, may I be healthy, may I be safe, may I live with ease.'", "5 minutes"},
		},
	}},
	{EmotionHappy, solutionDef{
		title: "Amplify Joy",
		color: "#f59e0b",
		techniques: [3][3]string{
			{"Joy Journaling", "Capture this moment in detail. What made you happy? Who was there? How did it feel?", "10 minutes"},
			{"Share Your Joy", "Call or message someone to share your positive experience.", "5 minutes"},
			{"Future Visualization", "Imagine yourself feeling this way again. What conditions can you recreate?", "5 minutes"},
		},
	}},
	{EmotionOverwhelmed, solutionDef{
		title: "Simplify & Focus",
		color: "#ec4899",
		techniques: [3][3]string{
			{"Permission to Pause", "Take 10 deep breaths and remind yourself: 'I don't have to do everything now.'", "2 minutes"},
			{"Brain Dump", "Write every thought and task on paper for 5 minutes without organizing.", "5 minutes"},
			{"One Thing Focus", "Choose the ONE most important task. Ignore everything else for 25 minutes.", "25 minutes"},
		},
	}},
}

const fallbackColor = "#64748b"

func fallbackSolution(c Classification) Solution {
	return Solution{
		Tag:         c,
		Title:       "General Relaxation",
		Description: "A simple reset that helps in most situations.",
		Color:       fallbackColor,
		Techniques: []Technique{{
			Name:        "Progressive Muscle Relaxation",
			Description: "Tense and relax each muscle group from toes to head.",
			Duration:    "10 minutes",
			ColorTag:    fallbackColor,
		}},
	}
}

func (d solutionDef) build(tag Classification) Solution {
	techs := make([]Technique, 0, len(d.techniques))
	for _, t := range d.techniques {
		techs = append(techs, Technique{Name: t[0], Description: t[1], Duration: t[2], ColorTag: d.color})
	}
	return Solution{Tag: tag, Title: d.title, Description: d.description, Color: d.color, Techniques: techs}
}

// table returns the solutions of kind in declaration order.
func table(kind TagKind) []Solution {
	switch kind {
	case KindLevel:
		out := make([]Solution, 0, len(levelSolutions))
		for _, e := range levelSolutions {
			out = append(out, e.def.build(LevelTag(e.level)))
		}
		return out
	case KindEmotion:
		out := make([]Solution, 0, len(emotionSolutions))
		for _, e := range emotionSolutions {
			out = append(out, e.def.build(EmotionTag(e.emotion)))
		}
		return out
	}
	return nil
}

// Lookup returns the table entry for c.
func Lookup(c Classification) (Solution, error) {
	for _, s := range table(c.Kind) {
		if s.Tag == c {
			return s, nil
		}
	}
	return Solution{}, &UnknownTagError{Kind: c.Kind, Tag: c.Value()}
}

// Select returns the ordered techniques for c. Tags missing from the tables
// get the general relaxation fallback, so the result is never empty.
func Select(c Classification) []Technique {
	s, err := Lookup(c)
	if err != nil {
		return fallbackSolution(c).Techniques
	}
	return s.Techniques
}

// Compose returns every solution of c's kind with the entry for c first and
// the rest in declaration order. An unknown kind yields the fallback card only.
func Compose(c Classification) []Solution {
	all := table(c.Kind)
	if len(all) == 0 {
		return []Solution{fallbackSolution(c)}
	}
	out := make([]Solution, 0, len(all))
	for _, s := range all {
		if s.Tag == c {
			out = append(out, s)
		}
	}
	for _, s := range all {
		if s.Tag != c {
			out = append(out, s)
		}
	}
	return out
}

// Analyze builds the canned feedback for a fresh check-in.
func Analyze(c Classification, score, maxScore int) Analysis {
	var summary string
	switch c.Kind {
	case KindEmotion:
		summary = fmt.Sprintf("Based on your emotion (%s) and stress level (%d/%d), we recommend focusing on immediate relaxation.", c.Emotion, score, maxScore)
	default:
		summary = fmt.Sprintf("Your score is %d/%d, which indicates %s stress.", score, maxScore, c.Level)
		if s, err := Lookup(c); err == nil && s.Description != "" {
			summary += " " + s.Description
		}
	}
	return Analysis{Summary: summary, Recommendations: Select(c)}
}
