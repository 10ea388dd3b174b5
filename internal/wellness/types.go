package wellness

import (
	"strings"
	"time"
)

// Level is the severity band derived from a banded score.
type Level string

const (
	LevelLow      Level = "Low"
	LevelModerate Level = "Moderate"
	LevelHigh     Level = "High"
)

// Levels lists the severity bands in declaration order.
func Levels() []Level {
	return []Level{LevelLow, LevelModerate, LevelHigh}
}

// Emotion is a self-selected mood tag from the quick check-in.
type Emotion string

const (
	EmotionAnxious     Emotion = "Anxious"
	EmotionTired       Emotion = "Tired"
	EmotionAngry       Emotion = "Angry"
	EmotionCalm        Emotion = "Calm"
	EmotionHappy       Emotion = "Happy"
	EmotionOverwhelmed Emotion = "Overwhelmed"
)

// Emotions lists the emotion tags in declaration order.
func Emotions() []Emotion {
	return []Emotion{EmotionAnxious, EmotionTired, EmotionAngry, EmotionCalm, EmotionHappy, EmotionOverwhelmed}
}

// ParseEmotion matches s against the known tags, ignoring case and surrounding space.
func ParseEmotion(s string) (Emotion, bool) {
	s = strings.TrimSpace(s)
	for _, e := range Emotions() {
		if strings.EqualFold(string(e), s) {
			return e, true
		}
	}
	return "", false
}

// ParseLevel matches s against the known levels, ignoring case and surrounding space.
func ParseLevel(s string) (Level, bool) {
	s = strings.TrimSpace(s)
	for _, l := range Levels() {
		if strings.EqualFold(string(l), s) {
			return l, true
		}
	}
	return "", false
}

// Mode selects which check-in flow produced a record.
type Mode string

const (
	// ModeBanded is the 7-item 0..21 questionnaire classified into levels.
	ModeBanded Mode = "banded"
	// ModeEmotion is the 1..10 slider plus a self-selected emotion tag.
	ModeEmotion Mode = "emotion"
)

// ParseMode returns the mode for s; an empty string selects ModeBanded.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeBanded):
		return ModeBanded, true
	case string(ModeEmotion):
		return ModeEmotion, true
	}
	return "", false
}

// TagKind discriminates the two classification axes.
type TagKind string

const (
	KindLevel   TagKind = "level"
	KindEmotion TagKind = "emotion"
)

// ParseTagKind returns the kind for s.
func ParseTagKind(s string) (TagKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindLevel):
		return KindLevel, true
	case string(KindEmotion):
		return KindEmotion, true
	}
	return "", false
}

// Classification is either a Level or an Emotion, never both.
// Build it with LevelTag or EmotionTag.
type Classification struct {
	Kind    TagKind `json:"kind"`
	Level   Level   `json:"level,omitempty"`
	Emotion Emotion `json:"emotion,omitempty"`
}

func LevelTag(l Level) Classification { return Classification{Kind: KindLevel, Level: l} }

func EmotionTag(e Emotion) Classification { return Classification{Kind: KindEmotion, Emotion: e} }

// Value returns the tag text for the active kind.
func (c Classification) Value() string {
	if c.Kind == KindEmotion {
		return string(c.Emotion)
	}
	return string(c.Level)
}

// Answers maps questionnaire item ids to a value inside the item's domain.
// Choice items store the selected option's value.
type Answers map[string]int

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	if a == nil {
		return nil
	}
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Assessment is one completed check-in. It is immutable once persisted.
type Assessment struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id,omitempty"`
	Mode      Mode      `json:"mode"`
	Answers   Answers   `json:"answers"`
	Score     int       `json:"score"`
	MaxScore  int       `json:"max_score"`
	Level     Level     `json:"level,omitempty"`
	Emotion   Emotion   `json:"emotion,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
	// Seq is the store insertion order, used to break timestamp ties.
	Seq int64 `json:"-"`
}

// Tag returns the record's classification for its mode.
func (a *Assessment) Tag() Classification {
	if a.Mode == ModeEmotion {
		return EmotionTag(a.Emotion)
	}
	return LevelTag(a.Level)
}

// Clone returns a deep copy of a.
func (a *Assessment) Clone() *Assessment {
	if a == nil {
		return nil
	}
	cp := *a
	cp.Answers = a.Answers.Clone()
	return &cp
}
