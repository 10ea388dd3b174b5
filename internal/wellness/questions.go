package wellness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ItemKind is the response kind of a questionnaire item.
type ItemKind string

const (
	KindScale  ItemKind = "scale"
	KindChoice ItemKind = "choice"
)

// Option is one labeled value of a choice item.
type Option struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// QuestionnaireItem is a single question. Scale items accept any integer in
// [Min, Max]; choice items accept only the values of their options.
type QuestionnaireItem struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Kind    ItemKind `json:"kind"`
	Min     int      `json:"min,omitempty"`
	Max     int      `json:"max,omitempty"`
	Options []Option `json:"options,omitempty"`
	// Scored items contribute to the total; the emotion picker does not.
	Scored bool `json:"scored"`
}

// Questionnaire is an ordered, immutable bank of items for one mode.
type Questionnaire struct {
	Mode     Mode                `json:"mode"`
	Title    string              `json:"title"`
	Items    []QuestionnaireItem `json:"items"`
	MaxScore int                 `json:"max_score"`
	MinScore int                 `json:"min_score"`
}

var frequencyOptions = []Option{
	{Label: "Not at all", Value: 0},
	{Label: "Several days", Value: 1},
	{Label: "More than half the days", Value: 2},
	{Label: "Nearly every day", Value: 3},
}

var bandedPrompts = []struct{ id, prompt string }{
	{"nervous", "Feeling nervous, anxious, or on edge?"},
	{"worry_control", "Not being able to stop or control worrying?"},
	{"worry_much", "Worrying too much about different things?"},
	{"relaxing", "Trouble relaxing?"},
	{"restless", "Being so restless that it is hard to sit still?"},
	{"irritable", "Becoming easily annoyed or irritable?"},
	{"afraid", "Feeling afraid as if something awful might happen?"},
}

const (
	// StressItemID is the slider item of the emotion check-in.
	StressItemID = "stress"
	// MoodItemID is the emotion picker of the emotion check-in.
	MoodItemID = "mood"
)

// BandedQuestionnaire returns the 7-item anxiety bank (each item 0..3, total 0..21).
func BandedQuestionnaire() Questionnaire {
	items := make([]QuestionnaireItem, 0, len(bandedPrompts))
	for _, p := range bandedPrompts {
		items = append(items, QuestionnaireItem{
			ID:      p.id,
			Prompt:  p.prompt,
			Kind:    KindChoice,
			Options: append([]Option(nil), frequencyOptions...),
			Scored:  true,
		})
	}
	return Questionnaire{
		Mode:     ModeBanded,
		Title:    "Over the last 2 weeks, how often have you been bothered by the following?",
		Items:    items,
		MaxScore: 3 * len(items),
	}
}

// EmotionQuestionnaire returns the quick check-in bank: a 1..10 stress slider
// and an unscored emotion picker.
func EmotionQuestionnaire() Questionnaire {
	emotions := Emotions()
	opts := make([]Option, 0, len(emotions))
	for i, e := range emotions {
		opts = append(opts, Option{Label: string(e), Value: i})
	}
	return Questionnaire{
		Mode:  ModeEmotion,
		Title: "How are you feeling right now?",
		Items: []QuestionnaireItem{
			{ID: StressItemID, Prompt: "On a scale of 1-10, how stressed do you feel right now?", Kind: KindScale, Min: 1, Max: 10, Scored: true},
			{ID: MoodItemID, Prompt: "What emotion best describes your state?", Kind: KindChoice, Options: opts},
		},
		MinScore: 1,
		MaxScore: 10,
	}
}

// QuestionnaireFor returns the bank for mode.
func QuestionnaireFor(mode Mode) (Questionnaire, bool) {
	switch mode {
	case ModeBanded:
		return BandedQuestionnaire(), true
	case ModeEmotion:
		return EmotionQuestionnaire(), true
	}
	return Questionnaire{}, false
}

// Questionnaires returns every built-in bank, default first.
func Questionnaires() []Questionnaire {
	return []Questionnaire{BandedQuestionnaire(), EmotionQuestionnaire()}
}

func (q Questionnaire) item(id string) (QuestionnaireItem, bool) {
	for _, it := range q.Items {
		if it.ID == id {
			return it, true
		}
	}
	return QuestionnaireItem{}, false
}

func (it QuestionnaireItem) inDomain(v int) bool {
	if it.Kind == KindScale {
		return v >= it.Min && v <= it.Max
	}
	for _, o := range it.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

func (it QuestionnaireItem) bounds() (int, int) {
	if it.Kind == KindScale || len(it.Options) == 0 {
		return it.Min, it.Max
	}
	lo, hi := it.Options[0].Value, it.Options[0].Value
	for _, o := range it.Options[1:] {
		if o.Value < lo {
			lo = o.Value
		}
		if o.Value > hi {
			hi = o.Value
		}
	}
	return lo, hi
}

// OptionLabel returns the label of the option with value v on item id.
func (q Questionnaire) OptionLabel(id string, v int) (string, bool) {
	it, ok := q.item(id)
	if !ok {
		return "", false
	}
	for _, o := range it.Options {
		if o.Value == v {
			return o.Label, true
		}
	}
	return "", false
}

// Validate checks that a answers every item exactly once with an in-domain value.
// Unknown keys are reported first, then out-of-domain values in bank order,
// then missing items.
func (q Questionnaire) Validate(a Answers) error {
	var unknown []string
	for id := range a {
		if _, ok := q.item(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &OutOfDomainError{Field: unknown[0], Value: a[unknown[0]], Reason: "unknown question"}
	}
	var missing []string
	for _, it := range q.Items {
		v, ok := a[it.ID]
		if !ok {
			missing = append(missing, it.ID)
			continue
		}
		if !it.inDomain(v) {
			lo, hi := it.bounds()
			return &OutOfDomainError{Field: it.ID, Value: v, Min: lo, Max: hi}
		}
	}
	if len(missing) > 0 {
		return &IncompleteInputError{Missing: missing}
	}
	return nil
}

// Resolve converts raw JSON answers into validated Answers. Each value may be
// a number, a numeric string, or (for choice items) an option label. A null
// value counts as unanswered.
func (q Questionnaire) Resolve(raw map[string]json.RawMessage) (Answers, error) {
	var unknown []string
	for id := range raw {
		if _, ok := q.item(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &OutOfDomainError{Field: unknown[0], Reason: "unknown question"}
	}
	out := make(Answers, len(raw))
	for _, it := range q.Items {
		msg, ok := raw[it.ID]
		if !ok {
			continue
		}
		if t := bytes.TrimSpace(msg); len(t) == 0 || bytes.Equal(t, []byte("null")) {
			continue
		}
		v, err := resolveValue(it, msg)
		if err != nil {
			return nil, err
		}
		out[it.ID] = v
	}
	if err := q.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func resolveValue(it QuestionnaireItem, msg json.RawMessage) (int, error) {
	var num float64
	if err := json.Unmarshal(msg, &num); err == nil {
		if num < math.MinInt32 || num > math.MaxInt32 {
			lo, hi := it.bounds()
			return 0, &OutOfDomainError{Field: it.ID, Min: lo, Max: hi, Reason: fmt.Sprintf("value %g outside [%d, %d]", num, lo, hi)}
		}
		if num != float64(int(num)) {
			return 0, &OutOfDomainError{Field: it.ID, Reason: "value must be an integer"}
		}
		return int(num), nil
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return 0, &OutOfDomainError{Field: it.ID, Reason: "value must be a number or label"}
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	for _, o := range it.Options {
		if strings.EqualFold(o.Label, s) {
			return o.Value, nil
		}
	}
	return 0, &OutOfDomainError{Field: it.ID, Reason: "unknown option " + strconv.Quote(s)}
}
