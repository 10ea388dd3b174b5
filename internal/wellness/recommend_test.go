package wellness

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func allTags() []Classification {
	var tags []Classification
	for _, l := range Levels() {
		tags = append(tags, LevelTag(l))
	}
	for _, e := range Emotions() {
		tags = append(tags, EmotionTag(e))
	}
	return tags
}

func TestSelectThreeTechniquesPerTag(t *testing.T) {
	for _, c := range allTags() {
		techs := Select(c)
		if len(techs) != 3 {
			t.Fatalf("%s %s: %d techniques", c.Kind, c.Value(), len(techs))
		}
		if _, err := Lookup(c); err != nil {
			t.Fatalf("Lookup(%v) error: %v", c, err)
		}
	}
}

func TestSelectIdempotentAndCopied(t *testing.T) {
	c := EmotionTag(EmotionAngry)
	first := Select(c)
	first[0].Name = "mutated"
	if !reflect.DeepEqual(Select(c), Select(c)) {
		t.Fatalf("Select not idempotent")
	}
	if Select(c)[0].Name != "Progressive Counting" {
		t.Fatalf("table mutated through returned slice")
	}
}

func TestSelectFallback(t *testing.T) {
	for _, c := range []Classification{EmotionTag("Bored"), LevelTag("Extreme"), {Kind: "mood"}} {
		techs := Select(c)
		if len(techs) == 0 {
			t.Fatalf("empty recommendation for %+v", c)
		}
		if techs[0].Name != "Progressive Muscle Relaxation" {
			t.Fatalf("unexpected fallback %+v", techs[0])
		}
	}
	var unk *UnknownTagError
	if _, err := Lookup(EmotionTag("Bored")); !errors.As(err, &unk) || unk.Tag != "Bored" {
		t.Fatalf("expected unknown tag error, got %v", err)
	}
}

func TestUrgentTechniqueFirst(t *testing.T) {
	if got := Select(LevelTag(LevelHigh))[0]; got.Duration != "Immediate" {
		t.Fatalf("High should lead with the immediate action, got %+v", got)
	}
	if got := Select(EmotionTag(EmotionOverwhelmed))[0].Name; got != "Permission to Pause" {
		t.Fatalf("Overwhelmed should lead with Permission to Pause, got %s", got)
	}
}

func TestComposeOrder(t *testing.T) {
	got := Compose(EmotionTag(EmotionAnxious))
	want := []Emotion{EmotionAnxious, EmotionTired, EmotionAngry, EmotionCalm, EmotionHappy, EmotionOverwhelmed}
	if len(got) != len(want) {
		t.Fatalf("expected %d cards, got %d", len(want), len(got))
	}
	for i, s := range got {
		if s.Tag.Emotion != want[i] {
			t.Fatalf("card %d = %s, want %s", i, s.Tag.Emotion, want[i])
		}
	}

	got = Compose(LevelTag(LevelHigh))
	if got[0].Tag.Level != LevelHigh || got[1].Tag.Level != LevelLow || got[2].Tag.Level != LevelModerate {
		t.Fatalf("unexpected level order %v %v %v", got[0].Tag, got[1].Tag, got[2].Tag)
	}

	got = Compose(EmotionTag("Bored"))
	if len(got) != 6 || got[0].Tag.Emotion != EmotionAnxious {
		t.Fatalf("unknown tag should keep declaration order")
	}
}

func TestAnalyze(t *testing.T) {
	a := Analyze(EmotionTag(EmotionCalm), 3, 10)
	if !strings.Contains(a.Summary, "Calm") || !strings.Contains(a.Summary, "3/10") {
		t.Fatalf("unexpected summary %q", a.Summary)
	}
	if len(a.Recommendations) != 3 {
		t.Fatalf("expected 3 recommendations")
	}
	a = Analyze(LevelTag(LevelModerate), 12, 21)
	if !strings.Contains(a.Summary, "Moderate") || !strings.Contains(a.Summary, "12/21") {
		t.Fatalf("unexpected summary %q", a.Summary)
	}
}
