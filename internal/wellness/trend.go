package wellness

import (
	"math"
	"sort"
	"time"
)

// Direction compares the first and last charted day.
type Direction string

const (
	// DirectionNone means fewer than two days were charted.
	DirectionNone Direction = ""
	// DirectionImproving means the last day averaged lower (less stress) than the first.
	DirectionImproving Direction = "improving"
	DirectionRising    Direction = "rising"
	DirectionStable    Direction = "stable"
)

// Window selects which records feed a trend. Zero fields disable their filter.
type Window struct {
	// Days keeps records with CreatedAt >= now - Days*24h.
	Days int
	// LastN keeps only the most recent N records after the day filter.
	LastN int
	// Location defines calendar days; nil means UTC.
	Location *time.Location
}

// DatePoint is the rounded mean score of one calendar day.
type DatePoint struct {
	Date    string `json:"date"`
	Average int    `json:"average"`
	Count   int    `json:"count"`
}

// CategoryCount is the number of records carrying an emotion tag.
type CategoryCount struct {
	Emotion Emotion `json:"emotion"`
	Count   int     `json:"count"`
}

// Trend holds aggregate statistics over a window of records.
type Trend struct {
	Count          int             `json:"count"`
	Records        []*Assessment   `json:"records"`
	PerDate        []DatePoint     `json:"per_date"`
	OverallAverage float64         `json:"overall_average"`
	Direction      Direction       `json:"trend_direction,omitempty"`
	Categories     []CategoryCount `json:"category_distribution"`
}

// SortChronological orders records by CreatedAt, breaking ties by Seq.
// It sorts in place.
func SortChronological(records []*Assessment) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Seq < b.Seq
	})
}

// Aggregate computes trend statistics for records inside w. records is not
// modified. An empty selection yields zero values and no direction.
func Aggregate(records []*Assessment, w Window, now time.Time) Trend {
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}

	sorted := make([]*Assessment, 0, len(records))
	for _, r := range records {
		if r != nil {
			sorted = append(sorted, r)
		}
	}
	SortChronological(sorted)

	filtered := sorted
	if w.Days > 0 {
		cutoff := now.Add(-time.Duration(w.Days) * 24 * time.Hour)
		filtered = filtered[:0:0]
		for _, r := range sorted {
			if !r.CreatedAt.Before(cutoff) {
				filtered = append(filtered, r)
			}
		}
	}
	if w.LastN > 0 && len(filtered) > w.LastN {
		filtered = filtered[len(filtered)-w.LastN:]
	}

	t := Trend{
		Count:      len(filtered),
		Records:    make([]*Assessment, 0, len(filtered)),
		PerDate:    []DatePoint{},
		Categories: []CategoryCount{},
	}
	if len(filtered) == 0 {
		return t
	}

	type bucket struct {
		total, count int
	}
	buckets := map[string]*bucket{}
	var days []string
	emotionCounts := map[Emotion]int{}
	var emotionOrder []Emotion
	sum := 0
	for _, r := range filtered {
		t.Records = append(t.Records, r.Clone())
		sum += r.Score
		day := r.CreatedAt.In(loc).Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
			days = append(days, day)
		}
		b.total += r.Score
		b.count++
		if r.Mode == ModeEmotion && r.Emotion != "" {
			if _, seen := emotionCounts[r.Emotion]; !seen {
				emotionOrder = append(emotionOrder, r.Emotion)
			}
			emotionCounts[r.Emotion]++
		}
	}

	sort.Strings(days)
	for _, d := range days {
		b := buckets[d]
		t.PerDate = append(t.PerDate, DatePoint{
			Date:    d,
			Average: int(math.Round(float64(b.total) / float64(b.count))),
			Count:   b.count,
		})
	}

	t.OverallAverage = math.Round(float64(sum)/float64(len(filtered))*10) / 10
	t.Direction = direction(t.PerDate)

	for _, e := range emotionOrder {
		t.Categories = append(t.Categories, CategoryCount{Emotion: e, Count: emotionCounts[e]})
	}
	sort.SliceStable(t.Categories, func(i, j int) bool { return t.Categories[i].Count > t.Categories[j].Count })
	return t
}

func direction(points []DatePoint) Direction {
	if len(points) < 2 {
		return DirectionNone
	}
	first, last := points[0].Average, points[len(points)-1].Average
	switch {
	case last < first:
		return DirectionImproving
	case last > first:
		return DirectionRising
	default:
		return DirectionStable
	}
}
