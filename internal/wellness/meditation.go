package wellness

import "sort"

// Meditation is a guided session suited to a range of slider scores.
type Meditation struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Duration string `json:"duration"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	MinScore int    `json:"min_score"`
	MaxScore int    `json:"max_score"`
}

var meditationCatalog = []Meditation{
	{ID: 1, Title: "Deep Breathing for Anxiety", Category: "Anxiety", Duration: "10 min", URL: "https://www.youtube.com/watch?v=O-6f5wQXSu8", Image: "https://images.unsplash.com/photo-1506126613408-eca07ce68773?w=500&q=80", MinScore: 7, MaxScore: 10},
	{ID: 2, Title: "Sleep Relaxation", Category: "Sleep", Duration: "15 min", URL: "https://www.youtube.com/watch?v=aEqlQvczMJQ", Image: "https://images.unsplash.com/photo-1511296933631-18b5f0bc0846?w=500&q=80", MinScore: 6, MaxScore: 10},
	{ID: 3, Title: "5-Minute Mindfulness", Category: "Mindfulness", Duration: "5 min", URL: "https://www.youtube.com/watch?v=ssss7V1_eyA", Image: "https://images.unsplash.com/photo-1559595500-e15296bdbb48?w=500&q=80", MinScore: 0, MaxScore: 10},
	{ID: 4, Title: "Focus & Clarity", Category: "Focus", Duration: "12 min", URL: "https://www.youtube.com/watch?v=zSkFFW--Ma0", Image: "https://images.unsplash.com/photo-1499209974431-9dddcece7f88?w=500&q=80", MinScore: 0, MaxScore: 6},
	{ID: 5, Title: "Morning Gratitude", Category: "Happiness", Duration: "8 min", URL: "https://www.youtube.com/watch?v=Komt033d59s", Image: "https://images.unsplash.com/photo-1507525428034-b723cf961d3e?w=500&q=80", MinScore: 0, MaxScore: 5},
	{ID: 6, Title: "Stress Relief SOS", Category: "Stress", Duration: "3 min", URL: "https://www.youtube.com/watch?v=F28MGLlpP90", Image: "https://images.unsplash.com/photo-1444930612915-f7b557f32e69?w=500&q=80", MinScore: 8, MaxScore: 10},
}

// Meditations returns the full catalog when score is nil. Otherwise it returns
// the sessions whose range contains score, narrowest range first.
func Meditations(score *int) []Meditation {
	if score == nil {
		return append([]Meditation(nil), meditationCatalog...)
	}
	out := []Meditation{}
	for _, m := range meditationCatalog {
		if *score >= m.MinScore && *score <= m.MaxScore {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MaxScore-out[i].MinScore < out[j].MaxScore-out[j].MinScore
	})
	return out
}
