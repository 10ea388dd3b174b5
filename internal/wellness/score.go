package wellness

// Score validates a against q and returns the sum of the scored items.
// Every item must be answered; per-item domains bound the total, so the
// result is never clamped.
func Score(q Questionnaire, a Answers) (int, error) {
	if err := q.Validate(a); err != nil {
		return 0, err
	}
	total := 0
	for _, it := range q.Items {
		if it.Scored {
			total += a[it.ID]
		}
	}
	return total, nil
}

// EmotionOf returns the emotion selected on the mood item of the emotion check-in.
func EmotionOf(a Answers) (Emotion, error) {
	v, ok := a[MoodItemID]
	if !ok {
		return "", &IncompleteInputError{Missing: []string{MoodItemID}}
	}
	emotions := Emotions()
	if v < 0 || v >= len(emotions) {
		return "", &OutOfDomainError{Field: MoodItemID, Value: v, Min: 0, Max: len(emotions) - 1}
	}
	return emotions[v], nil
}
