package wellness

// Band thresholds on the 21-point scale. Each band includes its lower bound.
const (
	bandScale         = 21
	moderateThreshold = 10
	highThreshold     = 15
)

// Classify maps a banded score to its severity level. On a 21-point scale the
// bands are <10 Low, 10..14 Moderate, >=15 High. Other scales use the same
// bands proportionally, compared by integer cross-multiplication.
func Classify(score, maxScore int) (Level, error) {
	if maxScore <= 0 {
		return "", &OutOfDomainError{Field: "max_score", Value: maxScore, Min: 1, Max: maxScore, Reason: "max score must be positive"}
	}
	if score < 0 || score > maxScore {
		return "", &OutOfDomainError{Field: "score", Value: score, Min: 0, Max: maxScore}
	}
	switch {
	case score*bandScale >= highThreshold*maxScore:
		return LevelHigh, nil
	case score*bandScale >= moderateThreshold*maxScore:
		return LevelModerate, nil
	default:
		return LevelLow, nil
	}
}
