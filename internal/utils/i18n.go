package utils

// Minimal server-side i18n for fixed keys.
// UI strings should live in the frontend; server provides only the labels
// that API responses carry.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":           "ok",
		"level.Low":           "Low stress",
		"level.Moderate":      "Moderate stress",
		"level.High":          "High stress",
		"emotion.Anxious":     "Anxious",
		"emotion.Tired":       "Tired",
		"emotion.Angry":       "Angry",
		"emotion.Calm":        "Calm",
		"emotion.Happy":       "Happy",
		"emotion.Overwhelmed": "Overwhelmed",
		"trend.improving":     "Stress is going down",
		"trend.rising":        "Stress is going up",
		"trend.stable":        "Stress is steady",
		"tip.none":            "Add your profession to your profile to get tailored tips.",
	},
	"zh": {
		"health.ok":           "好的",
		"level.Low":           "低压力",
		"level.Moderate":      "中等压力",
		"level.High":          "高压力",
		"emotion.Anxious":     "焦虑",
		"emotion.Tired":       "疲惫",
		"emotion.Angry":       "生气",
		"emotion.Calm":        "平静",
		"emotion.Happy":       "开心",
		"emotion.Overwhelmed": "不堪重负",
		"trend.improving":     "压力正在下降",
		"trend.rising":        "压力正在上升",
		"trend.stable":        "压力保持平稳",
		"tip.none":            "在个人资料中填写职业即可获得专属建议。",
	},
}

// T returns the translated string for key in locale; falls back to English,
// then to the key itself.
func T(locale, key string) string {
	for _, l := range []string{locale, "en"} {
		if v, ok := translations[l][key]; ok {
			return v
		}
	}
	return key
}

// Label translates value within group ("level", "emotion", "trend"). An empty
// value has no label.
func Label(locale, group, value string) string {
	if value == "" {
		return ""
	}
	return T(locale, group+"."+value)
}
