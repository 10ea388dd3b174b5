package utils

import (
	"sort"
	"strconv"
	"strings"
)

// Locales negotiates a response locale against the set of locales that have
// server-side strings.
type Locales struct {
	supported []string
	set       map[string]struct{}
	def       string
}

// NewLocales builds a negotiator. def is used when nothing matches; when def
// is not supported the first supported locale is used instead.
func NewLocales(def string, supported ...string) Locales {
	l := Locales{set: make(map[string]struct{}, len(supported))}
	for _, s := range supported {
		s = normalizeTag(s)
		if s == "" {
			continue
		}
		if _, dup := l.set[s]; dup {
			continue
		}
		l.set[s] = struct{}{}
		l.supported = append(l.supported, s)
	}
	if m, ok := l.Match(def); ok {
		l.def = m
	} else if len(l.supported) > 0 {
		l.def = l.supported[0]
	} else {
		l.def = "en"
	}
	return l
}

// Default returns the fallback locale.
func (l Locales) Default() string { return l.def }

// Match maps a language tag such as "zh-CN" or "zh_Hans" to a supported
// locale, trying the full tag and then its base language.
func (l Locales) Match(tag string) (string, bool) {
	tag = normalizeTag(tag)
	if tag == "" {
		return "", false
	}
	if _, ok := l.set[tag]; ok {
		return tag, true
	}
	if i := strings.IndexByte(tag, '-'); i > 0 {
		if _, ok := l.set[tag[:i]]; ok {
			return tag[:i], true
		}
	}
	return "", false
}

// Negotiate picks the locale for a request: an explicit lang query value
// first, then the highest weighted Accept-Language entry, then the default.
func (l Locales) Negotiate(queryLang, acceptLang string) string {
	if m, ok := l.Match(queryLang); ok {
		return m
	}
	for _, tag := range parseAcceptLanguage(acceptLang) {
		if m, ok := l.Match(tag); ok {
			return m
		}
	}
	return l.def
}

func normalizeTag(tag string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "_", "-")
}

// parseAcceptLanguage returns the tags of an Accept-Language header ordered by
// q-value, keeping header order for equal weights. Entries with q=0 or a
// malformed weight are dropped.
func parseAcceptLanguage(header string) []string {
	type weighted struct {
		tag string
		q   float64
	}
	var out []weighted
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(part, ";")
		tag := strings.TrimSpace(fields[0])
		if tag == "" || tag == "*" {
			continue
		}
		q := 1.0
		valid := true
		for _, param := range fields[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(k) != "q" {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || f < 0 || f > 1 {
				valid = false
				break
			}
			q = f
		}
		if !valid || q == 0 {
			continue
		}
		out = append(out, weighted{tag: tag, q: q})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].q > out[j].q })
	tags := make([]string, len(out))
	for i, w := range out {
		tags[i] = w.tag
	}
	return tags
}
