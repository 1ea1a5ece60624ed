package services

import (
	"strings"
	"unicode"
)

// LanguageTag is the detected dominant language of a text with a
// confidence in [0,1]. Confidence 0 means the detector fell back to the
// configured default locale.
type LanguageTag struct {
	Code       string
	Confidence float64
}

type LanguageDetector interface {
	Detect(text string) LanguageTag
}

type languageDetector struct {
	supported     []string
	defaultLocale string
	minTextLength int
}

// Word-frequency markers per supported locale. Scoring counts hits of
// these high-frequency function words; proportions decide the winner.
var languageMarkers = map[string][]string{
	"fr": {"le", "la", "les", "de", "des", "du", "et", "est", "une", "un", "pour", "dans", "avec", "sur", "par", "au", "aux", "ce", "cette", "son", "ses"},
	"en": {"the", "and", "is", "are", "was", "were", "of", "to", "in", "for", "with", "on", "at", "by", "an", "this", "that", "from", "as", "it"},
}

// Detection below this share of marker hits is considered unreliable.
const confidenceCutoff = 0.55

func NewLanguageDetector(supported []string, defaultLocale string, minTextLength int) LanguageDetector {
	return &languageDetector{
		supported:     supported,
		defaultLocale: defaultLocale,
		minTextLength: minTextLength,
	}
}

func (d *languageDetector) Detect(text string) LanguageTag {
	fallback := LanguageTag{Code: d.defaultLocale, Confidence: 0}

	if len(strings.TrimSpace(text)) < d.minTextLength {
		return fallback
	}

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(tokens) == 0 {
		return fallback
	}

	hits := make(map[string]int, len(d.supported))
	total := 0
	for _, lang := range d.supported {
		markers, ok := languageMarkers[lang]
		if !ok {
			continue
		}
		set := make(map[string]struct{}, len(markers))
		for _, m := range markers {
			set[m] = struct{}{}
		}
		for _, tok := range tokens {
			if _, found := set[tok]; found {
				hits[lang]++
				total++
			}
		}
	}

	if total == 0 {
		return fallback
	}

	best := ""
	bestHits := -1
	for _, lang := range d.supported {
		// Iterate the configured order so ties resolve deterministically
		if hits[lang] > bestHits {
			best = lang
			bestHits = hits[lang]
		}
	}

	confidence := float64(bestHits) / float64(total)
	if confidence < confidenceCutoff {
		return fallback
	}

	return LanguageTag{Code: best, Confidence: confidence}
}
