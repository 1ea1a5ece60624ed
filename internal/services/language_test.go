package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDetector() LanguageDetector {
	return NewLanguageDetector([]string{"fr", "en"}, "fr", 40)
}

func TestDetectFrench(t *testing.T) {
	detector := newTestDetector()

	tag := detector.Detect("Je suis le développeur de la société et les projets sont dans des équipes pour une mission")
	assert.Equal(t, "fr", tag.Code)
	assert.Greater(t, tag.Confidence, 0.0)
}

func TestDetectEnglish(t *testing.T) {
	detector := newTestDetector()

	tag := detector.Detect("The candidate is an engineer and was responsible for the design of the platform in a team")
	assert.Equal(t, "en", tag.Code)
	assert.Greater(t, tag.Confidence, 0.0)
}

func TestDetectShortTextFallsBack(t *testing.T) {
	detector := newTestDetector()

	tag := detector.Detect("the and is")
	assert.Equal(t, "fr", tag.Code)
	assert.Equal(t, 0.0, tag.Confidence)
}

func TestDetectNoMarkersFallsBack(t *testing.T) {
	detector := newTestDetector()

	tag := detector.Detect("python java kubernetes docker postgresql terraform ansible prometheus grafana elasticsearch")
	assert.Equal(t, "fr", tag.Code)
	assert.Equal(t, 0.0, tag.Confidence)
}

func TestDetectMixedTextFallsBack(t *testing.T) {
	detector := newTestDetector()

	// Half the markers from each language: below the confidence cutoff
	tag := detector.Detect("the and is are was were of to in for le la les de des du et est une un")
	assert.Equal(t, "fr", tag.Code)
	assert.Equal(t, 0.0, tag.Confidence)
}
