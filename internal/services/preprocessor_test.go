package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `John Smith
Senior Backend Engineer

Experience
2018 - 2022 Backend developer at Acme
Built services in Go and Python

Education
Master of Computer Science

Skills
Python, Go, Docker, PostgreSQL
`

func TestPreprocessSegmentsSections(t *testing.T) {
	p := NewPreprocessorService()

	sections := p.Preprocess(sampleResume, LanguageTag{Code: "en", Confidence: 1})

	assert.Contains(t, sections.Get(SectionExperience), "backend developer at acme")
	assert.Contains(t, sections.Get(SectionEducation), "master of computer science")
	assert.Contains(t, sections.Get(SectionSkills), "docker")
	// The preamble lands in body, nothing is dropped
	assert.Contains(t, sections.Get(SectionBody), "john smith")
}

func TestPreprocessFrenchHeadings(t *testing.T) {
	p := NewPreprocessorService()

	resume := "Expérience professionnelle\nDéveloppeur chez Acme\n\nFormation\nMaster en informatique\n\nCompétences\nPython, Docker"
	sections := p.Preprocess(resume, LanguageTag{Code: "fr", Confidence: 1})

	assert.Contains(t, sections.Get(SectionExperience), "développeur chez acme")
	assert.Contains(t, sections.Get(SectionEducation), "master en informatique")
	assert.Contains(t, sections.Get(SectionSkills), "python")
}

func TestPreprocessDeterministic(t *testing.T) {
	p := NewPreprocessorService()
	lang := LanguageTag{Code: "en", Confidence: 1}

	first := p.Preprocess(sampleResume, lang)
	second := p.Preprocess(sampleResume, lang)

	require.Equal(t, first.Text, second.Text)
	require.Equal(t, first.WordCount, second.WordCount)
	assert.Equal(t, first.ByName, second.ByName)
}

func TestPreprocessUnknownLanguageStillSegments(t *testing.T) {
	p := NewPreprocessorService()

	sections := p.Preprocess(sampleResume, LanguageTag{Code: "de", Confidence: 0})

	// Heading matching is bilingual regardless of the detected locale
	assert.NotEmpty(t, sections.Get(SectionExperience))
	assert.NotEmpty(t, sections.Get(SectionSkills))
}

func TestPreprocessEmptyText(t *testing.T) {
	p := NewPreprocessorService()

	sections := p.Preprocess("", LanguageTag{Code: "fr", Confidence: 0})

	assert.Equal(t, 0, sections.WordCount)
	assert.Empty(t, sections.Get(SectionExperience))
	assert.Empty(t, sections.Get(SectionBody))
}

func TestTokensRemovesStopWords(t *testing.T) {
	p := NewPreprocessorService()

	tokens := p.Tokens("the quick brown fox and the lazy dog", "en")
	assert.Equal(t, []string{"quick", "brown", "fox", "lazy", "dog"}, tokens)
}

func TestTokensUnknownLocaleKeepsEverything(t *testing.T) {
	p := NewPreprocessorService()

	tokens := p.Tokens("der schnelle fuchs", "de")
	assert.Equal(t, []string{"der", "schnelle", "fuchs"}, tokens)
}

func TestNormalizeTextPreservesAccentsAndSkillChars(t *testing.T) {
	normalized := NormalizeText("Compétences : C++, C#, .NET, CI/CD !")
	assert.Contains(t, normalized, "compétences")
	assert.Contains(t, normalized, "c++")
	assert.Contains(t, normalized, "c#")
	assert.Contains(t, normalized, ".net")
	assert.Contains(t, normalized, "ci/cd")
}

func TestPreprocessHeadingMustBeWholeLine(t *testing.T) {
	p := NewPreprocessorService()

	resume := "Experienced backend engineer\n\nExperience\n2019 - 2022 developer at Acme"
	sections := p.Preprocess(resume, LanguageTag{Code: "en", Confidence: 1})

	// A content line starting with a heading word is not a heading
	assert.Contains(t, sections.Get(SectionBody), "experienced backend engineer")
	assert.Contains(t, sections.Get(SectionExperience), "2019 - 2022 developer at acme")
}
