package services

import (
	"regexp"
	"strings"
)

// Section names produced by segmentation. Lines that match no heading
// stay in SectionBody so nothing is dropped silently.
const (
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
	SectionLanguages  = "languages"
	SectionBody       = "body"
)

// Sections is the normalized, segmented view of an extracted resume.
type Sections struct {
	Language  string
	Text      string
	WordCount int
	ByName    map[string]string
}

// Get returns the named section, empty when absent.
func (s *Sections) Get(name string) string {
	if s.ByName == nil {
		return ""
	}
	return s.ByName[name]
}

type PreprocessorService interface {
	Preprocess(text string, language LanguageTag) *Sections
	Tokens(text string, language string) []string
}

type preprocessorService struct{}

func NewPreprocessorService() PreprocessorService {
	return &preprocessorService{}
}

// Heading keywords in both supported locales; matching is always
// bilingual so a detection miss cannot hide a section.
var sectionHeadings = map[string][]string{
	SectionExperience: {"experience", "expérience", "expériences", "work experience", "work history", "employment", "employment history", "parcours professionnel", "professional experience", "expérience professionnelle", "expériences professionnelles"},
	SectionEducation:  {"education", "formation", "formations", "études", "academic background", "diplômes", "qualifications"},
	SectionSkills:     {"skills", "compétences", "competences", "technical skills", "compétences techniques", "savoir-faire"},
	SectionLanguages:  {"languages", "langues"},
}

var stopWords = map[string][]string{
	"fr": {"le", "la", "les", "de", "des", "du", "un", "une", "et", "est", "en", "au", "aux", "pour", "dans", "par", "sur", "avec", "ce", "cette", "son", "sa", "ses", "que", "qui", "ne", "pas", "je", "il", "elle", "nous", "vous", "ils", "à", "ou"},
	"en": {"the", "a", "an", "and", "or", "is", "are", "was", "were", "of", "to", "in", "for", "with", "on", "at", "by", "this", "that", "from", "as", "it", "be", "been", "i", "we", "they", "my", "our"},
}

// Keeps letters (accented included), digits and a few skill-name
// characters such as "+" (c++), "#" (c#) and "/" (ci/cd).
var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}+#.'/\s–—-]`)
var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeText lowercases and strips punctuation while preserving
// accents, mirroring the cleanup applied before any matching.
func NormalizeText(text string) string {
	text = strings.ToLower(text)
	text = nonWordRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRe.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (p *preprocessorService) Preprocess(text string, language LanguageTag) *Sections {
	normalized := NormalizeText(text)

	sections := &Sections{
		Language:  language.Code,
		Text:      normalized,
		WordCount: len(strings.Fields(normalized)),
		ByName:    map[string]string{},
	}

	current := SectionBody
	var buf map[string][]string = map[string][]string{}

	for _, line := range strings.Split(normalized, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if name, ok := matchHeading(line); ok {
			current = name
			continue
		}
		buf[current] = append(buf[current], line)
	}

	for name, lines := range buf {
		sections.ByName[name] = strings.Join(lines, "\n")
	}

	return sections
}

// matchHeading reports whether a line is a section heading. A heading
// is exactly a known keyword (normalization already strips trailing
// colons); lines merely starting with the word, like "experienced
// backend engineer", are content.
func matchHeading(line string) (string, bool) {
	for _, name := range []string{SectionExperience, SectionEducation, SectionSkills, SectionLanguages} {
		for _, kw := range sectionHeadings[name] {
			if line == kw || line == kw+":" {
				return name, true
			}
		}
	}
	return "", false
}

// Tokens splits normalized text into words with the locale's stop
// words removed. Unknown locales fall back to plain tokenization.
func (p *preprocessorService) Tokens(text string, language string) []string {
	stops := map[string]struct{}{}
	for _, w := range stopWords[language] {
		stops[w] = struct{}{}
	}

	var tokens []string
	for _, tok := range strings.Fields(NormalizeText(text)) {
		if _, skip := stops[tok]; skip {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
