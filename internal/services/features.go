package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// EducationLevel is the ordinal degree scale. Higher is strictly
// better; extracting a higher degree can never lower a score.
type EducationLevel int

const (
	EducationNone EducationLevel = iota
	EducationSecondary
	EducationBachelor
	EducationMaster
	EducationDoctorate
)

var educationNames = map[EducationLevel]string{
	EducationNone:      "none",
	EducationSecondary: "secondary",
	EducationBachelor:  "bachelor",
	EducationMaster:    "master",
	EducationDoctorate: "doctorate",
}

func (l EducationLevel) String() string {
	if name, ok := educationNames[l]; ok {
		return name
	}
	return "none"
}

// ParseEducationLevel maps a level name back to its ordinal. Unknown
// names rank as none.
func ParseEducationLevel(name string) EducationLevel {
	for level, n := range educationNames {
		if n == strings.ToLower(strings.TrimSpace(name)) {
			return level
		}
	}
	return EducationNone
}

// CandidateFeatures are the structured attributes derived from a
// preprocessed resume. Absent sections yield zero values, which the
// scorer treats as valid "no evidence" input.
type CandidateFeatures struct {
	Skills             map[string]float64
	ExperienceYears    float64
	ExperienceEstimate bool
	Education          EducationLevel
	WordCount          int
	Warnings           []string
}

type FeatureExtractorService interface {
	ExtractFeatures(ctx context.Context, sections *Sections) (*CandidateFeatures, error)
}

type featureExtractorService struct {
	embedder            Embedder
	vocabulary          VocabularyIndex
	similarityThreshold float64
}

func NewFeatureExtractorService(embedder Embedder, vocabulary VocabularyIndex, similarityThreshold float64) FeatureExtractorService {
	return &featureExtractorService{
		embedder:            embedder,
		vocabulary:          vocabulary,
		similarityThreshold: similarityThreshold,
	}
}

func (f *featureExtractorService) ExtractFeatures(ctx context.Context, sections *Sections) (*CandidateFeatures, error) {
	features := &CandidateFeatures{
		Skills:    map[string]float64{},
		WordCount: sections.WordCount,
	}

	// Lexical pass over the whole text: exact vocabulary hits are
	// confidence 1.0 and cannot be beaten by a semantic match.
	matchVocabulary(features.Skills, sections.Text, ReferenceSkills)
	matchVocabulary(features.Skills, sections.Text, SoftSkills)

	if err := f.matchSemantic(ctx, features, sections); err != nil {
		return nil, err
	}

	years, estimate, warn := extractExperienceYears(sections.Get(SectionExperience))
	features.ExperienceYears = years
	features.ExperienceEstimate = estimate
	if warn != "" {
		features.Warnings = append(features.Warnings, warn)
	}

	features.Education = extractEducation(sections.Get(SectionEducation) + "\n" + sections.Get(SectionBody))

	return features, nil
}

func matchVocabulary(skills map[string]float64, text string, vocabulary []string) {
	for _, term := range vocabulary {
		if containsTerm(text, term) && skills[term] < 1.0 {
			skills[term] = 1.0
		}
	}
}

// containsTerm matches a vocabulary term on word boundaries so that
// "go" does not fire on "mongodb".
func containsTerm(text, term string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], term)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		idx = start + 1
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	c := text[i-1]
	return c == ' ' || c == '\n' || c == ',' || c == '(' || c == '/' || c == '\''
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	c := text[i]
	return c == ' ' || c == '\n' || c == ',' || c == ')' || c == '/' || c == '.'
}

// matchSemantic embeds the skills section and records vocabulary terms
// whose cosine similarity clears the threshold. Backend failures are
// transient: the whole stage retries rather than losing skills.
func (f *featureExtractorService) matchSemantic(ctx context.Context, features *CandidateFeatures, sections *Sections) error {
	if f.embedder == nil || f.vocabulary == nil {
		return nil
	}

	skillsText := strings.TrimSpace(sections.Get(SectionSkills))
	if skillsText == "" {
		return nil
	}

	embedding, err := f.embedder.EmbedText(ctx, skillsText)
	if err != nil {
		return fmt.Errorf("failed to embed skills section: %w", err)
	}

	matches, err := f.vocabulary.NearestTerms(ctx, embedding, 10)
	if err != nil {
		return fmt.Errorf("failed to query vocabulary index: %w", err)
	}

	for _, match := range matches {
		score := float64(match.Score)
		if score < f.similarityThreshold {
			continue
		}
		// A skill is recorded once with its best confidence
		if score > features.Skills[match.Term] {
			features.Skills[match.Term] = score
		}
	}

	return nil
}

var (
	explicitYearsRe = regexp.MustCompile(`(\d{1,2})(?:[.,](\d))?\s*\+?\s*(?:years?|ans?|années?)\b`)
	dateRangeRe     = regexp.MustCompile(`\b(19\d{2}|20\d{2})\s*(?:-|–|—|to|à|a)\s*(19\d{2}|20\d{2}|present|présent|aujourd'hui|current|now)\b`)
	roleEntryRe     = regexp.MustCompile(`(?m)^(?:[-•*]\s+|\d{4}\b)`)
)

// extractExperienceYears sums non-overlapping employment ranges and
// explicit "N years" statements found in the experience section. With
// no explicit duration at all it falls back to counting role entries,
// which is flagged as an estimate.
func extractExperienceYears(text string) (years float64, estimate bool, warning string) {
	if strings.TrimSpace(text) == "" {
		return 0, false, ""
	}

	var ranges [][2]int
	for _, m := range dateRangeRe.FindAllStringSubmatch(text, -1) {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		end := time.Now().Year()
		if v, err := strconv.Atoi(m[2]); err == nil {
			end = v
		}
		if end < start {
			continue
		}
		ranges = append(ranges, [2]int{start, end})
	}

	fromRanges := sumMergedRanges(ranges)

	var fromStatements float64
	for _, m := range explicitYearsRe.FindAllStringSubmatch(text, -1) {
		whole, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		v := float64(whole)
		if m[2] != "" {
			frac, _ := strconv.Atoi(m[2])
			v += float64(frac) / 10
		}
		// Statements describe totals, so the largest one wins
		if v > fromStatements {
			fromStatements = v
		}
	}

	if fromRanges > fromStatements {
		years = fromRanges
	} else {
		years = fromStatements
	}
	if years > 0 {
		return years, false, ""
	}

	// Fallback: one year per distinct role entry, low confidence
	roles := roleEntryRe.FindAllString(text, -1)
	if len(roles) == 0 {
		return 0, false, ""
	}
	return float64(len(roles)), true, "experience estimated from role entries (no explicit durations found)"
}

// sumMergedRanges totals year spans after merging overlaps, so
// concurrent positions are not double counted.
func sumMergedRanges(ranges [][2]int) float64 {
	if len(ranges) == 0 {
		return 0
	}

	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i][0] != ranges[j][0] {
			return ranges[i][0] < ranges[j][0]
		}
		return ranges[i][1] < ranges[j][1]
	})

	total := 0
	curStart, curEnd := ranges[0][0], ranges[0][1]
	for _, r := range ranges[1:] {
		if r[0] <= curEnd {
			if r[1] > curEnd {
				curEnd = r[1]
			}
			continue
		}
		total += curEnd - curStart
		curStart, curEnd = r[0], r[1]
	}
	total += curEnd - curStart

	return float64(total)
}

// Degree keywords per ordinal level, French and English. Multi-word
// phrases are fine: matching runs on normalized text.
var degreeKeywords = map[EducationLevel][]string{
	EducationDoctorate: {"doctorat", "doctorate", "phd", "ph.d"},
	EducationMaster:    {"master", "msc", "m.sc", "maîtrise", "mba", "ingénieur", "engineering degree"},
	EducationBachelor:  {"licence", "bachelor", "bsc", "b.sc", "bts", "dut"},
	EducationSecondary: {"baccalauréat", "high school", "lycée", "secondary school", "a-level"},
}

// extractEducation returns the highest degree mentioned anywhere in
// the given text. Keywords match on word boundaries so "mastering"
// never credits a master's degree.
func extractEducation(text string) EducationLevel {
	best := EducationNone
	for _, level := range []EducationLevel{EducationDoctorate, EducationMaster, EducationBachelor, EducationSecondary} {
		if level <= best {
			continue
		}
		for _, kw := range degreeKeywords[level] {
			if containsTerm(text, kw) {
				best = level
				break
			}
		}
	}
	return best
}
