package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"smartrecruit/resume-analyzer/internal/models"
)

// ScoreBreakdown is the outcome of scoring one candidate against one
// requirement profile. All scores live in [0,100]. Values are created
// once and never mutated; a re-analysis produces a fresh breakdown.
type ScoreBreakdown struct {
	SkillsScore     float64
	ExperienceScore float64
	EducationScore  float64
	GlobalScore     float64
	Recommendations []string
}

// ScoringWeights are the fixed coefficients of the weighted global
// score plus the required/preferred skill factors.
type ScoringWeights struct {
	Skills     float64
	Experience float64
	Education  float64

	RequiredFactor  float64
	PreferredFactor float64
}

// Sub-scores below this cutoff emit a targeted recommendation.
const recommendationCutoff = 60.0

// A resume under this many words triggers the detail suggestion.
const detailedResumeWords = 150

type ScorerService interface {
	Score(features *CandidateFeatures, profile *models.JobRequirementProfile) *ScoreBreakdown
}

type scorerService struct {
	weights ScoringWeights
}

func NewScorerService(weights ScoringWeights) ScorerService {
	return &scorerService{weights: weights}
}

// Score is deterministic: identical inputs yield bit-identical
// breakdowns.
func (s *scorerService) Score(features *CandidateFeatures, profile *models.JobRequirementProfile) *ScoreBreakdown {
	breakdown := &ScoreBreakdown{
		SkillsScore:     s.scoreSkills(features, profile),
		ExperienceScore: scoreExperience(features.ExperienceYears, profile.MinExperienceYears),
		EducationScore:  scoreEducation(features.Education, ParseEducationLevel(profile.MinEducation)),
	}

	breakdown.GlobalScore = round2(
		s.weights.Skills*breakdown.SkillsScore +
			s.weights.Experience*breakdown.ExperienceScore +
			s.weights.Education*breakdown.EducationScore,
	)

	breakdown.Recommendations = s.recommendations(breakdown, features)

	return breakdown
}

// scoreSkills divides matched requirement weight by total requirement
// weight. Required skills carry a heavier factor than preferred ones,
// so a missing required skill costs proportionally more. A profile
// with no skills is vacuously satisfied.
func (s *scorerService) scoreSkills(features *CandidateFeatures, profile *models.JobRequirementProfile) float64 {
	var totalWeight, matchedWeight float64

	for _, req := range profile.Skills {
		factor := s.weights.PreferredFactor
		if req.Required {
			factor = s.weights.RequiredFactor
		}
		w := req.Weight * factor
		totalWeight += w

		if hasSkill(features.Skills, req.Name) {
			matchedWeight += w
		}
	}

	if totalWeight == 0 {
		return 100
	}
	return round2(100 * matchedWeight / totalWeight)
}

func hasSkill(skills map[string]float64, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	_, ok := skills[name]
	return ok
}

// scoreExperience scales linearly to 100 at the required minimum and
// caps there; no requirement means full marks. Monotonically
// non-decreasing in candidate years.
func scoreExperience(years, required float64) float64 {
	if required <= 0 {
		return 100
	}
	if years >= required {
		return 100
	}
	if years <= 0 {
		return 0
	}
	return round2(100 * years / required)
}

// scoreEducation grants 100 at or above the required ordinal and
// scales linearly with ordinal distance below it.
func scoreEducation(candidate, required EducationLevel) float64 {
	if required <= EducationNone || candidate >= required {
		return 100
	}
	return round2(100 * float64(candidate) / float64(required))
}

type recommendation struct {
	score   float64
	message string
}

// recommendations orders suggestions by ascending sub-score so the
// weakest area appears first. Ties keep a fixed skills, experience,
// education order.
func (s *scorerService) recommendations(breakdown *ScoreBreakdown, features *CandidateFeatures) []string {
	var recs []recommendation

	if breakdown.SkillsScore < recommendationCutoff {
		recs = append(recs, recommendation{breakdown.SkillsScore,
			"Technical skills do not sufficiently cover the position's requirements"})
	}
	if breakdown.ExperienceScore < recommendationCutoff {
		recs = append(recs, recommendation{breakdown.ExperienceScore,
			"Professional experience is below the required minimum for this position"})
	}
	if breakdown.EducationScore < recommendationCutoff {
		recs = append(recs, recommendation{breakdown.EducationScore,
			"Education level is below the position's requirement"})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].score < recs[j].score
	})

	var messages []string
	for _, r := range recs {
		messages = append(messages, r.message)
	}

	if len(messages) == 0 {
		messages = append(messages, "Profile is well suited to the position")
	}

	if features.WordCount > 0 && features.WordCount < detailedResumeWords {
		messages = append(messages, "The resume could be more detailed")
	}
	if features.ExperienceEstimate {
		messages = append(messages,
			"Experience was estimated from role entries; the score may be imprecise")
	}
	for _, warn := range features.Warnings {
		if features.ExperienceEstimate && strings.Contains(warn, "estimated from role entries") {
			continue
		}
		messages = append(messages, fmt.Sprintf("Note: %s", warn))
	}

	return messages
}

func round2(v float64) float64 {
	rounded := math.Round(v*100) / 100
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
