package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"smartrecruit/resume-analyzer/internal/models"
	"smartrecruit/resume-analyzer/internal/repositories"
)

// AnalyzerService runs the full pipeline for one claimed job:
// extraction, language detection, preprocessing, feature extraction,
// scoring, and result persistence. State transitions stay with the
// worker; the analyzer only transforms and persists.
type AnalyzerService interface {
	Analyze(ctx context.Context, job *models.AnalysisJob) (*models.AnalysisResult, error)
}

type analyzerService struct {
	docRepo      repositories.DocumentRepository
	resultRepo   repositories.ResultRepository
	extractor    ExtractorService
	detector     LanguageDetector
	preprocessor PreprocessorService
	features     FeatureExtractorService
	scorer       ScorerService
	stageTimeout time.Duration
}

func NewAnalyzerService(
	docRepo repositories.DocumentRepository,
	resultRepo repositories.ResultRepository,
	extractor ExtractorService,
	detector LanguageDetector,
	preprocessor PreprocessorService,
	features FeatureExtractorService,
	scorer ScorerService,
	stageTimeout time.Duration,
) AnalyzerService {
	return &analyzerService{
		docRepo:      docRepo,
		resultRepo:   resultRepo,
		extractor:    extractor,
		detector:     detector,
		preprocessor: preprocessor,
		features:     features,
		scorer:       scorer,
		stageTimeout: stageTimeout,
	}
}

func (a *analyzerService) Analyze(ctx context.Context, job *models.AnalysisJob) (*models.AnalysisResult, error) {
	doc, err := a.docRepo.FindByID(job.DocumentID)
	if err != nil {
		return nil, Transient(fmt.Errorf("failed to load document: %w", err))
	}

	log.Printf("🔄 Analyzing document %s (job %s)\n", doc.ID, job.ID)

	var extracted *ExtractedText
	err = a.runStage(ctx, "extract", func(ctx context.Context) error {
		var stageErr error
		extracted, stageErr = a.extractor.Extract(doc.FilePath, doc.DeclaredFormat)
		return stageErr
	})
	if err != nil {
		return nil, err
	}

	var language LanguageTag
	err = a.runStage(ctx, "detect-language", func(ctx context.Context) error {
		language = a.detector.Detect(extracted.Text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var sections *Sections
	err = a.runStage(ctx, "preprocess", func(ctx context.Context) error {
		sections = a.preprocessor.Preprocess(extracted.Text, language)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var features *CandidateFeatures
	err = a.runStage(ctx, "extract-features", func(ctx context.Context) error {
		var stageErr error
		features, stageErr = a.features.ExtractFeatures(ctx, sections)
		return stageErr
	})
	if err != nil {
		return nil, err
	}

	var breakdown *ScoreBreakdown
	err = a.runStage(ctx, "score", func(ctx context.Context) error {
		breakdown = a.scorer.Score(features, &job.Profile)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := a.buildResult(job, doc, extracted, language, features, breakdown)

	if err := a.resultRepo.Create(result); err != nil {
		return nil, Transient(err)
	}

	log.Printf("✅ Analysis complete for job %s: global score %.2f\n", job.ID, result.GlobalScore)
	return result, nil
}

// runStage enforces the per-stage timeout. A stage that overruns is a
// transient failure eligible for retry; the goroutine is left to finish
// in the background rather than tearing down in-flight inference.
func (a *analyzerService) runStage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	stageCtx, cancel := context.WithTimeout(ctx, a.stageTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(stageCtx)
	}()

	select {
	case <-stageCtx.Done():
		if errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
			return Transient(fmt.Errorf("stage %s exceeded %s timeout", name, a.stageTimeout))
		}
		return Transient(fmt.Errorf("stage %s interrupted: %w", name, stageCtx.Err()))
	case err := <-done:
		if err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		return nil
	}
}

func (a *analyzerService) buildResult(
	job *models.AnalysisJob,
	doc *models.Document,
	extracted *ExtractedText,
	language LanguageTag,
	features *CandidateFeatures,
	breakdown *ScoreBreakdown,
) *models.AnalysisResult {
	warnings := append([]string{}, extracted.Warnings...)
	if language.Confidence == 0 {
		warnings = append(warnings, fmt.Sprintf("language defaulted to %q (low detection confidence)", language.Code))
	}
	warnings = append(warnings, features.Warnings...)

	return &models.AnalysisResult{
		ID:                 uuid.New(),
		JobID:              job.ID,
		DocumentID:         doc.ID,
		ApplicationID:      doc.ApplicationID,
		Language:           language.Code,
		LanguageConfidence: language.Confidence,
		Skills:             features.Skills,
		ExperienceYears:    features.ExperienceYears,
		ExperienceEstimate: features.ExperienceEstimate,
		EducationLevel:     features.Education.String(),
		WordCount:          features.WordCount,
		SkillsScore:        breakdown.SkillsScore,
		ExperienceScore:    breakdown.ExperienceScore,
		EducationScore:     breakdown.EducationScore,
		GlobalScore:        breakdown.GlobalScore,
		Recommendations:    breakdown.Recommendations,
		Warnings:           warnings,
	}
}
