package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartrecruit/resume-analyzer/internal/models"
)

type stubDocumentRepo struct {
	doc *models.Document
	err error
}

func (r *stubDocumentRepo) Create(*models.Document) error { return nil }

func (r *stubDocumentRepo) FindByID(uuid.UUID) (*models.Document, error) {
	return r.doc, r.err
}

func (r *stubDocumentRepo) FindByApplication(uuid.UUID) ([]models.Document, error) {
	return nil, nil
}

type captureResultRepo struct {
	mu      sync.Mutex
	created []*models.AnalysisResult
	err     error
}

func (r *captureResultRepo) Create(result *models.AnalysisResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, result)
	return nil
}

func (r *captureResultRepo) FindByJobID(uuid.UUID) (*models.AnalysisResult, error) {
	return nil, nil
}

func (r *captureResultRepo) FindLatestByApplication(uuid.UUID) (*models.AnalysisResult, error) {
	return nil, nil
}

type stubExtractor struct {
	result *ExtractedText
	err    error
	delay  time.Duration
}

func (e *stubExtractor) Extract(string, models.DocumentFormat) (*ExtractedText, error) {
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	return e.result, e.err
}

const analyzerResume = `Experience
Backend developer with 5 years of experience building services in Python and Docker.

Education
Master of Science in Computer Science

Skills
Python, Docker, PostgreSQL`

func analyzerProfile() models.JobRequirementProfile {
	return models.JobRequirementProfile{
		JobTitle: "Backend Developer",
		Skills: []models.SkillRequirement{
			{Name: "python", Weight: 1, Required: true},
			{Name: "docker", Weight: 1, Required: false},
		},
		MinExperienceYears: 3,
		MinEducation:       "bachelor",
	}
}

func newTestAnalyzer(docRepo *stubDocumentRepo, resultRepo *captureResultRepo, extractor ExtractorService, stageTimeout time.Duration) AnalyzerService {
	detector := NewLanguageDetector([]string{"fr", "en"}, "fr", 40)
	preprocessor := NewPreprocessorService()
	features := NewFeatureExtractorService(nil, nil, 0.72)
	scorer := NewScorerService(testWeights())

	return NewAnalyzerService(docRepo, resultRepo, extractor, detector, preprocessor, features, scorer, stageTimeout)
}

func analyzerJob() *models.AnalysisJob {
	return &models.AnalysisJob{
		ID:         uuid.New(),
		DocumentID: uuid.New(),
		Status:     models.StatusRunning,
		Attempts:   1,
		Profile:    analyzerProfile(),
	}
}

func TestAnalyzeFullPipeline(t *testing.T) {
	job := analyzerJob()
	docRepo := &stubDocumentRepo{doc: &models.Document{
		ID:            job.DocumentID,
		ApplicationID: uuid.New(),
		FilePath:      "/tmp/resume.pdf",
	}}
	resultRepo := &captureResultRepo{}
	extractor := &stubExtractor{result: &ExtractedText{Text: analyzerResume, PageCount: 1}}

	analyzer := newTestAnalyzer(docRepo, resultRepo, extractor, time.Second)

	result, err := analyzer.Analyze(context.Background(), job)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, job.ID, result.JobID)
	assert.Equal(t, docRepo.doc.ApplicationID, result.ApplicationID)
	assert.Equal(t, "en", result.Language)
	assert.Contains(t, result.Skills, "python")
	assert.Contains(t, result.Skills, "docker")
	assert.Equal(t, 5.0, result.ExperienceYears)
	assert.Equal(t, "master", result.EducationLevel)
	assert.Equal(t, 100.0, result.SkillsScore)
	assert.Equal(t, 100.0, result.ExperienceScore)
	assert.Equal(t, 100.0, result.EducationScore)
	assert.Equal(t, 100.0, result.GlobalScore)

	require.Len(t, resultRepo.created, 1)
	assert.Equal(t, result, resultRepo.created[0])
}

func TestAnalyzeCarriesExtractionWarnings(t *testing.T) {
	job := analyzerJob()
	docRepo := &stubDocumentRepo{doc: &models.Document{ID: job.DocumentID}}
	resultRepo := &captureResultRepo{}
	extractor := &stubExtractor{result: &ExtractedText{
		Text:     analyzerResume,
		Partial:  true,
		Warnings: []string{"1 of 2 pages could not be decoded"},
	}}

	analyzer := newTestAnalyzer(docRepo, resultRepo, extractor, time.Second)

	result, err := analyzer.Analyze(context.Background(), job)
	require.NoError(t, err)
	assert.Contains(t, result.Warnings, "1 of 2 pages could not be decoded")
}

func TestAnalyzeLanguageFallbackIsReported(t *testing.T) {
	job := analyzerJob()
	docRepo := &stubDocumentRepo{doc: &models.Document{ID: job.DocumentID}}
	resultRepo := &captureResultRepo{}
	// No stop-word markers at all: detection falls back to the default
	extractor := &stubExtractor{result: &ExtractedText{Text: "python docker kubernetes postgresql terraform ansible jenkins gitlab"}}

	analyzer := newTestAnalyzer(docRepo, resultRepo, extractor, time.Second)

	result, err := analyzer.Analyze(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, "fr", result.Language)
	assert.Equal(t, 0.0, result.LanguageConfidence)

	found := false
	for _, warn := range result.Warnings {
		if warn == `language defaulted to "fr" (low detection confidence)` {
			found = true
		}
	}
	assert.True(t, found, "expected language fallback warning, got %v", result.Warnings)
}

func TestAnalyzePermanentExtractionFailure(t *testing.T) {
	job := analyzerJob()
	docRepo := &stubDocumentRepo{doc: &models.Document{ID: job.DocumentID}}
	resultRepo := &captureResultRepo{}
	extractor := &stubExtractor{err: fmt.Errorf("%w: content signature does not match declared format %q", ErrCorruptDocument, "pdf")}

	analyzer := newTestAnalyzer(docRepo, resultRepo, extractor, time.Second)

	_, err := analyzer.Analyze(context.Background(), job)
	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	assert.Empty(t, resultRepo.created)
}

func TestAnalyzeStageTimeoutIsTransient(t *testing.T) {
	job := analyzerJob()
	docRepo := &stubDocumentRepo{doc: &models.Document{ID: job.DocumentID}}
	resultRepo := &captureResultRepo{}
	extractor := &stubExtractor{
		result: &ExtractedText{Text: analyzerResume},
		delay:  200 * time.Millisecond,
	}

	analyzer := newTestAnalyzer(docRepo, resultRepo, extractor, 10*time.Millisecond)

	_, err := analyzer.Analyze(context.Background(), job)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.False(t, IsPermanent(err))
	assert.Contains(t, err.Error(), "exceeded")
}

func TestAnalyzeMissingDocumentIsTransient(t *testing.T) {
	job := analyzerJob()
	docRepo := &stubDocumentRepo{err: errors.New("document not found")}
	resultRepo := &captureResultRepo{}
	extractor := &stubExtractor{result: &ExtractedText{Text: analyzerResume}}

	analyzer := newTestAnalyzer(docRepo, resultRepo, extractor, time.Second)

	_, err := analyzer.Analyze(context.Background(), job)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestAnalyzeResultPersistenceFailureIsTransient(t *testing.T) {
	job := analyzerJob()
	docRepo := &stubDocumentRepo{doc: &models.Document{ID: job.DocumentID}}
	resultRepo := &captureResultRepo{err: errors.New("connection refused")}
	extractor := &stubExtractor{result: &ExtractedText{Text: analyzerResume}}

	analyzer := newTestAnalyzer(docRepo, resultRepo, extractor, time.Second)

	_, err := analyzer.Analyze(context.Background(), job)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}
