package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"smartrecruit/resume-analyzer/internal/models"
	"smartrecruit/resume-analyzer/internal/repositories"
	"smartrecruit/resume-analyzer/internal/services"
)

type AnalyzeHandler struct {
	jobRepo repositories.JobRepository
	docRepo repositories.DocumentRepository
	worker  services.Worker
}

func NewAnalyzeHandler(
	jobRepo repositories.JobRepository,
	docRepo repositories.DocumentRepository,
	worker services.Worker,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		jobRepo: jobRepo,
		docRepo: docRepo,
		worker:  worker,
	}
}

// HandleAnalyze handles POST /analyze. The record-store collaborator
// calls it right after persisting a new document, or again for an
// explicit re-analysis.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid document_id format",
		})
	}

	if _, err := h.docRepo.FindByID(docID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Document not found",
		})
	}

	// At most one non-terminal job per document: concurrent
	// re-submissions coalesce into the existing job.
	if active, err := h.jobRepo.FindActiveByDocument(docID); err == nil && active != nil {
		return c.Status(fiber.StatusAccepted).JSON(models.AnalyzeResponse{
			ID:     active.ID.String(),
			Status: string(active.Status),
		})
	}

	job := &models.AnalysisJob{
		ID:         uuid.New(),
		DocumentID: docID,
		Profile:    req.Profile,
		Status:     models.StatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := h.jobRepo.Create(job); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create analysis job",
		})
	}

	h.worker.EnqueueJob(job.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.AnalyzeResponse{
		ID:     job.ID.String(),
		Status: string(job.Status),
	})
}

// HandleCancel handles POST /jobs/:id/cancel. Only a pending job can
// be cancelled; a running one finishes naturally and the request is a
// no-op reported with the current status.
func (h *AnalyzeHandler) HandleCancel(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	if err := h.jobRepo.Cancel(jobID); err != nil {
		job, findErr := h.jobRepo.FindByID(jobID)
		if findErr != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Analysis job not found",
			})
		}
		return c.JSON(models.AnalyzeResponse{
			ID:     job.ID.String(),
			Status: string(job.Status),
		})
	}

	return c.JSON(models.AnalyzeResponse{
		ID:     jobID.String(),
		Status: string(models.StatusCancelled),
	})
}
