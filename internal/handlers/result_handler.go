package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"smartrecruit/resume-analyzer/internal/models"
	"smartrecruit/resume-analyzer/internal/repositories"
)

type ResultHandler struct {
	jobRepo    repositories.JobRepository
	resultRepo repositories.ResultRepository
}

func NewResultHandler(
	jobRepo repositories.JobRepository,
	resultRepo repositories.ResultRepository,
) *ResultHandler {
	return &ResultHandler{
		jobRepo:    jobRepo,
		resultRepo: resultRepo,
	}
}

// HandleGetResult handles GET /result/:id where :id is the job ID.
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Analysis job not found",
		})
	}

	response := models.ResultResponse{
		JobID:    job.ID.String(),
		Status:   string(job.Status),
		Attempts: job.Attempts,
	}

	if job.Status == models.StatusSucceeded {
		if result, err := h.resultRepo.FindByJobID(job.ID); err == nil {
			response.Result = result
		}
	}

	if job.Status == models.StatusFailed && job.LastError != nil {
		response.ErrorMessage = job.LastError
	}

	return c.JSON(response)
}

// HandleGetApplicationResult handles GET /applications/:id/result: the
// latest score breakdown for an application record, read back by the
// record-store collaborator.
func (h *ResultHandler) HandleGetApplicationResult(c *fiber.Ctx) error {
	applicationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID format",
		})
	}

	result, err := h.resultRepo.FindLatestByApplication(applicationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No analysis result for this application",
		})
	}

	return c.JSON(result)
}
