package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/logger"
	"alfredoptarigan/resumatch/internal/models"
	"alfredoptarigan/resumatch/internal/repositories"
	"alfredoptarigan/resumatch/internal/services"
)

const defaultShortlistLimit = 10

type JobHandler struct {
	jobRepo repositories.JobRepository
	cvRepo  repositories.CVRepository
	index   services.CVIndex
	log     *zap.Logger
}

func NewJobHandler(
	jobRepo repositories.JobRepository,
	cvRepo repositories.CVRepository,
	index services.CVIndex,
	log *zap.Logger,
) *JobHandler {
	return &JobHandler{
		jobRepo: jobRepo,
		cvRepo:  cvRepo,
		index:   index,
		log:     logger.OrNop(log),
	}
}

// HandleList handles GET /jobs
func (h *JobHandler) HandleList(c *fiber.Ctx) error {
	jobs, err := h.jobRepo.FindActive()
	if err != nil {
		h.log.Error("❌ Failed to list jobs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load job descriptions",
		})
	}

	response := make([]models.JobDescriptionResponse, len(jobs))
	for i := range jobs {
		response[i] = models.NewJobDescriptionResponse(&jobs[i])
	}

	return c.JSON(response)
}

// HandleCreate handles POST /jobs
func (h *JobHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.JobDescriptionCreate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	return h.create(c, &req)
}

// HandleUploadJSON handles POST /jobs/upload-json
func (h *JobHandler) HandleUploadJSON(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	req, err := services.ParseJobFile(data)
	if err != nil {
		var schemaErr *services.SchemaError
		if errors.As(err, &schemaErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   schemaErr.Error(),
				"details": schemaErr.Details,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return h.create(c, req)
}

func (h *JobHandler) create(c *fiber.Ctx, req *models.JobDescriptionCreate) error {
	if err := services.ValidateJobCreate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	job := &models.JobDescription{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: pq.StringArray(req.Requirements),
		Active:       true,
	}

	if err := h.jobRepo.Create(job); err != nil {
		if errors.Is(err, repositories.ErrDuplicateTitle) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.log.Error("❌ Failed to create job", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create job description",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.NewJobDescriptionResponse(job))
}

// HandleGet handles GET /jobs/:id
func (h *JobHandler) HandleGet(c *fiber.Ctx) error {
	job, status, msg := h.lookup(c)
	if job == nil {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	return c.JSON(models.NewJobDescriptionResponse(job))
}

// HandleDelete handles DELETE /jobs/:id. Jobs are deactivated, not removed.
func (h *JobHandler) HandleDelete(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	if err := h.jobRepo.Deactivate(jobID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job description not found",
			})
		}
		h.log.Error("❌ Failed to deactivate job", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete job description",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Job description deleted",
	})
}

// HandleShortlist handles GET /jobs/:id/shortlist
func (h *JobHandler) HandleShortlist(c *fiber.Ctx) error {
	job, status, msg := h.lookup(c)
	if job == nil {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	limit := c.QueryInt("limit", defaultShortlistLimit)
	if limit <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be positive",
		})
	}

	hits, err := h.index.Shortlist(c.UserContext(), job.Description, job.Requirements, limit)
	if err != nil {
		if errors.Is(err, services.ErrIndexDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "CV index is not configured",
			})
		}
		h.log.Error("❌ Shortlist failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	ids := make([]uuid.UUID, 0, len(hits))
	for _, hit := range hits {
		if id, err := uuid.Parse(hit.CVID); err == nil {
			ids = append(ids, id)
		}
	}

	cvs, err := h.cvRepo.FindByIDs(ids)
	if err != nil {
		h.log.Error("❌ Failed to load shortlisted CVs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load CV files",
		})
	}

	names := make(map[uuid.UUID]string, len(cvs))
	for _, cv := range cvs {
		names[cv.ID] = cv.Filename
	}

	entries := make([]models.ShortlistEntry, 0, len(hits))
	for _, hit := range hits {
		id, err := uuid.Parse(hit.CVID)
		if err != nil {
			continue
		}
		name, ok := names[id]
		if !ok {
			// Indexed CV no longer stored.
			continue
		}
		entries = append(entries, models.ShortlistEntry{CVID: id, Filename: name, Score: hit.Score})
	}

	return c.JSON(entries)
}

func (h *JobHandler) lookup(c *fiber.Ctx) (*models.JobDescription, int, string) {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.StatusBadRequest, "Invalid job ID format"
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fiber.StatusNotFound, "Job description not found"
		}
		h.log.Error("❌ Failed to load job", zap.Error(err))
		return nil, fiber.StatusInternalServerError, "Failed to load job description"
	}

	return job, 0, ""
}
