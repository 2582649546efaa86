package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/logger"
	"alfredoptarigan/resumatch/internal/models"
	"alfredoptarigan/resumatch/internal/repositories"
	"alfredoptarigan/resumatch/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type AnalysisHandler struct {
	jobRepo      repositories.JobRepository
	cvRepo       repositories.CVRepository
	analysisRepo repositories.AnalysisRepository
	ranker       services.Ranker
	log          *zap.Logger
}

func NewAnalysisHandler(
	jobRepo repositories.JobRepository,
	cvRepo repositories.CVRepository,
	analysisRepo repositories.AnalysisRepository,
	ranker services.Ranker,
	log *zap.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		jobRepo:      jobRepo,
		cvRepo:       cvRepo,
		analysisRepo: analysisRepo,
		ranker:       ranker,
		log:          logger.OrNop(log),
	}
}

// HandleAnalyze handles POST /analyze
func (h *AnalysisHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	cvIDs := make([]uuid.UUID, 0, len(req.CVIDs))
	for _, raw := range req.CVIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Invalid CV ID format: %s", raw),
			})
		}
		cvIDs = append(cvIDs, id)
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job description not found",
			})
		}
		h.log.Error("❌ Failed to load job", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load job description",
		})
	}

	cvs, err := h.cvRepo.FindByIDs(cvIDs)
	if err != nil {
		h.log.Error("❌ Failed to load CVs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load CV files",
		})
	}
	if len(cvs) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No CV files found",
		})
	}

	byID := make(map[string]*models.CVFile, len(cvs))
	candidates := make([]services.Candidate, len(cvs))
	for i := range cvs {
		cv := &cvs[i]
		byID[cv.ID.String()] = cv
		candidates[i] = services.Candidate{ID: cv.ID.String(), Label: cv.Filename, Text: cv.Content}
	}

	results, err := h.ranker.AnalyzeBatch(c.UserContext(), job.Description, job.Requirements, candidates)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Error(),
			})
		}
		h.log.Error("❌ Batch analysis failed", zap.String("job_id", job.ID.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	records := make([]*models.AnalysisRecord, 0, len(results))
	for _, result := range results {
		cv, ok := byID[result.CandidateID]
		if !ok {
			continue
		}
		records = append(records, &models.AnalysisRecord{
			CVID:             cv.ID,
			JobID:            job.ID,
			OverallScore:     result.OverallScore,
			MatchingSkills:   pq.StringArray(result.MatchingSkills),
			MissingSkills:    pq.StringArray(result.MissingSkills),
			Summary:          result.Summary,
			DetailedAnalysis: result.DetailedAnalysis,
			ErrorMessage:     result.Error,
		})
	}

	if err := h.analysisRepo.CreateBatch(records); err != nil {
		h.log.Error("❌ Failed to save analyses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save analysis results",
		})
	}

	response := make([]models.AnalysisResultResponse, len(records))
	for i, rec := range records {
		response[i] = models.NewAnalysisResultResponse(rec, byID[rec.CVID.String()].Filename, job.Title)
	}

	return c.JSON(response)
}

// HandleList handles GET /analyses/:job_id
func (h *AnalysisHandler) HandleList(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	response, err := h.loadResults(jobID)
	if err != nil {
		h.log.Error("❌ Failed to load analyses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analysis results",
		})
	}

	return c.JSON(response)
}

// HandleExport handles GET /analyses/:job_id/export
func (h *AnalysisHandler) HandleExport(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job ID format",
		})
	}

	job, err := h.jobRepo.FindByID(jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Job description not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load job description",
		})
	}

	results, err := h.loadResults(jobID)
	if err != nil {
		h.log.Error("❌ Failed to load analyses", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load analysis results",
		})
	}

	var buf bytes.Buffer
	if err := services.WriteAnalysisReport(&buf, job, results); err != nil {
		h.log.Error("❌ Failed to build report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate report",
		})
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, reportFilename(job.Title)))
	return c.Send(buf.Bytes())
}

func (h *AnalysisHandler) loadResults(jobID uuid.UUID) ([]models.AnalysisResultResponse, error) {
	records, err := h.analysisRepo.FindByJobID(jobID)
	if err != nil {
		return nil, err
	}

	response := make([]models.AnalysisResultResponse, len(records))
	for i := range records {
		rec := &records[i]
		response[i] = models.NewAnalysisResultResponse(rec, rec.CV.Filename, rec.Job.Title)
	}
	return response, nil
}

func reportFilename(title string) string {
	name := unsafeFilenameChars.ReplaceAllString(title, "_")
	if name == "" || name == "_" {
		name = "job"
	}
	return "analysis_" + name + ".xlsx"
}
