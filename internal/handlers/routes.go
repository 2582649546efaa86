package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Endpoints lists the routes served under the API prefix, for the root banner.
var Endpoints = []string{
	"GET /api/health",
	"GET /api/jobs",
	"POST /api/jobs",
	"POST /api/jobs/upload-json",
	"GET /api/jobs/:id",
	"DELETE /api/jobs/:id",
	"GET /api/jobs/:id/shortlist",
	"GET /api/cvs",
	"POST /api/cvs/upload",
	"POST /api/analyze",
	"GET /api/analyses/:job_id",
	"GET /api/analyses/:job_id/export",
	"GET /api/test",
	"GET /metrics",
}

type Handlers struct {
	Jobs        *JobHandler
	CVs         *CVHandler
	Analyses    *AnalysisHandler
	Diagnostics *DiagnosticsHandler
}

// Register mounts the API routes on api.
func Register(api fiber.Router, h Handlers) {
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Get("/jobs", h.Jobs.HandleList)
	api.Post("/jobs", h.Jobs.HandleCreate)
	api.Post("/jobs/upload-json", h.Jobs.HandleUploadJSON)
	api.Get("/jobs/:id", h.Jobs.HandleGet)
	api.Delete("/jobs/:id", h.Jobs.HandleDelete)
	api.Get("/jobs/:id/shortlist", h.Jobs.HandleShortlist)

	api.Get("/cvs", h.CVs.HandleList)
	api.Post("/cvs/upload", h.CVs.HandleUpload)

	api.Post("/analyze", h.Analyses.HandleAnalyze)
	api.Get("/analyses/:job_id", h.Analyses.HandleList)
	api.Get("/analyses/:job_id/export", h.Analyses.HandleExport)

	api.Get("/test", h.Diagnostics.HandleTest)
}

// ErrorHandler renders errors that escape a handler as {"error", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
