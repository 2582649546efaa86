package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resumatch/internal/services"
)

type DiagnosticsHandler struct {
	diagnostics services.DiagnosticsService
}

func NewDiagnosticsHandler(diagnostics services.DiagnosticsService) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		diagnostics: diagnostics,
	}
}

// HandleTest handles GET /test. Stage failures are reported in the body, so
// the status is always 200.
func (h *DiagnosticsHandler) HandleTest(c *fiber.Ctx) error {
	return c.JSON(h.diagnostics.Run(c.UserContext()))
}
