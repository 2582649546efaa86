package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resumatch/internal/logger"
	"alfredoptarigan/resumatch/internal/models"
	"alfredoptarigan/resumatch/internal/repositories"
	"alfredoptarigan/resumatch/internal/services"
)

type CVHandler struct {
	cvRepo      repositories.CVRepository
	storage     services.StorageService
	extractor   services.TextExtractor
	index       services.CVIndex
	maxFileSize int64
	log         *zap.Logger
}

func NewCVHandler(
	cvRepo repositories.CVRepository,
	storage services.StorageService,
	extractor services.TextExtractor,
	index services.CVIndex,
	maxFileSize int64,
	log *zap.Logger,
) *CVHandler {
	return &CVHandler{
		cvRepo:      cvRepo,
		storage:     storage,
		extractor:   extractor,
		index:       index,
		maxFileSize: maxFileSize,
		log:         logger.OrNop(log),
	}
}

// HandleList handles GET /cvs
func (h *CVHandler) HandleList(c *fiber.Ctx) error {
	cvs, err := h.cvRepo.FindAll()
	if err != nil {
		h.log.Error("❌ Failed to list CVs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load CV files",
		})
	}

	response := make([]models.CVFileResponse, len(cvs))
	for i := range cvs {
		response[i] = models.NewCVFileResponse(&cvs[i])
	}

	return c.JSON(response)
}

// HandleUpload handles POST /cvs/upload. Files are processed in order and the
// first failing file aborts the request; files stored before it are kept.
func (h *CVHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid multipart form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "files field is required",
		})
	}

	uploaded := make([]models.CVFileResponse, 0, len(files))
	for _, fileHeader := range files {
		cv, err := h.process(c.UserContext(), fileHeader)
		services.RecordUpload(services.FileFormat(fileHeader.Filename), err == nil)
		if err != nil {
			h.log.Warn("⚠️ CV upload rejected",
				zap.String("filename", fileHeader.Filename),
				zap.Error(err),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("Failed to process %s: %s", fileHeader.Filename, err.Error()),
			})
		}
		uploaded = append(uploaded, models.NewCVFileResponse(cv))
	}

	return c.Status(fiber.StatusCreated).JSON(uploaded)
}

func (h *CVHandler) process(ctx context.Context, fileHeader *multipart.FileHeader) (*models.CVFile, error) {
	if !services.IsSupportedFile(fileHeader.Filename) {
		return nil, &services.UnsupportedFormatError{Extension: services.FileFormat(fileHeader.Filename)}
	}

	if fileHeader.Size > h.maxFileSize {
		return nil, fmt.Errorf("file size exceeds maximum allowed size of %d bytes", h.maxFileSize)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	text, format, err := h.extractor.Extract(fileHeader.Filename, data)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("no text could be extracted")
	}

	storedName, filePath, err := h.storage.SaveFile(fileHeader.Filename, data)
	if err != nil {
		return nil, err
	}

	cv := &models.CVFile{
		Filename: fileHeader.Filename,
		Content:  text,
		FileType: format,
		FileSize: int64(len(data)),
		FilePath: filePath,
	}
	if err := h.cvRepo.Create(cv); err != nil {
		if delErr := h.storage.DeleteFile(storedName); delErr != nil {
			h.log.Warn("⚠️ Failed to remove orphaned upload", zap.String("file", storedName), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save CV record: %w", err)
	}

	if h.index != nil && h.index.Enabled() {
		if err := h.index.IndexCV(ctx, cv.ID.String(), text); err != nil {
			h.log.Warn("⚠️ Failed to index CV", zap.String("cv_id", cv.ID.String()), zap.Error(err))
		}
	}

	h.log.Info("📄 CV uploaded",
		zap.String("cv_id", cv.ID.String()),
		zap.String("filename", cv.Filename),
		zap.String("format", format),
	)

	return cv, nil
}
