package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judge-api/internal/dto"
	"github.com/noah-isme/judge-api/internal/service"
	"github.com/noah-isme/judge-api/internal/utils"
)

// SubmissionHandler wires submission HTTP routes.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches submission endpoints to the router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Post("/import", h.importSubmissions)
	router.Get("", h.list)
	router.Delete("/clear", h.clear)
	router.Delete("/:id", h.delete)
}

func (h *SubmissionHandler) importSubmissions(c *fiber.Ctx) error {
	var payload []dto.SubmissionImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "expected a JSON array of submissions")
	}

	imported, err := h.service.Import(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("submission import failed")
		return utils.SendError(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.SendSuccess(c, "submissions imported", dto.ImportResponse{Imported: imported})
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	submissions, err := h.service.List(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list submissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list submissions")
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrSubmissionNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "submission not found")
		}
		h.logger.Error().Err(err).Str("submission_id", id).Msg("failed to delete submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete submission")
	}

	return utils.SendSuccess(c, "submission deleted", nil)
}

func (h *SubmissionHandler) clear(c *fiber.Ctx) error {
	deleted, err := h.service.Clear(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to clear submissions")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to clear submissions")
	}

	return utils.SendSuccess(c, "submissions cleared", dto.ClearResponse{Deleted: deleted})
}
