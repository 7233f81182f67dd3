package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judge-api/internal/dto"
	"github.com/noah-isme/judge-api/internal/service"
	"github.com/noah-isme/judge-api/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Delete("/clear", h.clear)
	router.Delete("/:id", h.delete)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	assignments, err := h.service.List(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list assignments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list assignments")
	}

	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.AssignmentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubmissionNotFound),
			errors.Is(err, service.ErrQuestionNotFound),
			errors.Is(err, service.ErrJudgeNotFound):
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Msg("failed to create assignment")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create assignment")
		}
	}

	return utils.SendSuccess(c, "assignment created", assignment)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, service.ErrAssignmentNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
		}
		h.logger.Error().Err(err).Uint("assignment_id", id).Msg("failed to delete assignment")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete assignment")
	}

	return utils.SendSuccess(c, "assignment deleted", nil)
}

func (h *AssignmentHandler) clear(c *fiber.Ctx) error {
	deleted, err := h.service.Clear(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to clear assignments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to clear assignments")
	}

	return utils.SendSuccess(c, "assignments cleared", dto.ClearResponse{Deleted: deleted})
}
