package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judge-api/internal/dto"
	"github.com/noah-isme/judge-api/internal/service"
	"github.com/noah-isme/judge-api/internal/utils"
)

// JudgeHandler wires judge HTTP routes.
type JudgeHandler struct {
	service service.JudgeService
	logger  zerolog.Logger
}

// NewJudgeHandler constructs the handler.
func NewJudgeHandler(service service.JudgeService, logger zerolog.Logger) *JudgeHandler {
	return &JudgeHandler{
		service: service,
		logger:  logger.With().Str("component", "judge_handler").Logger(),
	}
}

// Register attaches judge endpoints to the router group.
func (h *JudgeHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.delete)
}

// RegisterModels attaches the model allow-list endpoint.
func (h *JudgeHandler) RegisterModels(router fiber.Router) {
	router.Get("", h.models)
}

func (h *JudgeHandler) list(c *fiber.Ctx) error {
	judges, err := h.service.List(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list judges")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list judges")
	}

	return utils.SendSuccess(c, "judges retrieved", judges)
}

func (h *JudgeHandler) create(c *fiber.Ctx) error {
	var payload dto.JudgeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	judge, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "judge created", judge)
}

func (h *JudgeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	judge, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "judge retrieved", judge)
}

func (h *JudgeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.JudgeUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	judge, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "judge updated", judge)
}

func (h *JudgeHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "judge deleted", nil)
}

func (h *JudgeHandler) models(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "supported models retrieved", h.service.Models())
}

func (h *JudgeHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrJudgeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "judge not found")
	case errors.Is(err, service.ErrUnknownModel):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("judge operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
