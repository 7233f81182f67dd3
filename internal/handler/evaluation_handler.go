package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/judge-api/internal/dto"
	"github.com/noah-isme/judge-api/internal/service"
	"github.com/noah-isme/judge-api/internal/utils"
)

// EvaluationHandler wires evaluation run and listing routes.
type EvaluationHandler struct {
	runs    service.RunService
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(runs service.RunService, service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		runs:    runs,
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches evaluation endpoints to the router group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/run", h.run)
	router.Get("", h.list)
	router.Delete("/clear", h.clear)
}

func (h *EvaluationHandler) run(c *fiber.Ctx) error {
	var payload dto.RunRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	stats, err := h.runs.Run(c.Context(), payload.QueueID)
	if err != nil {
		if errors.Is(err, service.ErrNoSubmissions) {
			return utils.SendError(c, fiber.StatusNotFound, err.Error())
		}
		h.logger.Error().Err(err).Msg("evaluation run failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "evaluation run failed")
	}

	return utils.SendSuccess(c, "evaluation run finished", stats)
}

func (h *EvaluationHandler) list(c *fiber.Ctx) error {
	req := dto.EvaluationListRequest{
		QuestionIDs: multiQuery(c, "questionId"),
		Verdicts:    multiQuery(c, "verdict"),
	}

	for _, raw := range multiQuery(c, "judgeId") {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "judgeId must be numeric")
		}
		req.JudgeIDs = append(req.JudgeIDs, uint(id))
	}

	response, err := h.service.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list evaluations")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list evaluations")
	}

	return utils.SendSuccess(c, "evaluations retrieved", response)
}

func (h *EvaluationHandler) clear(c *fiber.Ctx) error {
	deleted, err := h.service.Clear(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to clear evaluations")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to clear evaluations")
	}

	return utils.SendSuccess(c, "evaluations cleared", dto.ClearResponse{Deleted: deleted})
}
