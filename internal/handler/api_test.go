package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/config"
	"github.com/noah-isme/judge-api/internal/handler"
	"github.com/noah-isme/judge-api/internal/models"
	"github.com/noah-isme/judge-api/internal/repository"
	"github.com/noah-isme/judge-api/internal/router"
	"github.com/noah-isme/judge-api/internal/service"
	"github.com/noah-isme/judge-api/pkg/ai"
	"github.com/noah-isme/judge-api/pkg/events"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// stubJudge returns one canned result for every invocation.
type stubJudge struct {
	result ai.EvalResult
}

func (j stubJudge) Invoke(_ context.Context, _ ai.EvalInput) ai.EvalResult {
	return j.result
}

func setupApp(t *testing.T, result ai.EvalResult) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Submission{},
		&models.Question{},
		&models.Answer{},
		&models.Judge{},
		&models.Assignment{},
		&models.Evaluation{},
	))

	logger := zerolog.Nop()
	validate := validator.New(validator.WithRequiredStructEnabled())
	registry := ai.NewModelRegistry(nil, "gpt-4o-mini")

	submissionRepo := repository.NewSubmissionRepository(db)
	judgeRepo := repository.NewJudgeRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	submissionService := service.NewSubmissionService(submissionRepo, validate, logger)
	judgeService := service.NewJudgeService(judgeRepo, registry, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, submissionRepo, judgeRepo, validate, logger)
	evaluationService := service.NewEvaluationService(evaluationRepo, nil, 0, logger)
	runService := service.NewRunService(
		submissionRepo,
		assignmentRepo,
		judgeRepo,
		evaluationRepo,
		stubJudge{result: result},
		events.NewPublisher(nil, "judge.runs", logger),
		evaluationService,
		logger,
	)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Judge API", AppEnv: "test"}, router.Dependencies{
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		JudgeHandler:      handler.NewJudgeHandler(judgeService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		EvaluationHandler: handler.NewEvaluationHandler(runService, evaluationService, logger),
		DB:                db,
	})

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	return resp, env
}

func importPayload(id string) []map[string]interface{} {
	return []map[string]interface{}{
		{
			"id":             id,
			"queueId":        "queue_1",
			"labelingTaskId": "task_1",
			"createdAt":      1714000000000,
			"questions": []map[string]interface{}{
				{
					"rev": 1,
					"data": map[string]interface{}{
						"id":           "q1",
						"questionType": "single-choice-task",
						"questionText": "Is the sky blue?",
					},
				},
			},
			"answers": map[string]interface{}{
				"q1": map[string]interface{}{"choice": "yes", "reasoning": "looked outside"},
			},
		},
	}
}

func TestAPIFullEvaluationFlow(t *testing.T) {
	app := setupApp(t, ai.EvalResult{OK: true, Verdict: models.VerdictPass, Reasoning: "matches rubric"})

	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/submissions/import", importPayload("sub_1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	resp, env = doJSON(t, app, http.MethodPost, "/api/v1/judges", map[string]interface{}{
		"name":      "accuracy",
		"prompt":    "Check factual accuracy.",
		"modelName": "gpt-4o-mini",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var judge struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &judge))
	require.NotZero(t, judge.ID)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/assignments", map[string]interface{}{
		"submissionId": "sub_1",
		"questionId":   "q1",
		"judgeId":      judge.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, app, http.MethodPost, "/api/v1/evaluations/run", map[string]interface{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		Planned   int `json:"planned"`
		Completed int `json:"completed"`
		Failed    int `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Equal(t, 1, stats.Planned)
	require.Equal(t, 1, stats.Completed)
	require.Zero(t, stats.Failed)

	resp, env = doJSON(t, app, http.MethodGet, "/api/v1/evaluations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Summary struct {
			Total       int     `json:"total"`
			Pass        int     `json:"pass"`
			PassRatePct float64 `json:"passRatePct"`
		} `json:"summary"`
		Items []struct {
			Verdict   string `json:"verdict"`
			Reasoning string `json:"reasoning"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	require.Equal(t, 1, listing.Summary.Total)
	require.Equal(t, 1, listing.Summary.Pass)
	require.Equal(t, float64(100), listing.Summary.PassRatePct)
	require.Len(t, listing.Items, 1)
	require.Equal(t, models.VerdictPass, listing.Items[0].Verdict)
}

func TestAPIRunWithoutSubmissionsReturns404(t *testing.T) {
	app := setupApp(t, ai.EvalResult{OK: true, Verdict: models.VerdictPass})

	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/evaluations/run", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.False(t, env.Success)
}

func TestAPIRunScopedToUnknownQueueReturns404(t *testing.T) {
	app := setupApp(t, ai.EvalResult{OK: true, Verdict: models.VerdictPass})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/submissions/import", importPayload("sub_1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/evaluations/run", map[string]interface{}{
		"queueId": "queue_other",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, env.Message, "queue_other")
}

func TestAPIJudgeValidation(t *testing.T) {
	app := setupApp(t, ai.EvalResult{OK: true, Verdict: models.VerdictPass})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/judges", map[string]interface{}{
		"name": "no-prompt",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env := doJSON(t, app, http.MethodPost, "/api/v1/judges", map[string]interface{}{
		"name":      "bad-model",
		"prompt":    "rubric",
		"modelName": "made-up",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, env.Message, "unknown model")

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/judges/999", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIModelsEndpoint(t *testing.T) {
	app := setupApp(t, ai.EvalResult{OK: true, Verdict: models.VerdictPass})

	resp, env := doJSON(t, app, http.MethodGet, "/api/v1/models", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed []string
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Contains(t, listed, "gpt-4o-mini")
}

func TestAPIAssignmentReferenceChecks(t *testing.T) {
	app := setupApp(t, ai.EvalResult{OK: true, Verdict: models.VerdictPass})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/assignments", map[string]interface{}{
		"submissionId": "missing",
		"questionId":   "q1",
		"judgeId":      1,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPISubmissionDeleteAndClear(t *testing.T) {
	app := setupApp(t, ai.EvalResult{OK: true, Verdict: models.VerdictPass})

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/submissions/import", importPayload("sub_1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/submissions/sub_1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/submissions/sub_1", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, env := doJSON(t, app, http.MethodDelete, "/api/v1/submissions/clear", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared struct {
		Deleted int64 `json:"deleted"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cleared))
	require.Zero(t, cleared.Deleted)
}

func TestAPIEvaluationFilterRejectsBadJudgeID(t *testing.T) {
	app := setupApp(t, ai.EvalResult{OK: true, Verdict: models.VerdictPass})

	resp, env := doJSON(t, app, http.MethodGet, "/api/v1/evaluations?judgeId=abc", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, env.Message, "judgeId")
}

func TestAPIHealth(t *testing.T) {
	app := setupApp(t, ai.EvalResult{OK: true, Verdict: models.VerdictPass})

	resp, env := doJSON(t, app, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "up", health.Database)
}
