package ai

import (
	"context"
	"sort"
)

// EvalInput carries the artefacts needed to grade one human answer.
type EvalInput struct {
	QuestionText string
	AnswerText   string
	Rubric       string
	Model        string
}

// EvalResult is the uniform outcome of one judge invocation. OK is false for
// any failure (unknown model, transport error, malformed response); in that
// case Verdict is always "inconclusive" and Reasoning explains what happened.
type EvalResult struct {
	OK        bool   `json:"ok"`
	Verdict   string `json:"verdict"`
	Reasoning string `json:"reasoning"`
}

// Judge invokes an external text-generation service to grade an answer. It
// never returns an error: every failure mode is folded into the result.
type Judge interface {
	Invoke(ctx context.Context, input EvalInput) EvalResult
}

// defaultAllowedModels is the shipped allow-list of supported model
// identifiers. It can be overridden through configuration.
var defaultAllowedModels = []string{
	"gpt-3.5-turbo",
	"gpt-4o",
	"gpt-4o-mini",
	"gpt-4.1",
	"gpt-4.1-mini",
}

// ModelRegistry validates judge model identifiers against an allow-list and
// supplies the default used when a judge has none configured.
type ModelRegistry struct {
	allowed      map[string]struct{}
	defaultModel string
}

// NewModelRegistry builds a registry. An empty allowed slice keeps the shipped
// defaults; an empty defaultModel falls back to gpt-4o-mini.
func NewModelRegistry(allowed []string, defaultModel string) *ModelRegistry {
	if len(allowed) == 0 {
		allowed = defaultAllowedModels
	}
	if defaultModel == "" {
		defaultModel = "gpt-4o-mini"
	}

	set := make(map[string]struct{}, len(allowed)+1)
	for _, model := range allowed {
		set[model] = struct{}{}
	}
	// The default must always be usable even when the override list omits it.
	set[defaultModel] = struct{}{}

	return &ModelRegistry{allowed: set, defaultModel: defaultModel}
}

// Supported reports whether the model identifier is on the allow-list.
func (r *ModelRegistry) Supported(model string) bool {
	_, ok := r.allowed[model]
	return ok
}

// Default returns the model used when a judge has no model configured.
func (r *ModelRegistry) Default() string {
	return r.defaultModel
}

// List returns the allow-listed identifiers in sorted order.
func (r *ModelRegistry) List() []string {
	models := make([]string, 0, len(r.allowed))
	for model := range r.allowed {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}
