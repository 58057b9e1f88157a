package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/gridsim/weatherfeed/internal/ai"
	"github.com/gridsim/weatherfeed/internal/simulation"
	"github.com/gridsim/weatherfeed/pkg/logger"
)

// Config holds the narrative generator settings.
type Config struct {
	TemplatePath      string
	ErrorTemplatePath string
}

// Service turns a dispatch telemetry summary into a human-readable HTML
// fragment through a generative model. It never propagates a failure to its
// caller: any error is rendered as an error fragment instead.
type Service struct {
	provider ai.TextProvider // nil when no credential is configured
	engine   *Engine
	config   Config
	logger   *logger.Logger
}

// fragmentData is the payload handed to the fragment templates.
type fragmentData struct {
	Body        string
	Error       string
	GeneratedAt string
	Summary     *simulation.Summary
}

// NewService creates a narrative service. A nil provider is allowed and
// yields error fragments explaining the missing credential.
func NewService(provider ai.TextProvider, engine *Engine, config Config, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		engine:   engine,
		config:   config,
		logger:   log.Named("narrative"),
	}
}

// RenderReport produces the HTML fragment for a dispatch run. It is total:
// on any failure the returned fragment describes the problem instead of the
// run, and rendering errors degrade to a minimal hardcoded fragment.
func (s *Service) RenderReport(ctx context.Context, summary *simulation.Summary) string {
	body, err := s.generate(ctx, summary)
	if err != nil {
		s.logger.Warn("Narrative generation failed, rendering error fragment", logger.Error(err))
		return s.renderError(summary, err)
	}

	fragment, err := s.engine.Render(s.config.TemplatePath, fragmentData{
		Body:        body,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary:     summary,
	})
	if err != nil {
		s.logger.Error("Narrative template render failed", logger.Error(err))
		return s.renderError(summary, err)
	}

	return fragment
}

// generate runs the model call with the JSON-serialized summary.
func (s *Service) generate(ctx context.Context, summary *simulation.Summary) (string, error) {
	if s.provider == nil {
		return "", fmt.Errorf("narrative provider is not configured")
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("failed to serialize telemetry summary: %w", err)
	}

	prompt := fmt.Sprintf(
		"You are the operations reporter for a small microgrid. Write a short plain-text "+
			"summary (two or three sentences) of the following dispatch day for a non-technical "+
			"operator. Mention the weather conditions and whether the data was live or "+
			"synthesized. Telemetry summary JSON: %s", payload)

	return s.provider.GenerateText(ctx, prompt)
}

// renderError produces the error fragment, degrading to a hardcoded one when
// even that template fails.
func (s *Service) renderError(summary *simulation.Summary, cause error) string {
	fragment, err := s.engine.Render(s.config.ErrorTemplatePath, fragmentData{
		Error:       cause.Error(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Summary:     summary,
	})
	if err != nil {
		s.logger.Error("Error fragment render failed", logger.Error(err))
		return fmt.Sprintf(`<div class="narrative narrative-error"><p>Report unavailable: %s</p></div>`,
			template.HTMLEscapeString(cause.Error()))
	}
	return fragment
}
