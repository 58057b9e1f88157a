package narrative

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"sync"

	"github.com/gridsim/weatherfeed/pkg/logger"
)

// Engine handles fragment template loading, caching, and rendering.
type Engine struct {
	templateCache map[string]*template.Template
	cacheMutex    sync.RWMutex
	logger        *logger.Logger
}

// NewEngine creates a new template engine.
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		templateCache: make(map[string]*template.Template),
		logger:        log.Named("template-engine"),
	}
}

// Render executes the template at the given path with the provided data.
func (e *Engine) Render(templatePath string, data any) (string, error) {
	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to get template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	rendered := buf.String()
	e.logger.Debug("Template rendered",
		logger.String("template_path", templatePath),
		logger.Int("rendered_length", len(rendered)))
	return rendered, nil
}

// getTemplate loads a template from cache or disk.
func (e *Engine) getTemplate(templatePath string) (*template.Template, error) {
	e.cacheMutex.RLock()
	tmpl, ok := e.templateCache[templatePath]
	e.cacheMutex.RUnlock()
	if ok {
		return tmpl, nil
	}

	content, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", templatePath, err)
	}

	tmpl, err = template.New(templatePath).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templatePath, err)
	}

	e.cacheMutex.Lock()
	e.templateCache[templatePath] = tmpl
	e.cacheMutex.Unlock()

	e.logger.Debug("Template loaded and cached",
		logger.String("template_path", templatePath))
	return tmpl, nil
}

// ClearCache drops all cached templates, forcing a reload from disk.
func (e *Engine) ClearCache() {
	e.cacheMutex.Lock()
	defer e.cacheMutex.Unlock()
	e.templateCache = make(map[string]*template.Template)
}
