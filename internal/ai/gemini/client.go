package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/gridsim/weatherfeed/internal/ai"
	"github.com/gridsim/weatherfeed/pkg/logger"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Client is a Google Gemini client implementing the ai provider interfaces.
type Client struct {
	client *genai.Client
	model  string
	logger *logger.Logger
}

// NewClient creates a new Gemini client. The API key must be non-empty;
// callers decide what absence of a credential means for them.
func NewClient(ctx context.Context, apiKey, model string, log *logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
		logger: log.Named("gemini"),
	}, nil
}

// GenerateStructured requests JSON output constrained by the given schema,
// optionally attaching an inline image.
func (c *Client) GenerateStructured(ctx context.Context, instruction string, image *ai.ImagePart, schema *ai.Schema) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(instruction)}
	if image != nil {
		parts = append(parts, genai.NewPartFromBytes(image.Data, image.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(schema),
		Temperature:      genai.Ptr[float32](0.1),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini structured call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no usable text")
	}

	c.logger.Debug("Structured generation completed",
		logger.String("model", c.model),
		logger.Int("response_length", len(text)))
	return text, nil
}

// GenerateText requests free-form text from a prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini text call failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no usable text")
	}

	c.logger.Debug("Text generation completed",
		logger.String("model", c.model),
		logger.Int("response_length", len(text)))
	return text, nil
}

// toGenaiSchema translates the provider-agnostic schema into the SDK's type.
func toGenaiSchema(s *ai.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Required:    s.Required,
	}

	switch s.Type {
	case "object":
		out.Type = genai.TypeObject
	case "array":
		out.Type = genai.TypeArray
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		out.Type = genai.TypeString
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	if s.Items != nil {
		out.Items = toGenaiSchema(s.Items)
	}

	return out
}
