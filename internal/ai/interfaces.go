package ai

import (
	"context"
)

// Schema describes a structured response shape in a provider-agnostic way.
// Providers translate it into their native schema representation.
type Schema struct {
	Type        string             // "object", "array", "number", "string", "integer", "boolean"
	Description string             // optional hint passed to the model
	Properties  map[string]*Schema // object members
	Items       *Schema            // array element schema
	Required    []string           // required object members
}

// ImagePart is an inline image attached to a generation request.
type ImagePart struct {
	Data     []byte
	MIMEType string
}

// StructuredProvider generates JSON text constrained by an explicit response
// schema, optionally grounded on an attached image.
type StructuredProvider interface {
	GenerateStructured(ctx context.Context, instruction string, image *ImagePart, schema *Schema) (string, error)
}

// TextProvider generates free-form text from a prompt.
type TextProvider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ObjectSchema is a convenience constructor for a required-members object.
func ObjectSchema(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: properties, Required: required}
}

// NumberArraySchema describes an array of numbers with a description hint.
func NumberArraySchema(description string) *Schema {
	return &Schema{
		Type:        "array",
		Description: description,
		Items:       &Schema{Type: "number"},
	}
}
