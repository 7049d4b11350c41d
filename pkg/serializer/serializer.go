// Package serializer adapts whole notebook documents between the host editor
// model and the app-side serialization schema.
package serializer

import (
	"context"
	"encoding/json"

	"github.com/TFMV/quill/pkg/models"
)

// NotebookSerializer is the underlying serialization capability. It owns the
// app-side wire format; the adapter owns the shape translation on top of it.
type NotebookSerializer interface {
	// SerializeNotebook encodes an app-side document to bytes.
	SerializeNotebook(ctx context.Context, doc models.Document) ([]byte, error)

	// DeserializeNotebook decodes bytes into an app-side document.
	DeserializeNotebook(ctx context.Context, data []byte) (models.Document, error)
}

// JSONSerializer is a NotebookSerializer using the nbformat-style JSON
// encoding, so documents can round-trip without a host editor present.
type JSONSerializer struct{}

// NewJSONSerializer creates a new JSON notebook serializer.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// SerializeNotebook encodes the document as indented JSON.
func (s *JSONSerializer) SerializeNotebook(_ context.Context, doc models.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// DeserializeNotebook decodes an nbformat-style JSON document.
func (s *JSONSerializer) DeserializeNotebook(_ context.Context, data []byte) (models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}
