package services

import (
	"context"

	"github.com/TFMV/quill/pkg/infrastructure/converter"
	"github.com/TFMV/quill/pkg/models"
	"github.com/TFMV/quill/pkg/serializer"
)

// notebookService implements NotebookService around a document adapter.
type notebookService struct {
	adapter   *serializer.Adapter
	converter converter.OutputConverter
	logger    Logger
	metrics   MetricsCollector
}

// NewNotebookService creates a new notebook service.
func NewNotebookService(
	adapter *serializer.Adapter,
	logger Logger,
	metrics MetricsCollector,
) NotebookService {
	return &notebookService{
		adapter:   adapter,
		converter: adapter.Converter(),
		logger:    logger,
		metrics:   metrics,
	}
}

// ConvertToApp converts a single host output into app-side outputs.
func (s *notebookService) ConvertToApp(out models.CellOutput, executionCount int) []models.Output {
	s.metrics.IncrementCounter("output_conversions", "direction", "to_app")
	return s.converter.ToAppOutput(out, executionCount)
}

// ConvertToHost converts a single app-side output into a host output.
func (s *notebookService) ConvertToHost(out models.Output) models.CellOutput {
	s.metrics.IncrementCounter("output_conversions", "direction", "to_host")
	return s.converter.ToHostOutput(out)
}

// Serialize converts and encodes a host document.
func (s *notebookService) Serialize(ctx context.Context, doc models.HostDocument) ([]byte, error) {
	timer := s.metrics.StartTimer("notebook_serialize")
	defer timer.Stop()

	s.logger.Debug("Serializing notebook", "cells", len(doc.Cells))

	data, err := s.adapter.Serialize(ctx, doc)
	if err != nil {
		s.metrics.IncrementCounter("notebook_errors", "operation", "serialize")
		s.logger.Error("Failed to serialize notebook", "error", err)
		// The adapter contract propagates serializer errors unchanged.
		return nil, err
	}

	s.metrics.RecordGauge("notebook_bytes", float64(len(data)))
	s.logger.Info("Serialized notebook", "cells", len(doc.Cells), "bytes", len(data))

	return data, nil
}

// Deserialize decodes and converts bytes into a host document.
func (s *notebookService) Deserialize(ctx context.Context, data []byte) (models.HostDocument, error) {
	timer := s.metrics.StartTimer("notebook_deserialize")
	defer timer.Stop()

	s.logger.Debug("Deserializing notebook", "bytes", len(data))

	doc, err := s.adapter.Deserialize(ctx, data)
	if err != nil {
		s.metrics.IncrementCounter("notebook_errors", "operation", "deserialize")
		s.logger.Error("Failed to deserialize notebook", "error", err)
		return models.HostDocument{}, err
	}

	s.metrics.RecordGauge("notebook_cell_count", float64(len(doc.Cells)))
	s.logger.Info("Deserialized notebook", "cells", len(doc.Cells))

	return doc, nil
}
