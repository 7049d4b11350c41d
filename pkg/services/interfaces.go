// Package services contains business logic implementations.
package services

import (
	"context"
	"time"

	"github.com/TFMV/quill/pkg/models"
	"github.com/TFMV/quill/pkg/plan"
)

// NotebookService defines document conversion operations.
type NotebookService interface {
	// Serialize converts a host document and encodes it through the
	// underlying notebook serializer.
	Serialize(ctx context.Context, doc models.HostDocument) ([]byte, error)

	// Deserialize decodes bytes and converts the result to a host document.
	Deserialize(ctx context.Context, data []byte) (models.HostDocument, error)

	// ConvertToApp converts a single host output into app-side outputs.
	ConvertToApp(out models.CellOutput, executionCount int) []models.Output

	// ConvertToHost converts a single app-side output into a host output.
	ConvertToHost(out models.Output) models.CellOutput
}

// PlanService defines execution plan operations.
type PlanService interface {
	// Explain obtains the execution plan for a query.
	Explain(ctx context.Context, query string) (*models.PlanNode, error)

	// Render flattens a plan tree and draws it in the given format.
	Render(ctx context.Context, root *models.PlanNode, format plan.Format) ([]byte, error)

	// RelativeCost returns plan i's share of total cost across the displayed
	// set, as a percentage.
	RelativeCost(plans []*models.PlanNode, i int) float64
}

// Logger defines logging interface.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// MetricsCollector defines metrics collection interface.
type MetricsCollector interface {
	IncrementCounter(name string, labels ...string)
	RecordHistogram(name string, value float64, labels ...string)
	RecordGauge(name string, value float64, labels ...string)
	StartTimer(name string) Timer
}

// Timer represents a timing measurement.
type Timer interface {
	Stop() time.Duration
}
