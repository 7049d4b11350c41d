package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/quill/pkg/models"
	"github.com/TFMV/quill/pkg/serializer"
)

// mockLogger implements Logger
type mockLogger struct {
	debugCalls int
	infoCalls  int
	warnCalls  int
	errorCalls int
}

func (m *mockLogger) Debug(msg string, keysAndValues ...interface{}) { m.debugCalls++ }
func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  { m.infoCalls++ }
func (m *mockLogger) Warn(msg string, keysAndValues ...interface{})  { m.warnCalls++ }
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) { m.errorCalls++ }

// mockMetrics implements MetricsCollector
type mockMetrics struct {
	counters map[string]int
	gauges   map[string]float64
	timers   []string
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		counters: make(map[string]int),
		gauges:   make(map[string]float64),
	}
}

func (m *mockMetrics) IncrementCounter(name string, labels ...string) { m.counters[name]++ }
func (m *mockMetrics) RecordHistogram(name string, value float64, labels ...string) {
}
func (m *mockMetrics) RecordGauge(name string, value float64, labels ...string) {
	m.gauges[name] = value
}
func (m *mockMetrics) StartTimer(name string) Timer {
	m.timers = append(m.timers, name)
	return &mockTimer{}
}

type mockTimer struct{}

func (m *mockTimer) Stop() time.Duration { return time.Millisecond }

// failingSerializer implements serializer.NotebookSerializer
type failingSerializer struct {
	err error
}

func (f *failingSerializer) SerializeNotebook(ctx context.Context, doc models.Document) ([]byte, error) {
	return nil, f.err
}

func (f *failingSerializer) DeserializeNotebook(ctx context.Context, data []byte) (models.Document, error) {
	return models.Document{}, f.err
}

func sampleHostDocument() models.HostDocument {
	return models.HostDocument{
		Cells: []models.HostCell{
			{
				Kind:     models.KindCode,
				Source:   "SELECT 1",
				Language: "sql",
				Outputs: []models.CellOutput{
					{ID: "1", Items: []models.CellOutputItem{models.NewTextOutputItem("text/plain", "1")}},
				},
			},
		},
	}
}

func TestNotebookService_SerializeDeserialize(t *testing.T) {
	logger := &mockLogger{}
	metrics := newMockMetrics()
	adapter := serializer.NewAdapter(serializer.NewJSONSerializer(), zerolog.Nop())
	svc := NewNotebookService(adapter, logger, metrics)

	data, err := svc.Serialize(context.Background(), sampleHostDocument())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, metrics.timers, "notebook_serialize")
	assert.Equal(t, float64(len(data)), metrics.gauges["notebook_bytes"])

	doc, err := svc.Deserialize(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, doc.Cells, 1)
	assert.Equal(t, "SELECT 1", doc.Cells[0].Source)
	assert.Contains(t, metrics.timers, "notebook_deserialize")
	assert.Equal(t, 1.0, metrics.gauges["notebook_cell_count"])
	assert.Zero(t, logger.errorCalls)
}

func TestNotebookService_ConvertSingleOutputs(t *testing.T) {
	metrics := newMockMetrics()
	adapter := serializer.NewAdapter(serializer.NewJSONSerializer(), zerolog.Nop())
	svc := NewNotebookService(adapter, &mockLogger{}, metrics)

	outputs := svc.ConvertToApp(models.CellOutput{
		ID:    "1",
		Items: []models.CellOutputItem{models.NewTextOutputItem("text/plain", "2")},
	}, 1)
	require.Len(t, outputs, 1)
	result, ok := outputs[0].(models.ExecuteResult)
	require.True(t, ok)
	assert.Equal(t, 1, result.ExecutionCount)

	host := svc.ConvertToHost(result)
	assert.Equal(t, "1", host.ID)
	require.Len(t, host.Items, 1)
	assert.Equal(t, "2", host.Items[0].Text())

	assert.Equal(t, 2, metrics.counters["output_conversions"])
}

func TestNotebookService_SerializeError(t *testing.T) {
	logger := &mockLogger{}
	metrics := newMockMetrics()
	sentinel := errors.New("disk full")
	adapter := serializer.NewAdapter(&failingSerializer{err: sentinel}, zerolog.Nop())
	svc := NewNotebookService(adapter, logger, metrics)

	_, err := svc.Serialize(context.Background(), models.HostDocument{})
	assert.Same(t, sentinel, err, "serializer errors pass through unchanged")
	assert.Equal(t, 1, metrics.counters["notebook_errors"])
	assert.Equal(t, 1, logger.errorCalls)
}

func TestNotebookService_DeserializeError(t *testing.T) {
	logger := &mockLogger{}
	metrics := newMockMetrics()
	sentinel := errors.New("corrupt notebook")
	adapter := serializer.NewAdapter(&failingSerializer{err: sentinel}, zerolog.Nop())
	svc := NewNotebookService(adapter, logger, metrics)

	_, err := svc.Deserialize(context.Background(), []byte("garbage"))
	assert.Same(t, sentinel, err)
	assert.Equal(t, 1, metrics.counters["notebook_errors"])
}
