package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/quill/pkg/models"
	"github.com/TFMV/quill/pkg/plan"
)

// mockPlanSource implements plan.Source
type mockPlanSource struct {
	explainFunc func(ctx context.Context, query string) (*models.PlanNode, error)
	calls       int
}

func (m *mockPlanSource) Explain(ctx context.Context, query string) (*models.PlanNode, error) {
	m.calls++
	return m.explainFunc(ctx, query)
}

func samplePlan() *models.PlanNode {
	return &models.PlanNode{
		Name: "PROJECTION",
		Cost: 1,
		Children: []*models.PlanNode{
			{Name: "SEQ_SCAN", Cost: 15000},
		},
		Edges: []models.PlanEdge{{RowCount: 15000}},
	}
}

func TestPlanService_Explain(t *testing.T) {
	source := &mockPlanSource{
		explainFunc: func(ctx context.Context, query string) (*models.PlanNode, error) {
			return samplePlan(), nil
		},
	}
	logger := &mockLogger{}
	metrics := newMockMetrics()
	svc := NewPlanService(source, plan.NewRenderer(zerolog.Nop()), logger, metrics)

	root, err := svc.Explain(context.Background(), "SELECT count(*) FROM orders")
	require.NoError(t, err)
	assert.Equal(t, "PROJECTION", root.Name)
	assert.Equal(t, 1, source.calls)
	assert.Contains(t, metrics.timers, "plan_explain")
}

func TestPlanService_ExplainError(t *testing.T) {
	source := &mockPlanSource{
		explainFunc: func(ctx context.Context, query string) (*models.PlanNode, error) {
			return nil, assert.AnError
		},
	}
	logger := &mockLogger{}
	metrics := newMockMetrics()
	svc := NewPlanService(source, plan.NewRenderer(zerolog.Nop()), logger, metrics)

	_, err := svc.Explain(context.Background(), "SELECT 1")
	assert.Error(t, err)
	assert.Equal(t, 1, metrics.counters["plan_errors"])
	assert.Equal(t, 1, logger.errorCalls)
}

func TestPlanService_Render(t *testing.T) {
	logger := &mockLogger{}
	metrics := newMockMetrics()
	svc := NewPlanService(nil, plan.NewRenderer(zerolog.Nop()), logger, metrics)

	out, err := svc.Render(context.Background(), samplePlan(), plan.FormatDOT)
	require.NoError(t, err)
	assert.Contains(t, string(out), "PROJECTION")
	assert.Contains(t, string(out), "SEQ_SCAN")
	assert.Equal(t, 2.0, metrics.gauges["plan_node_count"])
	assert.Contains(t, metrics.timers, "plan_render")
}

func TestPlanService_RelativeCost(t *testing.T) {
	svc := NewPlanService(nil, nil, &mockLogger{}, newMockMetrics())

	plans := []*models.PlanNode{
		{Cost: 1, SubtreeCost: 3},
		{Cost: 2, SubtreeCost: 10},
	}
	assert.InDelta(t, 25.0, svc.RelativeCost(plans, 0), 1e-9)
	assert.InDelta(t, 75.0, svc.RelativeCost(plans, 1), 1e-9)
}
