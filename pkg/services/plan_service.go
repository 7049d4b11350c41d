package services

import (
	"context"

	"github.com/TFMV/quill/pkg/models"
	"github.com/TFMV/quill/pkg/plan"
)

// planService implements PlanService around a plan source and renderer.
type planService struct {
	source   plan.Source
	renderer *plan.Renderer
	logger   Logger
	metrics  MetricsCollector
}

// NewPlanService creates a new plan service.
func NewPlanService(
	source plan.Source,
	renderer *plan.Renderer,
	logger Logger,
	metrics MetricsCollector,
) PlanService {
	return &planService{
		source:   source,
		renderer: renderer,
		logger:   logger,
		metrics:  metrics,
	}
}

// Explain obtains the execution plan for a query.
func (s *planService) Explain(ctx context.Context, query string) (*models.PlanNode, error) {
	timer := s.metrics.StartTimer("plan_explain")
	defer timer.Stop()

	s.logger.Debug("Explaining query", "query", query)

	root, err := s.source.Explain(ctx, query)
	if err != nil {
		s.metrics.IncrementCounter("plan_errors", "operation", "explain")
		s.logger.Error("Failed to explain query", "error", err)
		return nil, err
	}

	s.logger.Info("Explained query", "root", root.Name)
	return root, nil
}

// Render flattens and draws a plan tree.
func (s *planService) Render(ctx context.Context, root *models.PlanNode, format plan.Format) ([]byte, error) {
	timer := s.metrics.StartTimer("plan_render")
	defer timer.Stop()

	graph := plan.Flatten(root)
	s.metrics.RecordGauge("plan_node_count", float64(len(graph.Nodes)))

	out, err := s.renderer.Render(ctx, graph, format)
	if err != nil {
		s.metrics.IncrementCounter("plan_errors", "operation", "render")
		s.logger.Error("Failed to render plan", "error", err)
		return nil, err
	}

	s.logger.Info("Rendered plan", "nodes", len(graph.Nodes), "edges", len(graph.Edges), "format", string(format))
	return out, nil
}

// RelativeCost returns plan i's share of total cost as a percentage.
func (s *planService) RelativeCost(plans []*models.PlanNode, i int) float64 {
	return plan.RelativeCost(plans, i)
}
