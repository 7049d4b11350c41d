// Package plan flattens query execution plan trees into a generic diagram
// shape and renders them through a graph-drawing library.
package plan

import (
	"fmt"
	"math"
	"strconv"

	"github.com/TFMV/quill/pkg/models"
)

// MaxPropertyValueLen caps the length of a property value shown in a node's
// metrics list.
const MaxPropertyValueLen = 75

// Edge weight formula bounds.
const (
	minEdgeWeight   = 0.5
	maxEdgeWeight   = 6.0
	edgeWeightScale = 0.75
)

// Flatten converts a plan tree into the generic node/edge shape consumed by
// the diagram renderer. Nodes are numbered in preorder; each parent/child
// link becomes one weighted edge.
func Flatten(root *models.PlanNode) models.Graph {
	if root == nil {
		return models.Graph{}
	}

	g := models.Graph{}
	next := 0
	var walk func(n *models.PlanNode) string
	walk = func(n *models.PlanNode) string {
		id := fmt.Sprintf("node%d", next)
		next++
		g.Nodes = append(g.Nodes, models.GraphNode{
			ID:      id,
			Label:   n.Name,
			Icon:    n.Type,
			Metrics: nodeMetrics(n),
		})
		for i, child := range n.Children {
			rowCount := 0.0
			if i < len(n.Edges) {
				rowCount = n.Edges[i].RowCount
			}
			childID := walk(child)
			g.Edges = append(g.Edges, models.GraphEdge{
				From:   childID,
				To:     id,
				Weight: EdgeWeight(rowCount),
				Label:  edgeLabel(rowCount),
			})
		}
		return id
	}
	walk(root)
	return g
}

// EdgeWeight maps a row count onto a pen width, clamped to [0.5, 6].
func EdgeWeight(rowCount float64) float64 {
	if rowCount <= 0 {
		return minEdgeWeight
	}
	w := minEdgeWeight + edgeWeightScale*math.Log10(rowCount)
	if w < minEdgeWeight {
		return minEdgeWeight
	}
	if w > maxEdgeWeight {
		return maxEdgeWeight
	}
	return w
}

// RelativeCost returns plan i's share of the total (subtree cost + cost)
// across all displayed plans, as a percentage. A zero total yields 0.
func RelativeCost(plans []*models.PlanNode, i int) float64 {
	if i < 0 || i >= len(plans) {
		return 0
	}
	total := 0.0
	for _, p := range plans {
		total += p.TotalCost()
	}
	if total == 0 {
		return 0
	}
	return plans[i].TotalCost() / total * 100
}

// nodeMetrics renders one metrics line per property, truncating values to
// MaxPropertyValueLen characters.
func nodeMetrics(n *models.PlanNode) []string {
	if len(n.Properties) == 0 {
		return nil
	}
	metrics := make([]string, 0, len(n.Properties))
	for _, p := range n.Properties {
		metrics = append(metrics, fmt.Sprintf("%s: %s", p.Name, truncateValue(p.Value)))
	}
	return metrics
}

// truncateValue truncates a property value to MaxPropertyValueLen characters.
func truncateValue(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxPropertyValueLen {
		return s
	}
	return string(runes[:MaxPropertyValueLen])
}

// edgeLabel renders the row count carried along an edge.
func edgeLabel(rowCount float64) string {
	if rowCount <= 0 {
		return ""
	}
	return strconv.FormatFloat(rowCount, 'f', -1, 64)
}
