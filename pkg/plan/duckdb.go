package plan

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/rs/zerolog"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/TFMV/quill/pkg/errors"
	"github.com/TFMV/quill/pkg/models"
)

// Source produces execution plan trees for SQL queries.
type Source interface {
	// Explain returns the execution plan for a query.
	Explain(ctx context.Context, query string) (*models.PlanNode, error)
}

// DuckDBSource obtains plans by running EXPLAIN (FORMAT json) against a
// DuckDB database.
type DuckDBSource struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewDuckDBSource opens a DuckDB database for plan generation. Use ":memory:"
// for an in-memory database.
func NewDuckDBSource(dsn string, logger zerolog.Logger) (*DuckDBSource, error) {
	if dsn == ":memory:" {
		dsn = ""
	}
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConnectionFailed, "failed to open database")
	}
	return &DuckDBSource{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *DuckDBSource) Close() error {
	return s.db.Close()
}

// Explain runs EXPLAIN (FORMAT json) for the query and parses the plan tree.
func (s *DuckDBSource) Explain(ctx context.Context, query string) (*models.PlanNode, error) {
	s.logger.Debug().Str("query", query).Msg("Explaining query")

	rows, err := s.db.QueryContext(ctx, "EXPLAIN (FORMAT json) "+query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeQueryFailed, "explain failed")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeQueryFailed, "explain failed")
		}
		return nil, errors.ErrEmptyPlan
	}

	// DuckDB returns one (explain_key, explain_value) row; the value holds
	// the JSON plan.
	var key, value string
	if err := rows.Scan(&key, &value); err != nil {
		return nil, errors.Wrap(err, errors.CodeQueryFailed, "failed to read explain output")
	}

	return ParsePlanJSON([]byte(value))
}

// duckdbPlanNode mirrors DuckDB's JSON plan operator shape.
type duckdbPlanNode struct {
	Name      string                     `json:"name"`
	ExtraInfo map[string]json.RawMessage `json:"extra_info"`
	Children  []duckdbPlanNode           `json:"children"`
}

// ParsePlanJSON parses DuckDB's JSON EXPLAIN output into a plan tree.
// DuckDB emits either a single operator object or a single-element array.
func ParsePlanJSON(data []byte) (*models.PlanNode, error) {
	var nodes []duckdbPlanNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		var single duckdbPlanNode
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, errors.Wrap(err, errors.CodePlanParseFailed, "unrecognized plan JSON")
		}
		nodes = []duckdbPlanNode{single}
	}
	if len(nodes) == 0 {
		return nil, errors.ErrEmptyPlan
	}
	return convertNode(&nodes[0]), nil
}

// convertNode maps one DuckDB operator onto the plan model. The operator's
// estimated cardinality stands in for cost; subtree cost is the sum over
// descendants.
func convertNode(n *duckdbPlanNode) *models.PlanNode {
	node := &models.PlanNode{
		Name:       n.Name,
		Type:       n.Name,
		Properties: extraInfoProperties(n.ExtraInfo),
	}
	node.Cost = cardinality(n.ExtraInfo)

	for i := range n.Children {
		child := convertNode(&n.Children[i])
		node.Children = append(node.Children, child)
		node.Edges = append(node.Edges, models.PlanEdge{RowCount: child.Cost})
		node.SubtreeCost += child.TotalCost()
	}
	return node
}

// extraInfoProperties renders DuckDB's extra_info map as ordered properties.
func extraInfoProperties(info map[string]json.RawMessage) []models.PlanProperty {
	if len(info) == 0 {
		return nil
	}
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make([]models.PlanProperty, 0, len(keys))
	for _, k := range keys {
		props = append(props, models.PlanProperty{Name: k, Value: rawValueString(info[k])})
	}
	return props
}

// cardinality extracts the estimated cardinality from extra_info, when present.
func cardinality(info map[string]json.RawMessage) float64 {
	raw, ok := info["Estimated Cardinality"]
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(rawValueString(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

// rawValueString renders a JSON scalar without quotes; non-scalars keep
// their JSON encoding.
func rawValueString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return fmt.Sprintf("%t", b)
	}
	return string(raw)
}
