package models

// PlanProperty is one named attribute of a plan node or edge.
type PlanProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PlanEdge links a plan node to one of its children.
type PlanEdge struct {
	RowCount   float64        `json:"row_count"`
	Properties []PlanProperty `json:"properties,omitempty"`
}

// PlanNode is one operator in a query execution plan tree.
type PlanNode struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Cost        float64        `json:"cost"`
	SubtreeCost float64        `json:"subtree_cost"`
	Properties  []PlanProperty `json:"properties,omitempty"`
	Children    []*PlanNode    `json:"children,omitempty"`
	Edges       []PlanEdge     `json:"edges,omitempty"`
}

// TotalCost returns the node's own cost plus its subtree cost, the quantity
// used for relative cost across a displayed set of plans.
func (n *PlanNode) TotalCost() float64 {
	if n == nil {
		return 0
	}
	return n.Cost + n.SubtreeCost
}

// GraphNode is the generic diagram shape handed to the graph renderer.
type GraphNode struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Icon    string   `json:"icon"`
	Metrics []string `json:"metrics,omitempty"`
}

// GraphEdge is a weighted, optionally labeled connection between graph nodes.
type GraphEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
	Label  string  `json:"label,omitempty"`
}

// Graph is a flattened execution plan ready for diagram rendering.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
