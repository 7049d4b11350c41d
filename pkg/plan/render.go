package plan

import (
	"bytes"
	"context"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/rs/zerolog"

	"github.com/TFMV/quill/pkg/errors"
	"github.com/TFMV/quill/pkg/models"
)

// Format selects the renderer's output encoding.
type Format string

// Supported output formats.
const (
	FormatDOT Format = Format(graphviz.XDOT)
	FormatSVG Format = Format(graphviz.SVG)
	FormatPNG Format = Format(graphviz.PNG)
)

// ParseFormat maps a user-supplied format name onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "dot", "xdot":
		return FormatDOT, nil
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", errors.New(errors.CodeRenderFailed, "unsupported format: "+name)
	}
}

// Renderer draws flattened plan graphs via graphviz.
type Renderer struct {
	logger zerolog.Logger
}

// NewRenderer creates a new plan renderer.
func NewRenderer(logger zerolog.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render draws the graph in the given format and returns the encoded bytes.
func (r *Renderer) Render(ctx context.Context, g models.Graph, format Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRenderFailed, "failed to initialize graphviz")
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRenderFailed, "failed to create graph")
	}
	defer func() {
		if cerr := graph.Close(); cerr != nil {
			r.logger.Warn().Err(cerr).Msg("Failed to close graph")
		}
	}()

	graph.SetRankDir(cgraph.BTRank)

	for _, n := range g.Nodes {
		node, err := graph.CreateNodeByName(n.ID)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeRenderFailed, "failed to create node %s", n.ID)
		}
		node.SetShape(cgraph.BoxShape)
		node.SetLabel(nodeLabel(n))
	}

	for _, e := range g.Edges {
		from, err := graph.NodeByName(e.From)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeRenderFailed, "unknown edge source %s", e.From)
		}
		to, err := graph.NodeByName(e.To)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeRenderFailed, "unknown edge target %s", e.To)
		}
		edge, err := graph.CreateEdgeByName("", from, to)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeRenderFailed, "failed to create edge")
		}
		edge.SetLabel(e.Label)
		edge.SetPenWidth(e.Weight)
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.Format(format), &buf); err != nil {
		return nil, errors.Wrap(err, errors.CodeRenderFailed, "failed to render graph")
	}

	r.logger.Debug().
		Int("nodes", len(g.Nodes)).
		Int("edges", len(g.Edges)).
		Str("format", string(format)).
		Msg("Rendered plan graph")

	return buf.Bytes(), nil
}

// nodeLabel renders a node's label, icon, and metrics as a multi-line label.
func nodeLabel(n models.GraphNode) string {
	lines := make([]string, 0, len(n.Metrics)+2)
	lines = append(lines, n.Label)
	if n.Icon != "" && n.Icon != n.Label {
		lines = append(lines, n.Icon)
	}
	lines = append(lines, n.Metrics...)
	return strings.Join(lines, "\n")
}
