package models

import (
	"encoding/json"
)

// Cell types used by the app-side document schema.
const (
	CellTypeCode     = "code"
	CellTypeMarkdown = "markdown"
)

// Cell is one cell of an app-side notebook document.
type Cell struct {
	CellType       string                 `json:"cell_type"`
	Source         string                 `json:"source"`
	Outputs        []Output               `json:"outputs,omitempty"`
	ExecutionCount *int                   `json:"execution_count,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// cellJSON mirrors Cell for decoding; outputs and source need custom handling.
type cellJSON struct {
	CellType       string                 `json:"cell_type"`
	Source         json.RawMessage        `json:"source"`
	Outputs        []json.RawMessage      `json:"outputs"`
	ExecutionCount *int                   `json:"execution_count"`
	Metadata       map[string]interface{} `json:"metadata"`
}

// UnmarshalJSON decodes a cell, dispatching each output on its output_type
// and accepting source as either a string or a list of lines.
func (c *Cell) UnmarshalJSON(data []byte) error {
	var raw cellJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	source, err := decodeMultilineString(raw.Source)
	if err != nil {
		return err
	}

	var outputs []Output
	for _, ro := range raw.Outputs {
		out, err := UnmarshalOutput(ro)
		if err != nil {
			return err
		}
		outputs = append(outputs, out)
	}

	c.CellType = raw.CellType
	c.Source = source
	c.Outputs = outputs
	c.ExecutionCount = raw.ExecutionCount
	c.Metadata = raw.Metadata
	return nil
}

// Document is the app-side notebook representation.
type Document struct {
	Metadata      map[string]interface{} `json:"metadata"`
	NBFormat      int                    `json:"nbformat"`
	NBFormatMinor int                    `json:"nbformat_minor"`
	Cells         []Cell                 `json:"cells"`
}
