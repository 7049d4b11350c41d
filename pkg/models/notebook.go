// Package models defines the notebook and execution plan data models.
package models

// CellKind identifies the kind of a host notebook cell.
type CellKind int

// Host cell kinds, matching the editor framework's numbering.
const (
	KindMarkup CellKind = 1
	KindCode   CellKind = 2
)

// CellOutputItem is one rendering of a cell result in one MIME type.
type CellOutputItem struct {
	MIME string `json:"mime"`
	Data []byte `json:"data"`
}

// NewTextOutputItem creates an output item from UTF-8 text.
func NewTextOutputItem(mime, text string) CellOutputItem {
	return CellOutputItem{MIME: mime, Data: []byte(text)}
}

// Text returns the item's bytes decoded as UTF-8 text.
func (i CellOutputItem) Text() string {
	return string(i.Data)
}

// CellOutput is a host-side cell output: an ordered sequence of MIME-typed
// renderings plus output-level metadata.
type CellOutput struct {
	ID       string                 `json:"id"`
	Items    []CellOutputItem       `json:"items"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// HostCell is one cell of a host-side notebook document.
type HostCell struct {
	Kind           CellKind     `json:"kind"`
	Source         string       `json:"source"`
	Language       string       `json:"language"`
	Outputs        []CellOutput `json:"outputs,omitempty"`
	ExecutionOrder int          `json:"execution_order,omitempty"`
}

// HostDocument is the editor framework's native notebook representation.
type HostDocument struct {
	Cells    []HostCell             `json:"cells"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
