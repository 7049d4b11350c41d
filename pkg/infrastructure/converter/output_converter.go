// Package converter provides cell output conversion between the host editor
// and app-side notebook models.
package converter

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/TFMV/quill/pkg/models"
)

// MIMETextHTML is the MIME type used when collapsing stream and error
// outputs into a single host rendering.
const MIMETextHTML = "text/html"

// OutputConverter converts cell outputs between the host and app models.
type OutputConverter interface {
	// ToAppOutput converts one host output into app-side outputs using the
	// cell's execution counter.
	ToAppOutput(out models.CellOutput, executionCount int) []models.Output

	// ToHostOutput converts one app-side output into a host output.
	ToHostOutput(out models.Output) models.CellOutput
}

type outputConverter struct {
	logger zerolog.Logger
}

// New creates a new output converter.
func New(logger zerolog.Logger) OutputConverter {
	return &outputConverter{logger: logger}
}

// ToAppOutput converts one host output into a single-element sequence holding
// one execute_result: one data entry per item, keyed by MIME type, with the
// item bytes decoded as UTF-8 text.
func (c *outputConverter) ToAppOutput(out models.CellOutput, executionCount int) []models.Output {
	data := make(models.MimeBundle, 0, len(out.Items))
	for _, item := range out.Items {
		data = append(data, models.MimeData{MIME: item.MIME, Text: item.Text()})
	}

	metadata := out.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	return []models.Output{
		models.ExecuteResult{
			ID:             out.ID,
			Data:           data,
			Metadata:       metadata,
			ExecutionCount: executionCount,
		},
	}
}

// ToHostOutput converts one app-side output into a host output. The switch is
// exhaustive over the closed Output union.
func (c *outputConverter) ToHostOutput(out models.Output) models.CellOutput {
	switch v := out.(type) {
	case models.ExecuteResult:
		items := make([]models.CellOutputItem, 0, len(v.Data))
		for _, d := range v.Data {
			items = append(items, models.NewTextOutputItem(d.MIME, d.Text))
		}
		return models.CellOutput{
			ID:       v.ID,
			Items:    items,
			Metadata: v.Metadata,
		}
	case models.Stream:
		// Stream lines carry their own trailing newlines, so plain
		// concatenation preserves the original text.
		text := strings.Join(v.Text, "")
		return models.CellOutput{
			ID:    v.ID,
			Items: []models.CellOutputItem{models.NewTextOutputItem(MIMETextHTML, text)},
		}
	case models.ErrorOutput:
		return models.CellOutput{
			ID:    v.ID,
			Items: []models.CellOutputItem{models.NewTextOutputItem(MIMETextHTML, renderError(v))},
		}
	default:
		// The Output union is sealed; a new variant reaching this point is a
		// programming error, not a runtime failure.
		panic(fmt.Sprintf("converter: unknown output variant %T", out))
	}
}

// renderError renders an error output as "<ename>: <evalue>", followed by the
// traceback lines in original order when present.
func renderError(v models.ErrorOutput) string {
	header := fmt.Sprintf("%s: %s", v.EName, v.EValue)
	if len(v.Traceback) == 0 {
		return header
	}
	return header + "\n" + strings.Join(v.Traceback, "\n")
}
