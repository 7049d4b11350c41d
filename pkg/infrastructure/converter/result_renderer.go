package converter

import (
	"fmt"
	"html"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/uuid"

	"github.com/TFMV/quill/pkg/models"
)

// MIME types emitted by the result renderer.
const (
	MIMETextPlain = "text/plain"
)

// RecordToOutput renders a query result record batch as a single
// execute_result carrying text/plain and text/html renderings of the rows.
func RecordToOutput(rec arrow.Record, executionCount int) models.ExecuteResult {
	cols := make([]string, rec.NumCols())
	for i, f := range rec.Schema().Fields() {
		cols[i] = f.Name
	}

	rows := make([][]string, rec.NumRows())
	for r := int64(0); r < rec.NumRows(); r++ {
		row := make([]string, rec.NumCols())
		for c := int64(0); c < rec.NumCols(); c++ {
			arr := rec.Column(int(c))
			if arr.IsNull(int(r)) {
				row[c] = "NULL"
				continue
			}
			row[c] = arr.ValueStr(int(r))
		}
		rows[r] = row
	}

	return models.ExecuteResult{
		ID: uuid.NewString(),
		Data: models.MimeBundle{
			{MIME: MIMETextPlain, Text: renderPlainTable(cols, rows)},
			{MIME: MIMETextHTML, Text: renderHTMLTable(cols, rows)},
		},
		Metadata:       map[string]interface{}{},
		ExecutionCount: executionCount,
	}
}

// renderPlainTable renders rows as a column-aligned text table.
func renderPlainTable(cols []string, rows [][]string) string {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, v := range row {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var b strings.Builder
	writeRow := func(vals []string) {
		for i, v := range vals {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", widths[i], v)
		}
		b.WriteByte('\n')
	}

	writeRow(cols)
	for i, w := range widths {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(strings.Repeat("-", w))
	}
	b.WriteByte('\n')
	for _, row := range rows {
		writeRow(row)
	}
	return b.String()
}

// renderHTMLTable renders rows as an HTML table with escaped cell values.
func renderHTMLTable(cols []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("<table><thead><tr>")
	for _, c := range cols {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(c))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, v := range row {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(v))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}
