package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteResultJSON(t *testing.T) {
	original := ExecuteResult{
		ID: "1",
		Data: MimeBundle{
			{MIME: "text/html", Text: "<b>2</b>"},
			{MIME: "text/plain", Text: "2"},
		},
		Metadata:       map[string]interface{}{},
		ExecutionCount: 1,
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"output_type":"execute_result"`)

	out, err := UnmarshalOutput(data)
	require.NoError(t, err)

	result, ok := out.(ExecuteResult)
	require.True(t, ok)
	assert.Equal(t, original.ID, result.ID)
	assert.Equal(t, original.Data, result.Data, "mime bundle order survives the round trip")
	assert.Equal(t, original.ExecutionCount, result.ExecutionCount)
}

func TestStreamJSON(t *testing.T) {
	original := Stream{ID: "s1", Name: StreamStdout, Text: []string{"a\n", "b\n"}}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"output_type":"stream"`)

	out, err := UnmarshalOutput(data)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestStreamJSONScalarText(t *testing.T) {
	// nbformat allows text as a plain string instead of a list.
	out, err := UnmarshalOutput([]byte(`{"output_type":"stream","name":"stderr","text":"oops"}`))
	require.NoError(t, err)

	stream, ok := out.(Stream)
	require.True(t, ok)
	assert.Equal(t, StreamStderr, stream.Name)
	assert.Equal(t, []string{"oops"}, stream.Text)
}

func TestErrorOutputJSON(t *testing.T) {
	original := ErrorOutput{
		ID:        "e1",
		EName:     "TestException",
		EValue:    "Expected test error",
		Traceback: []string{"frame 1", "frame 2"},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ename":"TestException"`)

	out, err := UnmarshalOutput(data)
	require.NoError(t, err)
	assert.Equal(t, original, out)
}

func TestUnmarshalOutputUnknownType(t *testing.T) {
	_, err := UnmarshalOutput([]byte(`{"output_type":"display_data"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display_data")
}

func TestMimeBundlePreservesKeyOrder(t *testing.T) {
	input := `{"text/plain":"1","application/json":"{}","text/html":"<p>1</p>"}`

	var bundle MimeBundle
	require.NoError(t, json.Unmarshal([]byte(input), &bundle))

	require.Len(t, bundle, 3)
	assert.Equal(t, "text/plain", bundle[0].MIME)
	assert.Equal(t, "application/json", bundle[1].MIME)
	assert.Equal(t, "text/html", bundle[2].MIME)

	// Marshal preserves the same order.
	out, err := json.Marshal(bundle)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestMimeBundleMultilineValues(t *testing.T) {
	var bundle MimeBundle
	err := json.Unmarshal([]byte(`{"text/plain":["line 1\n","line 2"]}`), &bundle)
	require.NoError(t, err)

	text, ok := bundle.Get("text/plain")
	require.True(t, ok)
	assert.Equal(t, "line 1\nline 2", text)
}

func TestCellUnmarshal(t *testing.T) {
	input := `{
		"cell_type": "code",
		"source": ["SELECT 1;\n", "SELECT 2;"],
		"execution_count": 2,
		"metadata": {"language": "sql"},
		"outputs": [
			{"output_type": "execute_result", "id": "o1", "data": {"text/plain": "1"}, "execution_count": 2},
			{"output_type": "stream", "name": "stdout", "text": ["done\n"]}
		]
	}`

	var cell Cell
	require.NoError(t, json.Unmarshal([]byte(input), &cell))

	assert.Equal(t, CellTypeCode, cell.CellType)
	assert.Equal(t, "SELECT 1;\nSELECT 2;", cell.Source)
	require.NotNil(t, cell.ExecutionCount)
	assert.Equal(t, 2, *cell.ExecutionCount)
	assert.Equal(t, "sql", cell.Metadata["language"])

	require.Len(t, cell.Outputs, 2)
	_, isResult := cell.Outputs[0].(ExecuteResult)
	assert.True(t, isResult)
	_, isStream := cell.Outputs[1].(Stream)
	assert.True(t, isStream)
}

func TestDocumentRoundTrip(t *testing.T) {
	count := 1
	doc := Document{
		Metadata:      map[string]interface{}{"language_info": map[string]interface{}{"name": "sql"}},
		NBFormat:      4,
		NBFormatMinor: 2,
		Cells: []Cell{
			{CellType: CellTypeMarkdown, Source: "# Title", Metadata: map[string]interface{}{}},
			{
				CellType:       CellTypeCode,
				Source:         "SELECT 1",
				ExecutionCount: &count,
				Metadata:       map[string]interface{}{"language": "sql"},
				Outputs: []Output{
					ErrorOutput{ID: "e", EName: "E", EValue: "bad"},
				},
			},
		},
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var back Document
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, doc.NBFormat, back.NBFormat)
	assert.Equal(t, doc.NBFormatMinor, back.NBFormatMinor)
	require.Len(t, back.Cells, 2)
	assert.Equal(t, doc.Cells[1].Source, back.Cells[1].Source)
	require.Len(t, back.Cells[1].Outputs, 1)
	assert.Equal(t, doc.Cells[1].Outputs[0], back.Cells[1].Outputs[0])
}
