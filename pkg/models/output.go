package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Output type discriminator values used in the serialized form.
const (
	OutputTypeExecuteResult = "execute_result"
	OutputTypeStream        = "stream"
	OutputTypeError         = "error"
)

// Output is the closed union of app-side cell output variants. The three
// variants are ExecuteResult, Stream, and ErrorOutput; conversion code must
// switch exhaustively over them.
type Output interface {
	// OutputType returns the serialized discriminator for the variant.
	OutputType() string
	// OutputID returns the output's identifier.
	OutputID() string

	isOutput()
}

// MimeData is a single MIME-keyed rendering inside a mime bundle.
type MimeData struct {
	MIME string
	Text string
}

// MimeBundle is an ordered mapping of MIME type to rendered text. Order is
// preserved through JSON round trips, which a plain map would lose.
type MimeBundle []MimeData

// Get returns the text for a MIME type.
func (b MimeBundle) Get(mime string) (string, bool) {
	for _, d := range b {
		if d.MIME == mime {
			return d.Text, true
		}
	}
	return "", false
}

// MarshalJSON encodes the bundle as a JSON object in slice order.
func (b MimeBundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.MIME)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving document key order.
func (b *MimeBundle) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("mime bundle: expected object, got %v", tok)
	}

	out := MimeBundle{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("mime bundle: non-string key %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		// nbformat allows both "text" and ["line\n", "line"] values.
		text, err := decodeMultilineString(raw)
		if err != nil {
			return fmt.Errorf("mime bundle %q: %w", key, err)
		}
		out = append(out, MimeData{MIME: key, Text: text})
	}
	*b = out
	return nil
}

// ExecuteResult is the result of executing a code cell: one rendering per
// MIME type, plus the execution counter at the time it ran.
type ExecuteResult struct {
	ID             string
	Data           MimeBundle
	Metadata       map[string]interface{}
	ExecutionCount int
}

func (ExecuteResult) isOutput() {}

// OutputType returns the execute_result discriminator.
func (ExecuteResult) OutputType() string { return OutputTypeExecuteResult }

// OutputID returns the output's identifier.
func (o ExecuteResult) OutputID() string { return o.ID }

// MarshalJSON encodes the variant with its output_type discriminator.
func (o ExecuteResult) MarshalJSON() ([]byte, error) {
	meta := o.Metadata
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return json.Marshal(struct {
		OutputType     string                 `json:"output_type"`
		ID             string                 `json:"id,omitempty"`
		Data           MimeBundle             `json:"data"`
		Metadata       map[string]interface{} `json:"metadata"`
		ExecutionCount int                    `json:"execution_count"`
	}{
		OutputType:     OutputTypeExecuteResult,
		ID:             o.ID,
		Data:           o.Data,
		Metadata:       meta,
		ExecutionCount: o.ExecutionCount,
	})
}

// StreamName identifies the stream an output was written to.
type StreamName string

// Stream names.
const (
	StreamStdout StreamName = "stdout"
	StreamStderr StreamName = "stderr"
)

// Stream is output written to stdout or stderr during execution.
type Stream struct {
	ID   string
	Name StreamName
	Text []string
}

func (Stream) isOutput() {}

// OutputType returns the stream discriminator.
func (Stream) OutputType() string { return OutputTypeStream }

// OutputID returns the output's identifier.
func (o Stream) OutputID() string { return o.ID }

// MarshalJSON encodes the variant with its output_type discriminator.
func (o Stream) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OutputType string     `json:"output_type"`
		ID         string     `json:"id,omitempty"`
		Name       StreamName `json:"name"`
		Text       []string   `json:"text"`
	}{
		OutputType: OutputTypeStream,
		ID:         o.ID,
		Name:       o.Name,
		Text:       o.Text,
	})
}

// ErrorOutput is an execution error: exception name, value, and an optional
// traceback.
type ErrorOutput struct {
	ID        string
	EName     string
	EValue    string
	Traceback []string
}

func (ErrorOutput) isOutput() {}

// OutputType returns the error discriminator.
func (ErrorOutput) OutputType() string { return OutputTypeError }

// OutputID returns the output's identifier.
func (o ErrorOutput) OutputID() string { return o.ID }

// MarshalJSON encodes the variant with its output_type discriminator.
func (o ErrorOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OutputType string   `json:"output_type"`
		ID         string   `json:"id,omitempty"`
		EName      string   `json:"ename"`
		EValue     string   `json:"evalue"`
		Traceback  []string `json:"traceback,omitempty"`
	}{
		OutputType: OutputTypeError,
		ID:         o.ID,
		EName:      o.EName,
		EValue:     o.EValue,
		Traceback:  o.Traceback,
	})
}

// UnmarshalOutput decodes one serialized output into its variant, dispatching
// on the output_type discriminator.
func UnmarshalOutput(data []byte) (Output, error) {
	var probe struct {
		OutputType string `json:"output_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.OutputType {
	case OutputTypeExecuteResult:
		var raw struct {
			ID             string                 `json:"id"`
			Data           MimeBundle             `json:"data"`
			Metadata       map[string]interface{} `json:"metadata"`
			ExecutionCount int                    `json:"execution_count"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return ExecuteResult{
			ID:             raw.ID,
			Data:           raw.Data,
			Metadata:       raw.Metadata,
			ExecutionCount: raw.ExecutionCount,
		}, nil
	case OutputTypeStream:
		var raw struct {
			ID   string          `json:"id"`
			Name StreamName      `json:"name"`
			Text json.RawMessage `json:"text"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		text, err := decodeStringList(raw.Text)
		if err != nil {
			return nil, err
		}
		return Stream{ID: raw.ID, Name: raw.Name, Text: text}, nil
	case OutputTypeError:
		var raw struct {
			ID        string   `json:"id"`
			EName     string   `json:"ename"`
			EValue    string   `json:"evalue"`
			Traceback []string `json:"traceback"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return ErrorOutput{ID: raw.ID, EName: raw.EName, EValue: raw.EValue, Traceback: raw.Traceback}, nil
	default:
		return nil, fmt.Errorf("unknown output_type %q", probe.OutputType)
	}
}

// decodeMultilineString accepts either a JSON string or a list of strings and
// returns the concatenated text.
func decodeMultilineString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("expected string or list of strings")
	}
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
	}
	return buf.String(), nil
}

// decodeStringList accepts either a JSON string or a list of strings and
// returns the lines without joining them.
func decodeStringList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("expected string or list of strings")
	}
	return lines, nil
}
