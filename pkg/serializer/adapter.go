package serializer

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TFMV/quill/pkg/infrastructure/converter"
	"github.com/TFMV/quill/pkg/models"
)

// Host documents keep the app-side format version inside a combined
// "custom" metadata envelope; the adapter splits it into the top-level
// nbformat fields on serialize and rebuilds it on deserialize.
const (
	metadataKeyCustom        = "custom"
	metadataKeyNBFormat      = "nbformat"
	metadataKeyNBFormatMinor = "nbformat_minor"
	metadataKeyMetadata      = "metadata"
	metadataKeyLanguage      = "language"
	metadataKeyLanguageInfo  = "language_info"
)

// Format version written when a host document carries no envelope.
const (
	defaultNBFormat      = 4
	defaultNBFormatMinor = 2
)

// Adapter bridges host documents and the underlying notebook serializer.
// Each call performs exactly one underlying serializer call; errors from the
// serializer propagate unchanged.
type Adapter struct {
	serializer NotebookSerializer
	converter  converter.OutputConverter
	logger     zerolog.Logger
}

// NewAdapter creates a new document adapter around a notebook serializer.
func NewAdapter(s NotebookSerializer, logger zerolog.Logger) *Adapter {
	return &Adapter{
		serializer: s,
		converter:  converter.New(logger),
		logger:     logger,
	}
}

// Converter exposes the adapter's output converter for single-output
// conversions outside a full document pass.
func (a *Adapter) Converter() converter.OutputConverter {
	return a.converter
}

// Serialize converts a host document to the app-side schema and encodes it
// through the underlying serializer.
func (a *Adapter) Serialize(ctx context.Context, doc models.HostDocument) ([]byte, error) {
	appDoc := a.toAppDocument(doc)

	a.logger.Debug().
		Int("cells", len(appDoc.Cells)).
		Int("nbformat", appDoc.NBFormat).
		Msg("Serializing notebook")

	return a.serializer.SerializeNotebook(ctx, appDoc)
}

// Deserialize decodes bytes through the underlying serializer and converts
// the app-side document to the host schema.
func (a *Adapter) Deserialize(ctx context.Context, data []byte) (models.HostDocument, error) {
	appDoc, err := a.serializer.DeserializeNotebook(ctx, data)
	if err != nil {
		return models.HostDocument{}, err
	}

	a.logger.Debug().
		Int("cells", len(appDoc.Cells)).
		Int("nbformat", appDoc.NBFormat).
		Msg("Deserialized notebook")

	return a.toHostDocument(appDoc), nil
}

// toAppDocument maps a host document field-for-field onto the app schema,
// converting outputs with each code cell's running execution index.
func (a *Adapter) toAppDocument(doc models.HostDocument) models.Document {
	nbformat, nbformatMinor, metadata := splitEnvelope(doc.Metadata)

	cells := make([]models.Cell, 0, len(doc.Cells))
	executionCount := 0
	for _, hc := range doc.Cells {
		cell := models.Cell{
			Source:   hc.Source,
			Metadata: map[string]interface{}{},
		}
		if hc.Language != "" {
			cell.Metadata[metadataKeyLanguage] = hc.Language
		}

		switch hc.Kind {
		case models.KindCode:
			cell.CellType = models.CellTypeCode
			executionCount++
			count := executionCount
			cell.ExecutionCount = &count
			for _, out := range hc.Outputs {
				cell.Outputs = append(cell.Outputs, a.converter.ToAppOutput(out, count)...)
			}
		default:
			cell.CellType = models.CellTypeMarkdown
		}

		cells = append(cells, cell)
	}

	return models.Document{
		Metadata:      metadata,
		NBFormat:      nbformat,
		NBFormatMinor: nbformatMinor,
		Cells:         cells,
	}
}

// toHostDocument maps an app document back onto the host schema, rebuilding
// the custom metadata envelope.
func (a *Adapter) toHostDocument(doc models.Document) models.HostDocument {
	cells := make([]models.HostCell, 0, len(doc.Cells))
	for _, c := range doc.Cells {
		hc := models.HostCell{
			Source:   c.Source,
			Language: cellLanguage(c, doc),
		}
		if c.CellType == models.CellTypeCode {
			hc.Kind = models.KindCode
		} else {
			hc.Kind = models.KindMarkup
		}
		if c.ExecutionCount != nil {
			hc.ExecutionOrder = *c.ExecutionCount
		}
		for _, out := range c.Outputs {
			hostOut := a.converter.ToHostOutput(out)
			if hostOut.ID == "" {
				hostOut.ID = uuid.NewString()
			}
			hc.Outputs = append(hc.Outputs, hostOut)
		}
		cells = append(cells, hc)
	}

	return models.HostDocument{
		Cells:    cells,
		Metadata: buildEnvelope(doc),
	}
}

// splitEnvelope extracts nbformat, nbformat_minor, and the verbatim app
// metadata from a host document's custom envelope.
func splitEnvelope(hostMeta map[string]interface{}) (int, int, map[string]interface{}) {
	nbformat := defaultNBFormat
	nbformatMinor := defaultNBFormatMinor
	metadata := map[string]interface{}{}

	custom, ok := hostMeta[metadataKeyCustom].(map[string]interface{})
	if !ok {
		return nbformat, nbformatMinor, metadata
	}
	if v, ok := asInt(custom[metadataKeyNBFormat]); ok {
		nbformat = v
	}
	if v, ok := asInt(custom[metadataKeyNBFormatMinor]); ok {
		nbformatMinor = v
	}
	if m, ok := custom[metadataKeyMetadata].(map[string]interface{}); ok {
		metadata = m
	}
	return nbformat, nbformatMinor, metadata
}

// buildEnvelope is the inverse of splitEnvelope.
func buildEnvelope(doc models.Document) map[string]interface{} {
	metadata := doc.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return map[string]interface{}{
		metadataKeyCustom: map[string]interface{}{
			metadataKeyNBFormat:      doc.NBFormat,
			metadataKeyNBFormatMinor: doc.NBFormatMinor,
			metadataKeyMetadata:      metadata,
		},
	}
}

// cellLanguage resolves a cell's language from its own metadata, falling back
// to the document's language_info.
func cellLanguage(c models.Cell, doc models.Document) string {
	if lang, ok := c.Metadata[metadataKeyLanguage].(string); ok && lang != "" {
		return lang
	}
	if info, ok := doc.Metadata[metadataKeyLanguageInfo].(map[string]interface{}); ok {
		if name, ok := info["name"].(string); ok {
			return name
		}
	}
	return ""
}

// asInt accepts the numeric types JSON decoding can produce.
func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
