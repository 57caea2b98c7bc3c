package matching

import (
	"go-docmap/internal/features/instance"
)

const DefaultBatchSize = 100

// MatchOptions tune one matching run
type MatchOptions struct {
	// RowKeyField names the extracted field used as the merge key.
	// Empty falls back to the template's configured row key field.
	RowKeyField string `json:"row_key_field,omitempty"`

	// Forwarded to the mapping resolver when a document does not carry
	// its own company/format identifiers
	CompanyID string `json:"company_id,omitempty"`
	FormatID  string `json:"format_id,omitempty"`

	BatchSize      int  `json:"batch_size,omitempty"`
	SkipValidation bool `json:"skip_validation,omitempty"`
}

// MatchRequest executes matching against a persistent instance
type MatchRequest struct {
	DocumentIDs        []string     `json:"document_ids"`
	TemplateInstanceID string       `json:"template_instance_id"`
	Options            MatchOptions `json:"options"`
}

// PreviewRequest runs the same pipeline without persisting anything
type PreviewRequest struct {
	DocumentIDs    []string     `json:"document_ids"`
	DataTemplateID string       `json:"data_template_id"`
	Options        MatchOptions `json:"options"`
}

// RowResult reports what one document contributed
type RowResult struct {
	DocumentID  string             `json:"document_id"`
	RowKey      string             `json:"row_key,omitempty"`
	Status      instance.RowStatus `json:"status"`
	FieldErrors map[string]string  `json:"field_errors,omitempty"`
	Message     string             `json:"message,omitempty"`
}

// MatchResult is the aggregate outcome of one run. Partial success is a
// first-class outcome: per-document failures ride alongside the summary.
type MatchResult struct {
	InstanceID string            `json:"instance_id"`
	Processed  int               `json:"processed"`
	Skipped    int               `json:"skipped"`
	Results    []RowResult       `json:"results"`
	Counters   instance.Counters `json:"counters"`
}

// PreviewRow is one merged in-memory row of a preview run
type PreviewRow struct {
	RowKey            string                 `json:"row_key"`
	SourceDocumentIDs []string               `json:"source_document_ids"`
	FieldValues       map[string]interface{} `json:"field_values"`
	FieldErrors       map[string]string      `json:"field_errors,omitempty"`
	Status            instance.RowStatus     `json:"status"`
}

// PreviewMatchResult mirrors MatchResult for the non-persisting path
type PreviewMatchResult struct {
	TemplateID string       `json:"template_id"`
	Processed  int          `json:"processed"`
	Skipped    int          `json:"skipped"`
	Rows       []PreviewRow `json:"rows"`
	Results    []RowResult  `json:"results"`
}

// ProgressEvent is published after every committed batch
type ProgressEvent struct {
	InstanceID string            `json:"instance_id"`
	Processed  int               `json:"processed"`
	Total      int               `json:"total"`
	Counters   instance.Counters `json:"counters"`
}

// ProgressFunc receives batch progress during a run
type ProgressFunc func(event ProgressEvent)
