package instance

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateInstance is the aggregate owning the output rows of one or more
// matching runs against a data template.
type TemplateInstance struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TemplateID  primitive.ObjectID `json:"template_id" bson:"template_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Status      InstanceStatus     `json:"status" bson:"status"`

	RowCount      int `json:"row_count" bson:"row_count"`
	ValidRowCount int `json:"valid_row_count" bson:"valid_row_count"`
	ErrorRowCount int `json:"error_row_count" bson:"error_row_count"`

	// Set when the status moved into error
	ErrorMessage string `json:"error_message,omitempty" bson:"error_message,omitempty"`

	ExportFormat string     `json:"export_format,omitempty" bson:"export_format,omitempty"`
	ExportedAt   *time.Time `json:"exported_at,omitempty" bson:"exported_at,omitempty"`
	ExportedBy   string     `json:"exported_by,omitempty" bson:"exported_by,omitempty"`

	CreatedBy primitive.ObjectID `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// RowStatus classifies one output row
type RowStatus string

const (
	RowStatusPending RowStatus = "PENDING"
	RowStatusValid   RowStatus = "VALID"
	RowStatusInvalid RowStatus = "INVALID"
	RowStatusSkipped RowStatus = "SKIPPED"
)

// Row is one output record, addressed by its business row key. Documents
// sharing a row key merge into the same row; the key is unique per instance.
type Row struct {
	ID                primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	InstanceID        primitive.ObjectID     `json:"instance_id" bson:"instance_id"`
	RowKey            string                 `json:"row_key" bson:"row_key"`
	RowIndex          int                    `json:"row_index" bson:"row_index"`
	SourceDocumentIDs []string               `json:"source_document_ids" bson:"source_document_ids"`
	FieldValues       map[string]interface{} `json:"field_values" bson:"field_values"`
	ValidationErrors  map[string]string      `json:"validation_errors,omitempty" bson:"validation_errors,omitempty"`
	Status            RowStatus              `json:"status" bson:"status"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// RowContribution is one document's candidate output for a row key,
// produced by the matching pipeline and merged into the row store.
type RowContribution struct {
	RowKey      string
	DocumentID  string
	FieldValues map[string]interface{}
	FieldErrors map[string]string
}

// Counters are the aggregate row counts recomputed after each batch
type Counters struct {
	RowCount      int `json:"row_count"`
	ValidRowCount int `json:"valid_row_count"`
	ErrorRowCount int `json:"error_row_count"`
}
