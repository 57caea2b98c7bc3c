package document

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a source business document whose fields were already
// extracted upstream; this service only consumes the extracted values.
type Document struct {
	ID              primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	FileName        string                 `json:"file_name" bson:"file_name"`
	CompanyID       string                 `json:"company_id,omitempty" bson:"company_id,omitempty"`
	FormatID        string                 `json:"format_id,omitempty" bson:"format_id,omitempty"`
	ExtractedFields map[string]interface{} `json:"extracted_fields" bson:"extracted_fields"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
