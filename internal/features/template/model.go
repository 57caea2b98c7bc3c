package template

import (
	"time"

	common_models "go-docmap/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultRowKeyField is the merge key used when a template does not name one
const DefaultRowKeyField = "shipment_number"

// DataTemplate defines the target tabular layout matching runs fill in.
// Columns carry the required flags row validation enforces; RowKeyField
// names the extracted field used to merge documents into one row.
type DataTemplate struct {
	ID          primitive.ObjectID            `json:"id" bson:"_id,omitempty"`
	Name        string                        `json:"name" bson:"name"`
	Description string                        `json:"description,omitempty" bson:"description,omitempty"`
	Columns     []common_models.TemplateColumn `json:"columns" bson:"columns"`
	RowKeyField string                        `json:"row_key_field" bson:"row_key_field"`
	IsActive    bool                          `json:"is_active" bson:"is_active"`

	CreatedBy primitive.ObjectID `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// RequiredColumns returns the names of columns a valid row must fill
func (t *DataTemplate) RequiredColumns() []string {
	var required []string
	for _, col := range t.Columns {
		if col.Required {
			required = append(required, col.Name)
		}
	}
	return required
}
