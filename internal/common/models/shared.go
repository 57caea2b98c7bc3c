package models

// ColumnType enumerates the value types a template column can declare
type ColumnType string

const (
	ColumnTypeText     ColumnType = "text"
	ColumnTypeNumber   ColumnType = "number"
	ColumnTypeDate     ColumnType = "date"
	ColumnTypeBoolean  ColumnType = "boolean"
	ColumnTypeCurrency ColumnType = "currency"
)

// TemplateColumn describes one target column of a data template.
// Required columns participate in row validation after matching.
type TemplateColumn struct {
	Name     string     `json:"name" bson:"name"`
	Label    string     `json:"label" bson:"label"`
	Type     ColumnType `json:"type" bson:"type"`
	Required bool       `json:"required" bson:"required"`
	Order    int        `json:"order" bson:"order"`
}

// Filter is a generic list filter used by list endpoints
type Filter struct {
	Field    string      `json:"field"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
}
