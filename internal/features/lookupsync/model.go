package lookupsync

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SyncSource tells the syncer where a table's entries come from. The query
// must return exactly two columns, key then value. Driver and DSN fall back
// to the configured defaults when empty.
type SyncSource struct {
	Driver string `json:"driver,omitempty" bson:"driver,omitempty"`
	DSN    string `json:"dsn,omitempty" bson:"dsn,omitempty"`
	Query  string `json:"query" bson:"query"`
}

// LookupTable is a named key-to-value reference table. LOOKUP transform
// rules reference it by name; entries are either managed by hand or synced
// from an external SQL database.
type LookupTable struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Entries     map[string]string  `json:"entries" bson:"entries"`
	Source      *SyncSource        `json:"source,omitempty" bson:"source,omitempty"`
	SyncedAt    *time.Time         `json:"synced_at,omitempty" bson:"synced_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (t *LookupTable) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("lookup table name is required")
	}
	if t.Source == nil && len(t.Entries) == 0 {
		return fmt.Errorf("lookup table needs entries or a sync source")
	}
	if t.Source != nil && t.Source.Query == "" {
		return fmt.Errorf("sync source query is required")
	}
	return nil
}

// SyncReport summarizes one sync pass
type SyncReport struct {
	Synced int               `json:"synced"`
	Failed int               `json:"failed"`
	Errors map[string]string `json:"errors,omitempty"`
}
