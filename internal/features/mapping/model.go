package mapping

import (
	"fmt"
	"time"

	"go-docmap/pkg/transform"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scope is the breadth at which a mapping config applies. Wider scopes are
// overridden per target field by narrower ones during resolution.
type Scope string

const (
	ScopeGlobal  Scope = "GLOBAL"
	ScopeCompany Scope = "COMPANY"
	ScopeFormat  Scope = "FORMAT"
)

// Priority orders scopes for the override merge: higher wins per field
func (s Scope) Priority() int {
	switch s {
	case ScopeGlobal:
		return 1
	case ScopeCompany:
		return 2
	case ScopeFormat:
		return 3
	default:
		return 0
	}
}

// MappingRule is one row-to-column instruction inside a config
type MappingRule struct {
	SourceField     string           `json:"source_field,omitempty" bson:"source_field,omitempty"`
	TargetField     string           `json:"target_field" bson:"target_field"`
	TransformType   transform.Type   `json:"transform_type" bson:"transform_type"`
	TransformParams transform.Params `json:"transform_params,omitempty" bson:"transform_params,omitempty"`
	IsRequired      bool             `json:"is_required" bson:"is_required"`
	Order           int              `json:"order" bson:"order"`
	Description     string           `json:"description,omitempty" bson:"description,omitempty"`
}

// MappingConfig is a named, versionable rule bundle owned by one template
type MappingConfig struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TemplateID primitive.ObjectID `json:"template_id" bson:"template_id"`
	Name       string             `json:"name" bson:"name"`
	Scope      Scope              `json:"scope" bson:"scope"`
	CompanyID  string             `json:"company_id,omitempty" bson:"company_id,omitempty"`
	FormatID   string             `json:"format_id,omitempty" bson:"format_id,omitempty"`
	Rules      []MappingRule      `json:"rules" bson:"rules"`
	Priority   int                `json:"priority" bson:"priority"`
	IsActive   bool               `json:"is_active" bson:"is_active"`

	CreatedBy primitive.ObjectID `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// ValidateScope enforces the scope/qualifier consistency invariant:
// GLOBAL carries neither qualifier, COMPANY only a company, FORMAT only a format.
func (c *MappingConfig) ValidateScope() error {
	switch c.Scope {
	case ScopeGlobal:
		if c.CompanyID != "" || c.FormatID != "" {
			return fmt.Errorf("global config must not carry company or format identifiers")
		}
	case ScopeCompany:
		if c.CompanyID == "" {
			return fmt.Errorf("company config requires a company identifier")
		}
		if c.FormatID != "" {
			return fmt.Errorf("company config must not carry a format identifier")
		}
	case ScopeFormat:
		if c.FormatID == "" {
			return fmt.Errorf("format config requires a format identifier")
		}
		if c.CompanyID != "" {
			return fmt.Errorf("format config must not carry a company identifier")
		}
	default:
		return fmt.Errorf("unknown scope: %s", c.Scope)
	}
	return nil
}

// Matches reports whether the config applies under the given call context
func (c *MappingConfig) Matches(mctx MappingContext) bool {
	switch c.Scope {
	case ScopeGlobal:
		return true
	case ScopeCompany:
		return mctx.CompanyID != "" && mctx.CompanyID == c.CompanyID
	case ScopeFormat:
		return mctx.FormatID != "" && mctx.FormatID == c.FormatID
	default:
		return false
	}
}

// MappingContext narrows resolution to a company and/or document format
type MappingContext struct {
	CompanyID string `json:"company_id,omitempty"`
	FormatID  string `json:"format_id,omitempty"`
}

// ConfigRef is one entry of the resolved provenance chain
type ConfigRef struct {
	ID       primitive.ObjectID `json:"id"`
	Name     string             `json:"name"`
	Scope    Scope              `json:"scope"`
	Priority int                `json:"priority"`
}

// ResolvedMapping is the merged rule set for one call context. Rules are
// ordered by their own Order field; Provenance records which config
// contributed the surviving rule for each target field.
type ResolvedMapping struct {
	TemplateID primitive.ObjectID `json:"template_id"`
	Configs    []ConfigRef        `json:"configs"`
	Rules      []MappingRule      `json:"rules"`
	Provenance map[string]string  `json:"provenance"`
}

// RuleIssue is one configuration problem found by the diagnostic validator
type RuleIssue struct {
	ConfigID    string `json:"config_id,omitempty"`
	TargetField string `json:"target_field"`
	Message     string `json:"message"`
}
