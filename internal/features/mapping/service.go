package mapping

import (
	"context"
	"fmt"

	"go-docmap/pkg/transform"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MappingService interface {
	CreateConfig(ctx context.Context, cfg *MappingConfig) error
	GetConfig(ctx context.Context, id string) (*MappingConfig, error)
	ListConfigs(ctx context.Context, templateID string) ([]MappingConfig, error)
	UpdateConfig(ctx context.Context, id string, updates map[string]interface{}) error
	DisableConfig(ctx context.Context, id string) error
	ValidateConfig(cfg *MappingConfig) []RuleIssue
	ResolveMapping(ctx context.Context, templateID string, mctx MappingContext) (*ResolvedMapping, error)
}

type MappingServiceImpl struct {
	Repo     MappingConfigRepository
	Resolver Resolver
	Logger   *zap.Logger
}

func NewMappingService(repo MappingConfigRepository, resolver Resolver, logger *zap.Logger) MappingService {
	return &MappingServiceImpl{
		Repo:     repo,
		Resolver: resolver,
		Logger:   logger,
	}
}

func (s *MappingServiceImpl) CreateConfig(ctx context.Context, cfg *MappingConfig) error {
	if cfg.TemplateID.IsZero() {
		return fmt.Errorf("template identifier is required")
	}
	if err := cfg.ValidateScope(); err != nil {
		return err
	}
	if issues := s.ValidateConfig(cfg); len(issues) > 0 {
		return fmt.Errorf("config has %d invalid rules (first: %s: %s)", len(issues), issues[0].TargetField, issues[0].Message)
	}

	if err := s.Repo.Create(ctx, cfg); err != nil {
		return err
	}

	s.Logger.Info("mapping config created",
		zap.String("config_id", cfg.ID.Hex()),
		zap.String("template_id", cfg.TemplateID.Hex()),
		zap.String("scope", string(cfg.Scope)),
		zap.Int("rules", len(cfg.Rules)))
	return nil
}

func (s *MappingServiceImpl) GetConfig(ctx context.Context, id string) (*MappingConfig, error) {
	return s.Repo.Get(ctx, id)
}

func (s *MappingServiceImpl) ListConfigs(ctx context.Context, templateID string) ([]MappingConfig, error) {
	return s.Repo.ListByTemplate(ctx, templateID)
}

func (s *MappingServiceImpl) UpdateConfig(ctx context.Context, id string, updates map[string]interface{}) error {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("config not found: %w", err)
	}

	// Scope or qualifier changes must land in a consistent combination,
	// so merge them onto the stored config and re-check the invariant.
	if hasScopeUpdate(updates) {
		probe := *existing
		if raw, ok := updates["scope"]; ok {
			v, ok := raw.(string)
			if !ok {
				return fmt.Errorf("scope must be a string")
			}
			probe.Scope = Scope(v)
		}
		if raw, ok := updates["company_id"]; ok {
			v, ok := raw.(string)
			if !ok {
				return fmt.Errorf("company identifier must be a string")
			}
			probe.CompanyID = v
		}
		if raw, ok := updates["format_id"]; ok {
			v, ok := raw.(string)
			if !ok {
				return fmt.Errorf("format identifier must be a string")
			}
			probe.FormatID = v
		}
		if err := probe.ValidateScope(); err != nil {
			return err
		}
	}

	// Rule updates replace the full rule list and must re-validate
	if raw, ok := updates["rules"]; ok {
		rules, err := decodeRules(raw)
		if err != nil {
			return err
		}
		probe := *existing
		probe.Rules = rules
		if issues := s.ValidateConfig(&probe); len(issues) > 0 {
			return fmt.Errorf("updated rules are invalid (first: %s: %s)", issues[0].TargetField, issues[0].Message)
		}
		updates["rules"] = rules
	}

	return s.Repo.Update(ctx, id, updates)
}

func (s *MappingServiceImpl) DisableConfig(ctx context.Context, id string) error {
	return s.Repo.SetActive(ctx, id, false)
}

// ValidateConfig runs every rule's parameter validator without touching
// document data, so an administrator can fix configuration up front.
func (s *MappingServiceImpl) ValidateConfig(cfg *MappingConfig) []RuleIssue {
	var issues []RuleIssue

	seen := make(map[string]bool, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		if rule.TargetField == "" {
			issues = append(issues, RuleIssue{Message: "target field is required"})
			continue
		}
		if seen[rule.TargetField] {
			issues = append(issues, RuleIssue{
				TargetField: rule.TargetField,
				Message:     "duplicate target field within config",
			})
		}
		seen[rule.TargetField] = true

		if err := transform.ValidateParams(rule.TransformType, rule.TransformParams); err != nil {
			issues = append(issues, RuleIssue{
				TargetField: rule.TargetField,
				Message:     err.Error(),
			})
		}
	}

	return issues
}

func (s *MappingServiceImpl) ResolveMapping(ctx context.Context, templateID string, mctx MappingContext) (*ResolvedMapping, error) {
	oid, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		return nil, fmt.Errorf("invalid template identifier: %w", err)
	}
	return s.Resolver.Resolve(ctx, oid, mctx)
}

func hasScopeUpdate(updates map[string]interface{}) bool {
	for _, key := range []string{"scope", "company_id", "format_id"} {
		if _, ok := updates[key]; ok {
			return true
		}
	}
	return false
}

func decodeRules(raw interface{}) ([]MappingRule, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("rules must be a list")
	}

	rules := make([]MappingRule, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("each rule must be an object")
		}

		rule := MappingRule{}
		if v, ok := m["source_field"].(string); ok {
			rule.SourceField = v
		}
		if v, ok := m["target_field"].(string); ok {
			rule.TargetField = v
		}
		if v, ok := m["transform_type"].(string); ok {
			rule.TransformType = transform.Type(v)
		}
		if v, ok := m["transform_params"].(map[string]interface{}); ok {
			rule.TransformParams = v
		}
		if v, ok := m["is_required"].(bool); ok {
			rule.IsRequired = v
		}
		if v, ok := m["order"].(float64); ok {
			rule.Order = int(v)
		}
		if v, ok := m["description"].(string); ok {
			rule.Description = v
		}
		rules = append(rules, rule)
	}

	return rules, nil
}
