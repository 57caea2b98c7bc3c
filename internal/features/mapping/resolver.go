package mapping

import (
	"context"
	"fmt"
	"sort"

	"go-docmap/pkg/transform"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolver merges every applicable scoped config into one ordered,
// deduplicated rule set. An empty result is not an error; callers decide
// whether an empty mapping is fatal.
type Resolver interface {
	Resolve(ctx context.Context, templateID primitive.ObjectID, mctx MappingContext) (*ResolvedMapping, error)
}

type ResolverImpl struct {
	Repo MappingConfigRepository
}

func NewResolver(repo MappingConfigRepository) Resolver {
	return &ResolverImpl{Repo: repo}
}

func (r *ResolverImpl) Resolve(ctx context.Context, templateID primitive.ObjectID, mctx MappingContext) (*ResolvedMapping, error) {
	configs, err := r.Repo.ListActive(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping configs: %w", err)
	}

	var candidates []MappingConfig
	for _, cfg := range configs {
		if cfg.Matches(mctx) {
			candidates = append(candidates, cfg)
		}
	}

	// Ascending scope priority, then config priority within a scope, so a
	// later insertion always represents a more specific winner.
	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := candidates[i].Scope.Priority(), candidates[j].Scope.Priority()
		if si != sj {
			return si < sj
		}
		return candidates[i].Priority < candidates[j].Priority
	})

	byTarget := make(map[string]MappingRule)
	provenance := make(map[string]string)

	for _, cfg := range candidates {
		for _, rule := range cfg.Rules {
			if rule.TransformType == transform.TypeCustom {
				return nil, fmt.Errorf("config %s: rule for %q uses the disabled custom transform", cfg.ID.Hex(), rule.TargetField)
			}
			// Overwrite wins outright; rule parameters are never merged
			byTarget[rule.TargetField] = rule
			provenance[rule.TargetField] = cfg.ID.Hex()
		}
	}

	rules := make([]MappingRule, 0, len(byTarget))
	for _, rule := range byTarget {
		rules = append(rules, rule)
	}
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Order != rules[j].Order {
			return rules[i].Order < rules[j].Order
		}
		return rules[i].TargetField < rules[j].TargetField
	})

	// Provenance chain lists consulted configs highest scope first
	refs := make([]ConfigRef, 0, len(candidates))
	for i := len(candidates) - 1; i >= 0; i-- {
		cfg := candidates[i]
		refs = append(refs, ConfigRef{
			ID:       cfg.ID,
			Name:     cfg.Name,
			Scope:    cfg.Scope,
			Priority: cfg.Priority,
		})
	}

	return &ResolvedMapping{
		TemplateID: templateID,
		Configs:    refs,
		Rules:      rules,
		Provenance: provenance,
	}, nil
}
