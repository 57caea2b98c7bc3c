package template

import (
	"context"
	"fmt"
)

type TemplateService interface {
	CreateTemplate(ctx context.Context, tmpl *DataTemplate) error
	GetTemplate(ctx context.Context, id string) (*DataTemplate, error)
	ListTemplates(ctx context.Context) ([]DataTemplate, error)
	UpdateTemplate(ctx context.Context, id string, updates map[string]interface{}) error
	DeleteTemplate(ctx context.Context, id string) error
}

type TemplateServiceImpl struct {
	Repo TemplateRepository
}

func NewTemplateService(repo TemplateRepository) TemplateService {
	return &TemplateServiceImpl{Repo: repo}
}

func (s *TemplateServiceImpl) CreateTemplate(ctx context.Context, tmpl *DataTemplate) error {
	if tmpl.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if len(tmpl.Columns) == 0 {
		return fmt.Errorf("template must define at least one column")
	}

	seen := make(map[string]bool, len(tmpl.Columns))
	for _, col := range tmpl.Columns {
		if col.Name == "" {
			return fmt.Errorf("column name is required")
		}
		if seen[col.Name] {
			return fmt.Errorf("duplicate column name: %s", col.Name)
		}
		seen[col.Name] = true
	}

	if tmpl.RowKeyField == "" {
		tmpl.RowKeyField = DefaultRowKeyField
	}

	return s.Repo.Create(ctx, tmpl)
}

func (s *TemplateServiceImpl) GetTemplate(ctx context.Context, id string) (*DataTemplate, error) {
	return s.Repo.Get(ctx, id)
}

func (s *TemplateServiceImpl) ListTemplates(ctx context.Context) ([]DataTemplate, error) {
	return s.Repo.List(ctx)
}

func (s *TemplateServiceImpl) UpdateTemplate(ctx context.Context, id string, updates map[string]interface{}) error {
	return s.Repo.Update(ctx, id, updates)
}

func (s *TemplateServiceImpl) DeleteTemplate(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
