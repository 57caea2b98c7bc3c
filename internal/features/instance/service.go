package instance

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type InstanceService interface {
	CreateInstance(ctx context.Context, inst *TemplateInstance) error
	GetInstance(ctx context.Context, id string) (*TemplateInstance, error)
	ListInstances(ctx context.Context, templateID string) ([]TemplateInstance, error)
	DeleteInstance(ctx context.Context, id string) error
	Complete(ctx context.Context, id string) error
	ListRows(ctx context.Context, id string, limit, offset int64) ([]Row, error)
	UpdateRow(ctx context.Context, id, rowKey string, fields map[string]interface{}) error
	DeleteRow(ctx context.Context, id, rowKey string) error
}

type InstanceServiceImpl struct {
	Repo    InstanceRepository
	RowRepo RowRepository
	Logger  *zap.Logger
}

func NewInstanceService(repo InstanceRepository, rowRepo RowRepository, logger *zap.Logger) InstanceService {
	return &InstanceServiceImpl{
		Repo:    repo,
		RowRepo: rowRepo,
		Logger:  logger,
	}
}

func (s *InstanceServiceImpl) CreateInstance(ctx context.Context, inst *TemplateInstance) error {
	if inst.TemplateID.IsZero() {
		return fmt.Errorf("template identifier is required")
	}
	if inst.Name == "" {
		return fmt.Errorf("instance name is required")
	}
	return s.Repo.Create(ctx, inst)
}

func (s *InstanceServiceImpl) GetInstance(ctx context.Context, id string) (*TemplateInstance, error) {
	return s.Repo.Get(ctx, id)
}

func (s *InstanceServiceImpl) ListInstances(ctx context.Context, templateID string) ([]TemplateInstance, error) {
	return s.Repo.List(ctx, templateID)
}

func (s *InstanceServiceImpl) DeleteInstance(ctx context.Context, id string) error {
	inst, err := s.Repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("instance not found: %w", err)
	}
	if !inst.Status.IsDeletable() {
		return fmt.Errorf("instance in status %s cannot be deleted", inst.Status)
	}

	if err := s.RowRepo.DeleteAll(ctx, inst.ID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, inst.ID); err != nil {
		return err
	}

	s.Logger.Info("instance deleted", zap.String("instance_id", id))
	return nil
}

// Complete finalizes a processing run; exposed so an operator can close
// out an instance once the data looks right.
func (s *InstanceServiceImpl) Complete(ctx context.Context, id string) error {
	inst, err := s.Repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("instance not found: %w", err)
	}
	if err := ValidateTransition(inst.Status, StatusCompleted); err != nil {
		return err
	}
	return s.Repo.SetStatus(ctx, inst.ID, StatusCompleted, "")
}

func (s *InstanceServiceImpl) ListRows(ctx context.Context, id string, limit, offset int64) ([]Row, error) {
	inst, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("instance not found: %w", err)
	}
	return s.RowRepo.List(ctx, inst.ID, limit, offset)
}

func (s *InstanceServiceImpl) UpdateRow(ctx context.Context, id, rowKey string, fields map[string]interface{}) error {
	inst, err := s.Repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("instance not found: %w", err)
	}
	if !inst.Status.IsEditable() {
		return fmt.Errorf("instance in status %s is not editable", inst.Status)
	}

	return s.RowRepo.UpdateFields(ctx, inst.ID, rowKey, fields)
}

func (s *InstanceServiceImpl) DeleteRow(ctx context.Context, id, rowKey string) error {
	inst, err := s.Repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("instance not found: %w", err)
	}
	if !inst.Status.IsEditable() {
		return fmt.Errorf("instance in status %s is not editable", inst.Status)
	}

	if err := s.RowRepo.DeleteByKey(ctx, inst.ID, rowKey); err != nil {
		return err
	}

	counters, err := s.RowRepo.CountByStatus(ctx, inst.ID)
	if err != nil {
		return err
	}
	return s.Repo.SetCounters(ctx, inst.ID, counters)
}
