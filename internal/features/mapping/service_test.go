package mapping

import (
	"context"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type recordingConfigRepo struct {
	stored  *MappingConfig
	updates map[string]interface{}
}

func (f *recordingConfigRepo) Create(ctx context.Context, cfg *MappingConfig) error { return nil }
func (f *recordingConfigRepo) Get(ctx context.Context, id string) (*MappingConfig, error) {
	if f.stored == nil {
		return nil, fmt.Errorf("not found")
	}
	cfg := *f.stored
	return &cfg, nil
}
func (f *recordingConfigRepo) ListByTemplate(ctx context.Context, templateID string) ([]MappingConfig, error) {
	return nil, nil
}
func (f *recordingConfigRepo) ListActive(ctx context.Context, templateID primitive.ObjectID) ([]MappingConfig, error) {
	return nil, nil
}
func (f *recordingConfigRepo) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	f.updates = updates
	return nil
}
func (f *recordingConfigRepo) SetActive(ctx context.Context, id string, active bool) error {
	return nil
}

func TestUpdateConfigScopeConsistency(t *testing.T) {
	tests := []struct {
		name    string
		stored  MappingConfig
		updates map[string]interface{}
		wantErr bool
	}{
		{
			name:    "Widen To Company Without Qualifier",
			stored:  MappingConfig{Scope: ScopeGlobal},
			updates: map[string]interface{}{"scope": "COMPANY"},
			wantErr: true,
		},
		{
			name:   "Widen To Company With Qualifier",
			stored: MappingConfig{Scope: ScopeGlobal},
			updates: map[string]interface{}{
				"scope":      "COMPANY",
				"company_id": "acme",
			},
		},
		{
			name:    "Scope Change Leaves Stale Qualifier",
			stored:  MappingConfig{Scope: ScopeCompany, CompanyID: "acme"},
			updates: map[string]interface{}{"scope": "GLOBAL"},
			wantErr: true,
		},
		{
			name:   "Scope Change Clears Qualifier",
			stored: MappingConfig{Scope: ScopeCompany, CompanyID: "acme"},
			updates: map[string]interface{}{
				"scope":      "GLOBAL",
				"company_id": "",
			},
		},
		{
			name:    "Qualifier Added To Global",
			stored:  MappingConfig{Scope: ScopeGlobal},
			updates: map[string]interface{}{"format_id": "cargowise"},
			wantErr: true,
		},
		{
			name:    "Company Qualifier On Format Scope",
			stored:  MappingConfig{Scope: ScopeFormat, FormatID: "cargowise"},
			updates: map[string]interface{}{"company_id": "acme"},
			wantErr: true,
		},
		{
			name:    "Non String Scope",
			stored:  MappingConfig{Scope: ScopeGlobal},
			updates: map[string]interface{}{"scope": 3},
			wantErr: true,
		},
		{
			name:    "Untouched Scope Keys Pass Through",
			stored:  MappingConfig{Scope: ScopeCompany, CompanyID: "acme"},
			updates: map[string]interface{}{"name": "renamed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &recordingConfigRepo{stored: &tt.stored}
			svc := NewMappingService(repo, nil, zap.NewNop())

			err := svc.UpdateConfig(context.Background(), tt.stored.ID.Hex(), tt.updates)
			if tt.wantErr {
				if err == nil {
					t.Fatal("UpdateConfig() accepted inconsistent scope update")
				}
				if repo.updates != nil {
					t.Fatal("UpdateConfig() persisted a rejected update")
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateConfig() error = %v", err)
			}
			if repo.updates == nil {
				t.Fatal("UpdateConfig() never reached the repository")
			}
		})
	}
}
