package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	common_models "go-docmap/internal/common/models"
	"go-docmap/internal/features/instance"
	"go-docmap/internal/features/template"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeInstanceRepo struct {
	inst     *instance.TemplateInstance
	exported bool
}

func (f *fakeInstanceRepo) Create(_ context.Context, _ *instance.TemplateInstance) error { return nil }

func (f *fakeInstanceRepo) Get(_ context.Context, id string) (*instance.TemplateInstance, error) {
	if f.inst == nil || f.inst.ID.Hex() != id {
		return nil, fmt.Errorf("instance %s not found", id)
	}
	return f.inst, nil
}

func (f *fakeInstanceRepo) List(_ context.Context, _ string) ([]instance.TemplateInstance, error) {
	return nil, nil
}

func (f *fakeInstanceRepo) SetStatus(_ context.Context, _ primitive.ObjectID, status instance.InstanceStatus, _ string) error {
	f.inst.Status = status
	return nil
}

func (f *fakeInstanceRepo) ClaimProcessing(_ context.Context, _ primitive.ObjectID) error {
	return nil
}

func (f *fakeInstanceRepo) SetCounters(_ context.Context, _ primitive.ObjectID, _ instance.Counters) error {
	return nil
}

func (f *fakeInstanceRepo) SetExported(_ context.Context, _ primitive.ObjectID, format, actor string) error {
	if f.inst.Status != instance.StatusCompleted {
		return fmt.Errorf("instance is %s, export requires COMPLETED", f.inst.Status)
	}
	f.inst.Status = instance.StatusExported
	f.inst.ExportFormat = format
	f.inst.ExportedBy = actor
	f.exported = true
	return nil
}

func (f *fakeInstanceRepo) ListStuckProcessing(_ context.Context, _ time.Time) ([]instance.TemplateInstance, error) {
	return nil, nil
}

func (f *fakeInstanceRepo) Delete(_ context.Context, _ primitive.ObjectID) error { return nil }

type fakeRowRepo struct {
	rows []instance.Row
}

func (f *fakeRowRepo) EnsureIndexes(_ context.Context) error { return nil }

func (f *fakeRowRepo) FindByKey(_ context.Context, _ primitive.ObjectID, _ string) (*instance.Row, error) {
	return nil, nil
}

func (f *fakeRowRepo) Upsert(_ context.Context, _ primitive.ObjectID, _ instance.RowContribution) (*instance.Row, error) {
	return nil, nil
}

func (f *fakeRowRepo) SetValidation(_ context.Context, _ primitive.ObjectID, _ string, _ instance.RowStatus, _ map[string]string) error {
	return nil
}

func (f *fakeRowRepo) List(_ context.Context, _ primitive.ObjectID, limit, offset int64) ([]instance.Row, error) {
	if offset >= int64(len(f.rows)) {
		return nil, nil
	}
	end := offset + limit
	if end > int64(len(f.rows)) {
		end = int64(len(f.rows))
	}
	return f.rows[offset:end], nil
}

func (f *fakeRowRepo) CountByStatus(_ context.Context, _ primitive.ObjectID) (instance.Counters, error) {
	return instance.Counters{}, nil
}

func (f *fakeRowRepo) UpdateFields(_ context.Context, _ primitive.ObjectID, _ string, _ map[string]interface{}) error {
	return nil
}

func (f *fakeRowRepo) DeleteByKey(_ context.Context, _ primitive.ObjectID, _ string) error {
	return nil
}

func (f *fakeRowRepo) DeleteAll(_ context.Context, _ primitive.ObjectID) error { return nil }

type fakeTemplateRepo struct {
	tmpl *template.DataTemplate
}

func (f *fakeTemplateRepo) Create(_ context.Context, _ *template.DataTemplate) error { return nil }

func (f *fakeTemplateRepo) Get(_ context.Context, _ string) (*template.DataTemplate, error) {
	return f.tmpl, nil
}

func (f *fakeTemplateRepo) List(_ context.Context) ([]template.DataTemplate, error) { return nil, nil }

func (f *fakeTemplateRepo) Update(_ context.Context, _ string, _ map[string]interface{}) error {
	return nil
}

func (f *fakeTemplateRepo) Delete(_ context.Context, _ string) error { return nil }

func newExportEnv(status instance.InstanceStatus) (*ExportServiceImpl, *fakeInstanceRepo) {
	tmpl := &template.DataTemplate{
		ID:   primitive.NewObjectID(),
		Name: "shipment_export",
		Columns: []common_models.TemplateColumn{
			{Name: "origin", Label: "Origin", Order: 2},
			{Name: "shipment_no", Label: "Shipment No", Order: 1},
		},
	}
	inst := &instance.TemplateInstance{
		ID:         primitive.NewObjectID(),
		TemplateID: tmpl.ID,
		Status:     status,
	}
	// deliberately stored out of display order
	rows := &fakeRowRepo{rows: []instance.Row{
		{RowKey: "SH-002", RowIndex: 2, FieldValues: map[string]interface{}{
			"shipment_no": "SH-002", "origin": "Rotterdam",
		}},
		{RowKey: "SH-001", RowIndex: 1, FieldValues: map[string]interface{}{
			"shipment_no": "SH-001", "origin": "Shanghai",
		}},
	}}
	instances := &fakeInstanceRepo{inst: inst}
	svc := &ExportServiceImpl{
		Instances: instances,
		Rows:      rows,
		Templates: &fakeTemplateRepo{tmpl: tmpl},
		Logger:    zap.NewNop(),
	}
	return svc, instances
}

func TestExportRejectsNonCompletedInstance(t *testing.T) {
	for _, status := range []instance.InstanceStatus{
		instance.StatusDraft,
		instance.StatusProcessing,
		instance.StatusError,
	} {
		t.Run(string(status), func(t *testing.T) {
			svc, instances := newExportEnv(status)
			_, _, err := svc.ExportInstance(context.Background(), instances.inst.ID.Hex(), FormatXLSX, "")
			if err == nil {
				t.Fatalf("ExportInstance() of %s instance did not fail", status)
			}
		})
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc, instances := newExportEnv(instance.StatusCompleted)
	_, _, err := svc.ExportInstance(context.Background(), instances.inst.ID.Hex(), "pdf", "")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("err = %v, want unsupported format", err)
	}
}

func TestExportXLSXOrdersColumnsAndRows(t *testing.T) {
	svc, instances := newExportEnv(instance.StatusCompleted)

	payload, filename, err := svc.ExportInstance(context.Background(), instances.inst.ID.Hex(), FormatXLSX, "ops@example.com")
	if err != nil {
		t.Fatalf("ExportInstance() error = %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("filename = %s, want .xlsx suffix", filename)
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Export")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("sheet rows = %d, want header plus 2 data rows", len(rows))
	}
	if rows[0][0] != "Shipment No" || rows[0][1] != "Origin" {
		t.Errorf("header = %v, want column order by Order field", rows[0])
	}
	if rows[1][0] != "SH-001" || rows[2][0] != "SH-002" {
		t.Errorf("data rows = %v / %v, want row_index order", rows[1], rows[2])
	}

	if instances.inst.Status != instance.StatusExported {
		t.Errorf("instance status = %s, want EXPORTED", instances.inst.Status)
	}
	if instances.inst.ExportedBy != "ops@example.com" {
		t.Errorf("exported_by = %s", instances.inst.ExportedBy)
	}
}

func TestExportCSV(t *testing.T) {
	svc, instances := newExportEnv(instance.StatusCompleted)

	payload, filename, err := svc.ExportInstance(context.Background(), instances.inst.ID.Hex(), FormatCSV, "")
	if err != nil {
		t.Fatalf("ExportInstance() error = %v", err)
	}
	if !strings.HasSuffix(filename, ".csv") {
		t.Errorf("filename = %s, want .csv suffix", filename)
	}

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want 3", len(lines))
	}
	if lines[0] != "Shipment No,Origin" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "SH-001,Shanghai" {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestExportedInstanceDownloadsAgainWithoutRestamping(t *testing.T) {
	svc, instances := newExportEnv(instance.StatusExported)

	payload, _, err := svc.ExportInstance(context.Background(), instances.inst.ID.Hex(), FormatXLSX, "")
	if err != nil {
		t.Fatalf("ExportInstance() of EXPORTED instance error = %v", err)
	}
	if len(payload) == 0 {
		t.Error("payload is empty")
	}
	if instances.exported {
		t.Error("SetExported was called on an already exported instance")
	}
}
