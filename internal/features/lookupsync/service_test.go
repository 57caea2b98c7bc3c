package lookupsync

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-docmap/internal/config"

	"go.uber.org/zap"
)

type fakeLookupRepo struct {
	tables map[string]*LookupTable
}

func newFakeLookupRepo() *fakeLookupRepo {
	return &fakeLookupRepo{tables: map[string]*LookupTable{}}
}

func (f *fakeLookupRepo) Upsert(_ context.Context, table *LookupTable) error {
	f.tables[table.Name] = table
	return nil
}

func (f *fakeLookupRepo) GetByName(_ context.Context, name string) (*LookupTable, error) {
	table, ok := f.tables[name]
	if !ok {
		return nil, fmt.Errorf("lookup table %s not found", name)
	}
	return table, nil
}

func (f *fakeLookupRepo) List(_ context.Context) ([]LookupTable, error) {
	var out []LookupTable
	for _, table := range f.tables {
		out = append(out, *table)
	}
	return out, nil
}

func (f *fakeLookupRepo) ListSyncable(_ context.Context) ([]LookupTable, error) {
	var out []LookupTable
	for _, table := range f.tables {
		if table.Source != nil {
			out = append(out, *table)
		}
	}
	return out, nil
}

func (f *fakeLookupRepo) ReplaceEntries(_ context.Context, name string, entries map[string]string, syncedAt time.Time) error {
	table, ok := f.tables[name]
	if !ok {
		return fmt.Errorf("lookup table %s not found", name)
	}
	table.Entries = entries
	table.SyncedAt = &syncedAt
	return nil
}

func (f *fakeLookupRepo) Delete(_ context.Context, name string) error {
	delete(f.tables, name)
	return nil
}

func newLookupService(repo LookupTableRepository, fetch queryFunc) *LookupServiceImpl {
	return &LookupServiceImpl{
		Repo:   repo,
		Config: &config.Config{LookupSyncDriver: "postgres", LookupSyncDSN: "postgres://test"},
		Logger: zap.NewNop(),
		fetch:  fetch,
	}
}

func TestSaveTableValidates(t *testing.T) {
	svc := newLookupService(newFakeLookupRepo(), nil)

	tests := []struct {
		name    string
		table   LookupTable
		wantErr bool
	}{
		{
			name:    "missing name",
			table:   LookupTable{Entries: map[string]string{"a": "b"}},
			wantErr: true,
		},
		{
			name:    "no entries and no source",
			table:   LookupTable{Name: "ports"},
			wantErr: true,
		},
		{
			name:    "source without query",
			table:   LookupTable{Name: "ports", Source: &SyncSource{}},
			wantErr: true,
		},
		{
			name:  "inline entries",
			table: LookupTable{Name: "ports", Entries: map[string]string{"CNSHA": "Shanghai"}},
		},
		{
			name:  "source only",
			table: LookupTable{Name: "ports", Source: &SyncSource{Query: "SELECT code, name FROM ports"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SaveTable(context.Background(), &tt.table)
			if (err != nil) != tt.wantErr {
				t.Errorf("SaveTable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSyncTableReplacesEntries(t *testing.T) {
	repo := newFakeLookupRepo()
	repo.tables["ports"] = &LookupTable{
		Name:    "ports",
		Entries: map[string]string{"OLD": "stale"},
		Source:  &SyncSource{Query: "SELECT code, name FROM ports"},
	}

	var gotDriver, gotDSN, gotQuery string
	svc := newLookupService(repo, func(_ context.Context, driver, dsn, query string) (map[string]string, error) {
		gotDriver, gotDSN, gotQuery = driver, dsn, query
		return map[string]string{"CNSHA": "Shanghai", "NLRTM": "Rotterdam"}, nil
	})

	if err := svc.SyncTable(context.Background(), "ports"); err != nil {
		t.Fatalf("SyncTable() error = %v", err)
	}

	if gotDriver != "postgres" || gotDSN != "postgres://test" {
		t.Errorf("defaults not applied: driver=%s dsn=%s", gotDriver, gotDSN)
	}
	if gotQuery != "SELECT code, name FROM ports" {
		t.Errorf("query = %q", gotQuery)
	}

	table := repo.tables["ports"]
	if len(table.Entries) != 2 || table.Entries["CNSHA"] != "Shanghai" {
		t.Errorf("entries = %v, want full replacement", table.Entries)
	}
	if _, ok := table.Entries["OLD"]; ok {
		t.Error("stale entry survived the sync")
	}
	if table.SyncedAt == nil {
		t.Error("synced_at not stamped")
	}
}

func TestSyncTableWithoutSourceFails(t *testing.T) {
	repo := newFakeLookupRepo()
	repo.tables["manual"] = &LookupTable{
		Name:    "manual",
		Entries: map[string]string{"a": "b"},
	}
	svc := newLookupService(repo, nil)

	if err := svc.SyncTable(context.Background(), "manual"); err == nil {
		t.Fatal("SyncTable() of sourceless table did not fail")
	}
}

func TestSyncAllCollectsPerTableFailures(t *testing.T) {
	repo := newFakeLookupRepo()
	repo.tables["good"] = &LookupTable{
		Name:   "good",
		Source: &SyncSource{Query: "SELECT k, v FROM good"},
	}
	repo.tables["bad"] = &LookupTable{
		Name:   "bad",
		Source: &SyncSource{Query: "SELECT k, v FROM bad"},
	}

	svc := newLookupService(repo, func(_ context.Context, _, _, query string) (map[string]string, error) {
		if query == "SELECT k, v FROM bad" {
			return nil, fmt.Errorf("connection refused")
		}
		return map[string]string{"k": "v"}, nil
	})

	report := svc.SyncAll(context.Background())
	if report.Synced != 1 || report.Failed != 1 {
		t.Errorf("report = %d synced / %d failed, want 1/1", report.Synced, report.Failed)
	}
	if _, ok := report.Errors["bad"]; !ok {
		t.Errorf("errors = %v, want entry for bad table", report.Errors)
	}
}

func TestTableReadThrough(t *testing.T) {
	repo := newFakeLookupRepo()
	repo.tables["carriers"] = &LookupTable{
		Name:    "carriers",
		Entries: map[string]string{"MAEU": "Maersk"},
	}
	svc := newLookupService(repo, nil)

	entries, ok := svc.Table(context.Background(), "carriers")
	if !ok || entries["MAEU"] != "Maersk" {
		t.Errorf("Table() = %v, %v", entries, ok)
	}

	if _, ok := svc.Table(context.Background(), "missing"); ok {
		t.Error("Table() of missing table reported ok")
	}
}
