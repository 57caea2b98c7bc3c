package lookupsync

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-docmap/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type LookupService interface {
	SaveTable(ctx context.Context, table *LookupTable) error
	GetTable(ctx context.Context, name string) (*LookupTable, error)
	ListTables(ctx context.Context) ([]LookupTable, error)
	DeleteTable(ctx context.Context, name string) error

	// SyncTable refreshes one table's entries from its SQL source
	SyncTable(ctx context.Context, name string) error
	// SyncAll refreshes every table that has a source; per-table failures
	// are collected, not fatal
	SyncAll(ctx context.Context) *SyncReport

	// Table satisfies the transform lookup source contract
	Table(ctx context.Context, name string) (map[string]string, bool)

	// StartScheduler begins periodic syncing when a schedule is configured
	StartScheduler() error
	StopScheduler()
}

// queryFunc fetches key/value pairs from an external SQL database; swapped
// out in tests
type queryFunc func(ctx context.Context, driver, dsn, query string) (map[string]string, error)

type LookupServiceImpl struct {
	Repo    LookupTableRepository
	Config  *config.Config
	Logger  *zap.Logger
	fetch   queryFunc
	cronSrv *cron.Cron
}

func NewLookupService(repo LookupTableRepository, cfg *config.Config, logger *zap.Logger) LookupService {
	return &LookupServiceImpl{
		Repo:   repo,
		Config: cfg,
		Logger: logger,
		fetch:  querySQL,
	}
}

func (s *LookupServiceImpl) SaveTable(ctx context.Context, table *LookupTable) error {
	if err := table.Validate(); err != nil {
		return err
	}
	if table.Entries == nil {
		table.Entries = map[string]string{}
	}
	return s.Repo.Upsert(ctx, table)
}

func (s *LookupServiceImpl) GetTable(ctx context.Context, name string) (*LookupTable, error) {
	return s.Repo.GetByName(ctx, name)
}

func (s *LookupServiceImpl) ListTables(ctx context.Context) ([]LookupTable, error) {
	return s.Repo.List(ctx)
}

func (s *LookupServiceImpl) DeleteTable(ctx context.Context, name string) error {
	return s.Repo.Delete(ctx, name)
}

func (s *LookupServiceImpl) SyncTable(ctx context.Context, name string) error {
	table, err := s.Repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if table.Source == nil {
		return fmt.Errorf("lookup table %q has no sync source", name)
	}
	return s.syncOne(ctx, table)
}

func (s *LookupServiceImpl) SyncAll(ctx context.Context) *SyncReport {
	report := &SyncReport{Errors: map[string]string{}}

	tables, err := s.Repo.ListSyncable(ctx)
	if err != nil {
		s.Logger.Error("failed to list syncable lookup tables", zap.Error(err))
		report.Errors["_list"] = err.Error()
		report.Failed++
		return report
	}

	for i := range tables {
		if err := s.syncOne(ctx, &tables[i]); err != nil {
			s.Logger.Error("lookup table sync failed",
				zap.String("table", tables[i].Name), zap.Error(err))
			report.Errors[tables[i].Name] = err.Error()
			report.Failed++
			continue
		}
		report.Synced++
	}
	return report
}

func (s *LookupServiceImpl) syncOne(ctx context.Context, table *LookupTable) error {
	driver := table.Source.Driver
	if driver == "" {
		driver = s.Config.LookupSyncDriver
	}
	dsn := table.Source.DSN
	if dsn == "" {
		dsn = s.Config.LookupSyncDSN
	}
	if dsn == "" {
		return fmt.Errorf("no DSN configured for lookup table %q", table.Name)
	}

	entries, err := s.fetch(ctx, driver, dsn, table.Source.Query)
	if err != nil {
		return err
	}
	if err := s.Repo.ReplaceEntries(ctx, table.Name, entries, time.Now()); err != nil {
		return err
	}

	s.Logger.Info("lookup table synced",
		zap.String("table", table.Name),
		zap.Int("entries", len(entries)),
	)
	return nil
}

func (s *LookupServiceImpl) Table(ctx context.Context, name string) (map[string]string, bool) {
	table, err := s.Repo.GetByName(ctx, name)
	if err != nil {
		return nil, false
	}
	return table.Entries, true
}

// StartScheduler registers the periodic sync when a schedule is configured
func (s *LookupServiceImpl) StartScheduler() error {
	if s.Config.LookupSyncSchedule == "" {
		return nil
	}
	s.cronSrv = cron.New()
	_, err := s.cronSrv.AddFunc(s.Config.LookupSyncSchedule, func() {
		s.SyncAll(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule lookup sync: %w", err)
	}
	s.cronSrv.Start()
	s.Logger.Info("lookup sync scheduler started",
		zap.String("schedule", s.Config.LookupSyncSchedule))
	return nil
}

func (s *LookupServiceImpl) StopScheduler() {
	if s.cronSrv != nil {
		ctx := s.cronSrv.Stop()
		<-ctx.Done()
	}
}

// querySQL pulls the two-column result of the source query into a map
func querySQL(ctx context.Context, driver, dsn, query string) (map[string]string, error) {
	if driver == "postgresql" {
		driver = "postgres"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute sync query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(columns) != 2 {
		return nil, fmt.Errorf("sync query must return 2 columns, got %d", len(columns))
	}

	entries := map[string]string{}
	for rows.Next() {
		var key, value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if key.Valid {
			entries[key.String] = value.String
		}
	}
	return entries, rows.Err()
}
