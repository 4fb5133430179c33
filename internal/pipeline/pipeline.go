// Package pipeline runs one load cycle: prepare the database, fetch the
// configured employers and their first vacancy page, write snapshots and load
// the records.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/models"
	"hh-vacancies-go/internal/storage"
)

// Fetcher is the remote side of a cycle, implemented by *hh.Client.
type Fetcher interface {
	FetchEmployers(ctx context.Context, ids []string) ([]models.Employer, error)
	FetchVacancyPage(ctx context.Context, employerID string) (int, []models.Vacancy, error)
}

// Database is the storage side of a cycle, implemented by *storage.Postgres.
type Database interface {
	Prepare(ctx context.Context) error
	WithConn(ctx context.Context, fn func(db storage.DBTX) error) error
}

// Pipeline fetches and loads sequentially. Run is safe to call again after a
// previous run has returned; Metrics may be called at any time.
type Pipeline struct {
	fetcher     Fetcher
	db          Database
	stores      []storage.SnapshotStore
	employerIDs []string

	mu      sync.RWMutex
	metrics Metrics
}

// Result is what a single run fetched and loaded.
type Result struct {
	RunID     string             `json:"run_id"`
	Employers []models.Employer  `json:"-"`
	Vacancies []models.Vacancy   `json:"-"`
	Found     map[string]int     `json:"found"`
	Report    storage.LoadReport `json:"report"`
	StartedAt time.Time          `json:"started_at"`
	Duration  time.Duration      `json:"duration"`
}

// TotalFound sums the remote totals over all requested employers.
func (r *Result) TotalFound() int {
	total := 0
	for _, found := range r.Found {
		total += found
	}
	return total
}

// FoundByCompany keys the remote totals by employer name, the same key the
// per-company count report uses. Employers sharing a name are summed.
func (r *Result) FoundByCompany() map[string]int {
	byName := make(map[string]int, len(r.Employers))
	for _, employer := range r.Employers {
		if found, ok := r.Found[employer.ID]; ok {
			byName[employer.Name] += found
		}
	}
	return byName
}

// Metrics accumulates over the lifetime of a Pipeline.
type Metrics struct {
	Runs              int64         `json:"runs"`
	FailedRuns        int64         `json:"failed_runs"`
	EmployersFetched  int64         `json:"employers_fetched"`
	VacanciesFetched  int64         `json:"vacancies_fetched"`
	VacanciesInserted int64         `json:"vacancies_inserted"`
	VacanciesOrphaned int64         `json:"vacancies_orphaned"`
	LastRunID         string        `json:"last_run_id,omitempty"`
	LastRunAt         time.Time     `json:"last_run_at"`
	LastDuration      time.Duration `json:"last_duration"`
	LastError         string        `json:"last_error,omitempty"`
}

// New creates a Pipeline for the given employer ids. stores may be empty.
func New(fetcher Fetcher, db Database, employerIDs []string, stores ...storage.SnapshotStore) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		db:          db,
		stores:      stores,
		employerIDs: employerIDs,
	}
}

// Run executes one cycle. Remote "no data" answers are not errors; storage
// failures and transport errors end the run. The partial Result is returned
// alongside an error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Found:     make(map[string]int, len(p.employerIDs)),
	}
	ctx = logger.WithLogger(ctx, map[string]interface{}{"run_id": result.RunID})

	logger.InfoLog(ctx, "starting load cycle for %d employers", len(p.employerIDs))

	err := p.run(ctx, result)
	result.Duration = time.Since(result.StartedAt)
	p.record(result, err)

	if err != nil {
		logger.ErrorLog(ctx, "load cycle failed", err)
		return result, err
	}

	logger.InfoLog(ctx, "load cycle completed in %v: %d/%d employers inserted, %d vacancies inserted, %d skipped, %d orphaned",
		result.Duration,
		result.Report.EmployersInserted, len(result.Employers),
		result.Report.VacanciesInserted, result.Report.VacanciesSkipped, result.Report.VacanciesOrphaned)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, result *Result) error {
	if err := p.db.Prepare(ctx); err != nil {
		return fmt.Errorf("failed to prepare database: %w", err)
	}

	employers, err := p.fetcher.FetchEmployers(ctx, p.employerIDs)
	result.Employers = employers
	if err != nil {
		return err
	}
	logger.InfoLog(ctx, "fetched %d of %d employers", len(employers), len(p.employerIDs))

	for _, id := range p.employerIDs {
		found, vacancies, err := p.fetcher.FetchVacancyPage(ctx, id)
		if err != nil {
			return err
		}
		result.Found[id] = found
		result.Vacancies = append(result.Vacancies, vacancies...)
		logger.DebugLog(ctx, "employer %s: %d vacancies on first page, %d found", id, len(vacancies), found)
	}

	p.saveSnapshots(ctx, result)

	return p.db.WithConn(ctx, func(db storage.DBTX) error {
		report, err := storage.NewLoader(db).Load(ctx, result.Employers, result.Vacancies)
		result.Report = report
		return err
	})
}

// saveSnapshots never fails the run; snapshots are an audit trail only.
func (p *Pipeline) saveSnapshots(ctx context.Context, result *Result) {
	for _, store := range p.stores {
		if err := store.SaveEmployers(result.Employers); err != nil {
			logger.WarnLog(ctx, "snapshot %s: %v", store.Name(), err)
			continue
		}
		if err := store.SaveVacancies(result.Vacancies); err != nil {
			logger.WarnLog(ctx, "snapshot %s: %v", store.Name(), err)
			continue
		}
		logger.DebugLog(ctx, "snapshot %s written", store.Name())
	}
}

func (p *Pipeline) record(result *Result, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.metrics.Runs++
	p.metrics.EmployersFetched += int64(len(result.Employers))
	p.metrics.VacanciesFetched += int64(len(result.Vacancies))
	p.metrics.VacanciesInserted += int64(result.Report.VacanciesInserted)
	p.metrics.VacanciesOrphaned += int64(result.Report.VacanciesOrphaned)
	p.metrics.LastRunID = result.RunID
	p.metrics.LastRunAt = result.StartedAt
	p.metrics.LastDuration = result.Duration
	p.metrics.LastError = ""
	if err != nil {
		p.metrics.FailedRuns++
		p.metrics.LastError = err.Error()
	}
}

// Metrics returns a copy of the accumulated counters.
func (p *Pipeline) Metrics() Metrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.metrics
}
