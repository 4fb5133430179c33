package storage

import (
	"context"
	"fmt"

	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/models"
)

const (
	insertEmployerQuery = `
		INSERT INTO employers (employer_id, name, url)
		VALUES ($1, $2, $3)
		ON CONFLICT (employer_id) DO NOTHING`

	insertVacancyQuery = `
		INSERT INTO vacancies (vacancy_id, employer_id, name, salary_from, salary_to, url)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (vacancy_id) DO NOTHING`
)

// LoadReport counts what a Load did with each record.
type LoadReport struct {
	EmployersInserted int `json:"employers_inserted"`
	EmployersSkipped  int `json:"employers_skipped"`
	VacanciesInserted int `json:"vacancies_inserted"`
	VacanciesSkipped  int `json:"vacancies_skipped"`
	VacanciesOrphaned int `json:"vacancies_orphaned"`
}

// Loader upserts fetched records. An existing row always wins: conflicts are
// skipped, never updated.
type Loader struct {
	db DBTX
}

func NewLoader(db DBTX) *Loader {
	return &Loader{db: db}
}

// Load writes employers first and vacancies second. A vacancy is accepted
// only when its employer is part of the same Load call; others are counted
// as orphans and not inserted. Each statement commits on its own, so an
// error mid-way leaves the rows written so far in place.
func (l *Loader) Load(ctx context.Context, employers []models.Employer, vacancies []models.Vacancy) (LoadReport, error) {
	var report LoadReport

	known := make(map[string]struct{}, len(employers))
	for _, employer := range employers {
		inserted, err := l.insertEmployer(ctx, employer)
		if err != nil {
			return report, err
		}
		known[employer.ID] = struct{}{}
		if inserted {
			report.EmployersInserted++
		} else {
			report.EmployersSkipped++
		}
	}

	for _, vacancy := range vacancies {
		if _, ok := known[vacancy.Employer.ID]; !ok {
			logger.WarnLog(ctx, "vacancy %s references unknown employer %q, not loaded", vacancy.ID, vacancy.Employer.ID)
			report.VacanciesOrphaned++
			continue
		}
		inserted, err := l.insertVacancy(ctx, vacancy)
		if err != nil {
			return report, err
		}
		if inserted {
			report.VacanciesInserted++
		} else {
			report.VacanciesSkipped++
		}
	}

	return report, nil
}

func (l *Loader) insertEmployer(ctx context.Context, employer models.Employer) (bool, error) {
	tag, err := l.db.Exec(ctx, insertEmployerQuery, employer.ID, employer.Name, employer.URL)
	if err != nil {
		return false, fmt.Errorf("failed to insert employer %s: %w", employer.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (l *Loader) insertVacancy(ctx context.Context, vacancy models.Vacancy) (bool, error) {
	salaryFrom, salaryTo := vacancy.SalaryBounds()
	tag, err := l.db.Exec(ctx, insertVacancyQuery,
		vacancy.ID,
		vacancy.Employer.ID,
		vacancy.Name,
		salaryFrom,
		salaryTo,
		vacancy.URL,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert vacancy %s: %w", vacancy.ID, err)
	}
	return tag.RowsAffected() > 0, nil
}
