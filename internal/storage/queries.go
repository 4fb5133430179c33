package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hh-vacancies-go/internal/models"
)

const (
	countVacanciesPerEmployerQuery = `
		SELECT e.name, COUNT(v.vacancy_id)
		FROM employers e
		LEFT JOIN vacancies v ON e.employer_id = v.employer_id
		GROUP BY e.name
		ORDER BY e.name`

	listingSelect = `
		SELECT e.name, v.name, v.salary_from, v.salary_to, v.url
		FROM vacancies v
		JOIN employers e ON v.employer_id = e.employer_id`

	listingOrder = `
		ORDER BY e.name, v.name, v.vacancy_id`

	listAllVacanciesQuery = listingSelect + listingOrder

	averageSalaryQuery = `
		SELECT COALESCE(AVG(COALESCE(salary_from, salary_to)), 0)::float8
		FROM vacancies
		WHERE salary_from IS NOT NULL OR salary_to IS NOT NULL`

	vacanciesAboveQuery = listingSelect + `
		WHERE COALESCE(v.salary_from, v.salary_to) > $1::float8` + listingOrder

	vacanciesByKeywordQuery = listingSelect + `
		WHERE strpos(lower(v.name), lower($1)) > 0` + listingOrder
)

// Queries runs the read-only reports over an explicit handle. Nothing is
// cached; every call reads the current tables.
type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

// CountVacanciesPerEmployer returns every employer with its number of stored
// vacancies, zero included. Rows are grouped by employer name, so two
// employers sharing a name are reported together.
func (q *Queries) CountVacanciesPerEmployer(ctx context.Context) ([]models.EmployerVacancyCount, error) {
	rows, err := q.db.Query(ctx, countVacanciesPerEmployerQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to count vacancies: %w", err)
	}
	defer rows.Close()

	var counts []models.EmployerVacancyCount
	for rows.Next() {
		var c models.EmployerVacancyCount
		if err := rows.Scan(&c.Company, &c.VacanciesCount); err != nil {
			return nil, fmt.Errorf("failed to scan vacancy count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return counts, nil
}

// ListAllVacancies returns every vacancy that has an employer row.
func (q *Queries) ListAllVacancies(ctx context.Context) ([]models.VacancyListing, error) {
	return q.listings(ctx, "list vacancies", listAllVacanciesQuery)
}

// AverageSalary averages the first present bound (from, else to) over the
// vacancies that have one. It is 0 when there are none.
func (q *Queries) AverageSalary(ctx context.Context) (float64, error) {
	var avg float64
	if err := q.db.QueryRow(ctx, averageSalaryQuery).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to compute average salary: %w", err)
	}
	return avg, nil
}

// VacanciesAboveAverage returns vacancies whose first present bound is
// strictly greater than the current average.
func (q *Queries) VacanciesAboveAverage(ctx context.Context) ([]models.VacancyListing, error) {
	avg, err := q.AverageSalary(ctx)
	if err != nil {
		return nil, err
	}
	return q.listings(ctx, "list vacancies above average", vacanciesAboveQuery, avg)
}

// VacanciesByKeyword returns vacancies whose name contains keyword, ignoring
// case. The keyword is matched literally.
func (q *Queries) VacanciesByKeyword(ctx context.Context, keyword string) ([]models.VacancyListing, error) {
	return q.listings(ctx, "search vacancies", vacanciesByKeywordQuery, keyword)
}

func (q *Queries) listings(ctx context.Context, op, query string, args ...any) ([]models.VacancyListing, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return scanListings(rows)
}

func scanListings(rows pgx.Rows) ([]models.VacancyListing, error) {
	defer rows.Close()

	var listings []models.VacancyListing
	for rows.Next() {
		var l models.VacancyListing
		if err := rows.Scan(&l.Company, &l.Vacancy, &l.SalaryFrom, &l.SalaryTo, &l.URL); err != nil {
			return nil, fmt.Errorf("failed to scan vacancy: %w", err)
		}
		listings = append(listings, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return listings, nil
}
