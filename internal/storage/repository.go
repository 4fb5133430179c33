package storage

import (
	"context"

	"hh-vacancies-go/internal/models"
)

// Repository exposes the reports with one connection per call.
type Repository struct {
	pg *Postgres
}

func NewRepository(pg *Postgres) *Repository {
	return &Repository{pg: pg}
}

func (r *Repository) CountVacanciesPerEmployer(ctx context.Context) ([]models.EmployerVacancyCount, error) {
	var counts []models.EmployerVacancyCount
	err := r.pg.WithConn(ctx, func(db DBTX) error {
		var err error
		counts, err = NewQueries(db).CountVacanciesPerEmployer(ctx)
		return err
	})
	return counts, err
}

func (r *Repository) ListAllVacancies(ctx context.Context) ([]models.VacancyListing, error) {
	return r.listings(ctx, func(q *Queries) ([]models.VacancyListing, error) {
		return q.ListAllVacancies(ctx)
	})
}

func (r *Repository) AverageSalary(ctx context.Context) (float64, error) {
	var avg float64
	err := r.pg.WithConn(ctx, func(db DBTX) error {
		var err error
		avg, err = NewQueries(db).AverageSalary(ctx)
		return err
	})
	return avg, err
}

// VacanciesAboveAverage computes the average and filters on the same
// connection.
func (r *Repository) VacanciesAboveAverage(ctx context.Context) ([]models.VacancyListing, error) {
	return r.listings(ctx, func(q *Queries) ([]models.VacancyListing, error) {
		return q.VacanciesAboveAverage(ctx)
	})
}

func (r *Repository) VacanciesByKeyword(ctx context.Context, keyword string) ([]models.VacancyListing, error) {
	return r.listings(ctx, func(q *Queries) ([]models.VacancyListing, error) {
		return q.VacanciesByKeyword(ctx, keyword)
	})
}

func (r *Repository) listings(ctx context.Context, fn func(q *Queries) ([]models.VacancyListing, error)) ([]models.VacancyListing, error) {
	var listings []models.VacancyListing
	err := r.pg.WithConn(ctx, func(db DBTX) error {
		var err error
		listings, err = fn(NewQueries(db))
		return err
	})
	return listings, err
}
