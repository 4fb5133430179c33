package storage

import (
	"context"
	"fmt"
)

const (
	dropTablesQuery = `DROP TABLE IF EXISTS vacancies, employers CASCADE`

	createEmployersQuery = `
		CREATE TABLE IF NOT EXISTS employers (
			employer_id VARCHAR(20) PRIMARY KEY,
			name        VARCHAR(255) NOT NULL,
			url         VARCHAR(255)
		)`

	createVacanciesQuery = `
		CREATE TABLE IF NOT EXISTS vacancies (
			vacancy_id  VARCHAR(20) PRIMARY KEY,
			employer_id VARCHAR(20) NOT NULL REFERENCES employers (employer_id),
			name        VARCHAR(255) NOT NULL,
			salary_from INTEGER,
			salary_to   INTEGER,
			url         VARCHAR(255)
		)`

	createVacanciesEmployerIndexQuery = `
		CREATE INDEX IF NOT EXISTS vacancies_employer_id_idx ON vacancies (employer_id)`
)

// schemaStatements run in order; employers must exist before the foreign key
// on vacancies can be declared.
var schemaStatements = []string{
	createEmployersQuery,
	createVacanciesQuery,
	createVacanciesEmployerIndexQuery,
}

// ResetSchema drops both tables. A failure is returned as is: continuing on a
// half-dropped schema is not safe.
func ResetSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, dropTablesQuery); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return nil
}

// EnsureSchema creates the tables and index if they are missing.
func EnsureSchema(ctx context.Context, db DBTX) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
