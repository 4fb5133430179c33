package storage

import "hh-vacancies-go/internal/models"

// SnapshotStore receives the raw fetch results of a load cycle. Snapshots are
// an audit trail and are never read back.
type SnapshotStore interface {
	Name() string
	SaveEmployers(employers []models.Employer) error
	SaveVacancies(vacancies []models.Vacancy) error
}
