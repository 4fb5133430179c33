package models

import "encoding/json"

// Employer is a company profile as returned by GET /employers/{id}.
type Employer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"alternate_url"`

	// Raw holds the verbatim API object, written to snapshots as is.
	Raw json.RawMessage `json:"-"`
}

// EmployerRef is the short employer object embedded in a vacancy.
type EmployerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EmployerVacancyCount is one row of the per-company vacancy count.
type EmployerVacancyCount struct {
	Company        string `json:"company"`
	VacanciesCount int64  `json:"vacancies_count"`
}
