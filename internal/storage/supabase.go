package storage

import (
	"fmt"

	supabase "github.com/nedpals/supabase-go"

	"hh-vacancies-go/internal/models"
)

// SupabaseStore mirrors the normalized rows of a load cycle into Supabase
// tables named employers and vacancies.
type SupabaseStore struct {
	client *supabase.Client
}

type employerRow struct {
	EmployerID string `json:"employer_id"`
	Name       string `json:"name"`
	URL        string `json:"url"`
}

type vacancyRow struct {
	VacancyID  string `json:"vacancy_id"`
	EmployerID string `json:"employer_id"`
	Name       string `json:"name"`
	SalaryFrom *int   `json:"salary_from"`
	SalaryTo   *int   `json:"salary_to"`
	URL        string `json:"url"`
}

// NewSupabaseStore creates a SupabaseStore for the given project URL and key.
func NewSupabaseStore(supabaseURL, supabaseKey string) (*SupabaseStore, error) {
	if supabaseURL == "" || supabaseKey == "" {
		return nil, fmt.Errorf("supabase URL and key must both be provided")
	}

	client := supabase.CreateClient(supabaseURL, supabaseKey)
	return &SupabaseStore{client: client}, nil
}

func (s *SupabaseStore) Name() string {
	return "supabase"
}

func (s *SupabaseStore) SaveEmployers(employers []models.Employer) error {
	if len(employers) == 0 {
		return nil
	}

	rows := make([]employerRow, 0, len(employers))
	for _, e := range employers {
		rows = append(rows, employerRow{EmployerID: e.ID, Name: e.Name, URL: e.URL})
	}

	var results []employerRow
	if err := s.client.DB.From("employers").Insert(rows).Execute(&results); err != nil {
		return fmt.Errorf("failed to mirror employers: %w", err)
	}
	return nil
}

func (s *SupabaseStore) SaveVacancies(vacancies []models.Vacancy) error {
	if len(vacancies) == 0 {
		return nil
	}

	rows := make([]vacancyRow, 0, len(vacancies))
	for _, v := range vacancies {
		from, to := v.SalaryBounds()
		rows = append(rows, vacancyRow{
			VacancyID:  v.ID,
			EmployerID: v.Employer.ID,
			Name:       v.Name,
			SalaryFrom: from,
			SalaryTo:   to,
			URL:        v.URL,
		})
	}

	var results []vacancyRow
	if err := s.client.DB.From("vacancies").Insert(rows).Execute(&results); err != nil {
		return fmt.Errorf("failed to mirror vacancies: %w", err)
	}
	return nil
}
