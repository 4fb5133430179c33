package models

import "encoding/json"

// Vacancy is a single listing from the /vacancies search.
type Vacancy struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Salary   *Salary     `json:"salary"`
	Employer EmployerRef `json:"employer"`
	URL      string      `json:"alternate_url"`

	Raw json.RawMessage `json:"-"`
}

// Salary is the optional salary object of a vacancy. A nil bound means the
// API did not send one; a zero bound is kept as zero.
type Salary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency,omitempty"`
	Gross    *bool  `json:"gross,omitempty"`
}

// SalaryBounds extracts the lower and upper bounds by presence, never by
// truthiness.
func (v Vacancy) SalaryBounds() (from, to *int) {
	if v.Salary == nil {
		return nil, nil
	}
	return v.Salary.From, v.Salary.To
}

// VacancyListing is a vacancy joined with its employer name.
type VacancyListing struct {
	Company    string `json:"company"`
	Vacancy    string `json:"vacancy"`
	SalaryFrom *int   `json:"salary_from"`
	SalaryTo   *int   `json:"salary_to"`
	URL        string `json:"url"`
}
