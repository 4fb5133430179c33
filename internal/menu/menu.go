// Package menu drives the interactive report loop over the stored vacancies.
package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"hh-vacancies-go/internal/models"
	"hh-vacancies-go/pkg/salary"
)

// Reports is the read side of the store, implemented by *storage.Repository.
type Reports interface {
	CountVacanciesPerEmployer(ctx context.Context) ([]models.EmployerVacancyCount, error)
	ListAllVacancies(ctx context.Context) ([]models.VacancyListing, error)
	AverageSalary(ctx context.Context) (float64, error)
	VacanciesAboveAverage(ctx context.Context) ([]models.VacancyListing, error)
	VacanciesByKeyword(ctx context.Context, keyword string) ([]models.VacancyListing, error)
}

const menuText = `
1. Companies and vacancy counts
2. All vacancies
3. Average salary
4. Vacancies with salary above average
5. Vacancies by keyword
0. Exit
`

// Menu reads choices line by line from in and writes reports to out.
type Menu struct {
	reports Reports
	in      *bufio.Scanner
	out     io.Writer

	// remote totals from the load cycle of this session, if any
	foundByCompany map[string]int
	totalFound     int
	haveFound      bool
}

func New(reports Reports, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		reports: reports,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// WithRemoteTotals attaches the "found" totals reported by the API during the
// current session. They are shown next to the stored counts.
func (m *Menu) WithRemoteTotals(byCompany map[string]int, total int) *Menu {
	m.foundByCompany = byCompany
	m.totalFound = total
	m.haveFound = true
	return m
}

// Run loops until the user picks 0 or input ends. A storage error ends the
// loop and is returned.
func (m *Menu) Run(ctx context.Context) error {
	for {
		fmt.Fprint(m.out, menuText)
		choice, ok := m.prompt("Choose an option: ")
		if !ok {
			return m.in.Err()
		}

		var err error
		switch choice {
		case "1":
			err = m.companies(ctx)
		case "2":
			err = m.allVacancies(ctx)
		case "3":
			err = m.averageSalary(ctx)
		case "4":
			err = m.listings(m.reports.VacanciesAboveAverage(ctx))
		case "5":
			keyword, ok := m.prompt("Enter a keyword: ")
			if !ok {
				return m.in.Err()
			}
			err = m.listings(m.reports.VacanciesByKeyword(ctx, keyword))
		case "0":
			return nil
		default:
			fmt.Fprintf(m.out, "Unknown option %q\n", choice)
		}
		if err != nil {
			return err
		}
	}
}

func (m *Menu) prompt(text string) (string, bool) {
	fmt.Fprint(m.out, text)
	if !m.in.Scan() {
		fmt.Fprintln(m.out)
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) companies(ctx context.Context) error {
	counts, err := m.reports.CountVacanciesPerEmployer(ctx)
	if err != nil {
		return err
	}
	for _, c := range counts {
		fmt.Fprintf(m.out, "Company: %s, vacancies: %d", c.Company, c.VacanciesCount)
		if found, ok := m.foundByCompany[c.Company]; ok {
			fmt.Fprintf(m.out, " (found on hh.ru: %d)", found)
		}
		fmt.Fprintln(m.out)
	}
	return nil
}

func (m *Menu) allVacancies(ctx context.Context) error {
	if err := m.listings(m.reports.ListAllVacancies(ctx)); err != nil {
		return err
	}
	if m.haveFound {
		fmt.Fprintf(m.out, "\nTotal vacancies found for all companies: %d\n", m.totalFound)
	}
	return nil
}

func (m *Menu) averageSalary(ctx context.Context) error {
	avg, err := m.reports.AverageSalary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Average salary: %.2f\n", avg)
	return nil
}

func (m *Menu) listings(listings []models.VacancyListing, err error) error {
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		fmt.Fprintln(m.out, "No vacancies found.")
		return nil
	}
	for _, l := range listings {
		fmt.Fprintln(m.out, FormatListing(l))
	}
	return nil
}

// FormatListing renders one vacancy row.
func FormatListing(l models.VacancyListing) string {
	return fmt.Sprintf("Company: %s, vacancy: %s, salary: %s, link: %s",
		l.Company, l.Vacancy, salary.Format(l.SalaryFrom, l.SalaryTo), l.URL)
}
