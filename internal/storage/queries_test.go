package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hh-vacancies-go/internal/models"
)

var listingColumns = []string{"company", "vacancy", "salary_from", "salary_to", "url"}

func TestCountVacanciesPerEmployer(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN vacancies v ON e.employer_id = v.employer_id")).
		WillReturnRows(pgxmock.NewRows([]string{"name", "count"}).
			AddRow("Acme", int64(1)).
			AddRow("Empty Corp", int64(0)))

	counts, err := NewQueries(mock).CountVacanciesPerEmployer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.EmployerVacancyCount{
		{Company: "Acme", VacanciesCount: 1},
		{Company: "Empty Corp", VacanciesCount: 0},
	}, counts)
}

func TestListAllVacancies(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN employers e ON v.employer_id = e.employer_id")).
		WillReturnRows(pgxmock.NewRows(listingColumns).
			AddRow("Acme", "Engineer", intPtr(1000), intPtr(2000), "https://hh.ru/vacancy/10").
			AddRow("Acme", "Intern", (*int)(nil), (*int)(nil), "https://hh.ru/vacancy/11"))

	listings, err := NewQueries(mock).ListAllVacancies(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Engineer", listings[0].Vacancy)
	require.NotNil(t, listings[0].SalaryFrom)
	assert.Equal(t, 1000, *listings[0].SalaryFrom)
	assert.Nil(t, listings[1].SalaryFrom)
	assert.Nil(t, listings[1].SalaryTo)
}

func TestAverageSalaryEmptyIsZero(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("COALESCE(AVG(COALESCE(salary_from, salary_to)), 0)")).
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(float64(0)))

	avg, err := NewQueries(mock).AverageSalary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestVacanciesAboveAverageUsesComputedAverage(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("AVG").
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(float64(1500)))
	mock.ExpectQuery(regexp.QuoteMeta("> $1::float8")).
		WithArgs(float64(1500)).
		WillReturnRows(pgxmock.NewRows(listingColumns).
			AddRow("Acme", "Lead", intPtr(3000), (*int)(nil), "https://hh.ru/vacancy/12"))

	listings, err := NewQueries(mock).VacanciesAboveAverage(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Lead", listings[0].Vacancy)
}

func TestVacanciesAboveAverageAverageFails(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("AVG").WillReturnError(errors.New("relation \"vacancies\" does not exist"))

	_, err := NewQueries(mock).VacanciesAboveAverage(context.Background())
	assert.ErrorContains(t, err, "average salary")
}

func TestVacanciesByKeywordPassesKeywordLiterally(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("strpos(lower(v.name), lower($1)) > 0")).
		WithArgs("50%_off").
		WillReturnRows(pgxmock.NewRows(listingColumns))

	listings, err := NewQueries(mock).VacanciesByKeyword(context.Background(), "50%_off")
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestQueriesWrapErrors(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("LEFT JOIN").WillReturnError(errors.New("timeout"))

	_, err := NewQueries(mock).CountVacanciesPerEmployer(context.Background())
	assert.ErrorContains(t, err, "failed to count vacancies: timeout")
}

func TestRepositoryOpensConnectionPerCall(t *testing.T) {
	mock := newMock(t)
	var dsns []string
	repo := NewRepository(NewPostgres("app-dsn", "", "hh_vacancies").WithConnector(mockConnector(mock, &dsns)))

	mock.ExpectQuery("AVG").WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(float64(42.5)))
	mock.ExpectClose()
	mock.ExpectQuery("strpos").
		WithArgs("python").
		WillReturnRows(pgxmock.NewRows(listingColumns))
	mock.ExpectClose()

	avg, err := repo.AverageSalary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42.5, avg)

	_, err = repo.VacanciesByKeyword(context.Background(), "python")
	require.NoError(t, err)

	assert.Equal(t, []string{"app-dsn", "app-dsn"}, dsns)
}
