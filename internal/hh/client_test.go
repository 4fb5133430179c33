package hh

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hh-vacancies-go/pkg/httpclient"
)

type fakeAPI struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (f *fakeAPI) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/employers/1":
		w.Write([]byte(`{"id":"1","name":"Acme","alternate_url":"https://hh.ru/employer/1","open_vacancies":3}`))
	case "/employers/2":
		w.Write([]byte(`{"id":"2","name":"Globex","alternate_url":"https://hh.ru/employer/2"}`))
	case "/employers/broken":
		w.Write([]byte(`{"id":`))
	case "/vacancies":
		switch r.URL.Query().Get("employer_id") {
		case "1":
			w.Write([]byte(`{
				"found": 250,
				"pages": 3,
				"items": [
					{"id":"10","name":"Engineer","employer":{"id":"1","name":"Acme"},
					 "salary":{"from":1000,"to":2000,"currency":"RUR"},"alternate_url":"https://hh.ru/vacancy/10"},
					{"id":"11","name":"Intern","employer":{"id":"1","name":"Acme"},
					 "salary":{"from":0,"to":null},"alternate_url":"https://hh.ru/vacancy/11"},
					{"id":"12","name":"Manager","employer":{"id":"1","name":"Acme"},
					 "salary":null,"alternate_url":"https://hh.ru/vacancy/12"}
				]
			}`))
		case "2":
			w.Write([]byte(`{"found":0,"pages":0,"items":[]}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"errors":[{"type":"bad_argument"}]}`))
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errors":[{"type":"not_found"}]}`))
	}
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	hc := httpclient.NewHttpClient(5*time.Second, "hh-vacancies-go-test/1.0")
	return NewClient(hc, srv.URL+"/", 100), api
}

func TestFetchEmployer(t *testing.T) {
	client, api := newTestClient(t)

	employer, err := client.FetchEmployer(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, employer)

	assert.Equal(t, "1", employer.ID)
	assert.Equal(t, "Acme", employer.Name)
	assert.Equal(t, "https://hh.ru/employer/1", employer.URL)
	assert.JSONEq(t, `{"id":"1","name":"Acme","alternate_url":"https://hh.ru/employer/1","open_vacancies":3}`, string(employer.Raw))

	requests := api.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "hh-vacancies-go-test/1.0", requests[0].Header.Get("HH-User-Agent"))
	assert.Equal(t, "application/json", requests[0].Header.Get("Accept"))
}

func TestFetchEmployerNotFoundIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t)

	employer, err := client.FetchEmployer(context.Background(), "404")
	assert.NoError(t, err)
	assert.Nil(t, employer)
}

func TestFetchEmployerDecodeError(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.FetchEmployer(context.Background(), "broken")
	assert.Error(t, err)
}

func TestFetchEmployersKeepsOrderAndSkipsMissing(t *testing.T) {
	client, api := newTestClient(t)

	employers, err := client.FetchEmployers(context.Background(), []string{"2", "missing", "1"})
	require.NoError(t, err)

	require.Len(t, employers, 2)
	assert.Equal(t, "2", employers[0].ID)
	assert.Equal(t, "1", employers[1].ID)
	assert.Len(t, api.Requests(), 3, "one request per id")
}

func TestFetchVacancyPage(t *testing.T) {
	client, api := newTestClient(t)

	found, vacancies, err := client.FetchVacancyPage(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, 250, found, "found is the remote total, not the page size")
	require.Len(t, vacancies, 3)

	engineer := vacancies[0]
	assert.Equal(t, "10", engineer.ID)
	assert.Equal(t, "1", engineer.Employer.ID)
	assert.Equal(t, "https://hh.ru/vacancy/10", engineer.URL)
	from, to := engineer.SalaryBounds()
	require.NotNil(t, from)
	require.NotNil(t, to)
	assert.Equal(t, 1000, *from)
	assert.Equal(t, 2000, *to)

	from, to = vacancies[1].SalaryBounds()
	require.NotNil(t, from, "zero lower bound must survive decoding")
	assert.Equal(t, 0, *from)
	assert.Nil(t, to)

	from, to = vacancies[2].SalaryBounds()
	assert.Nil(t, from)
	assert.Nil(t, to)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(vacancies[0].Raw, &raw))
	assert.Equal(t, "Engineer", raw["name"])

	query := api.Requests()[0].URL.Query()
	assert.Equal(t, "1", query.Get("employer_id"))
	assert.Equal(t, "100", query.Get("per_page"))
	assert.Equal(t, "0", query.Get("page"))
}

func TestFetchVacancyPageEmpty(t *testing.T) {
	client, _ := newTestClient(t)

	found, vacancies, err := client.FetchVacancyPage(context.Background(), "2")
	require.NoError(t, err)
	assert.Zero(t, found)
	assert.Empty(t, vacancies)
}

func TestFetchVacancyPageNonSuccess(t *testing.T) {
	client, _ := newTestClient(t)

	found, vacancies, err := client.FetchVacancyPage(context.Background(), "999")
	assert.NoError(t, err)
	assert.Zero(t, found)
	assert.Empty(t, vacancies)
}

func TestNetworkErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := NewClient(httpclient.NewHttpClient(time.Second, ""), baseURL, 0)

	_, err := client.FetchEmployer(context.Background(), "1")
	assert.Error(t, err)

	_, _, err = client.FetchVacancyPage(context.Background(), "1")
	assert.Error(t, err)
}
