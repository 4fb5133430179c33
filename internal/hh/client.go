// Package hh fetches employers and vacancies from the public hh.ru API.
package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"hh-vacancies-go/internal/logger"
	"hh-vacancies-go/internal/models"
	"hh-vacancies-go/pkg/httpclient"
)

const (
	DefaultBaseURL = "https://api.hh.ru"
	DefaultPerPage = 100
)

// Client issues the two GET requests the loader needs. A non-200 answer is
// treated as "no data"; transport and decode errors are returned.
type Client struct {
	client  *httpclient.HttpClient
	baseURL string
	perPage int
}

// NewClient creates a Client. Empty baseURL and non-positive perPage fall
// back to the defaults.
func NewClient(client *httpclient.HttpClient, baseURL string, perPage int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		perPage: perPage,
	}
}

// vacanciesResponse mirrors the /vacancies search envelope. Items are kept
// raw so snapshots can store them verbatim.
type vacanciesResponse struct {
	Found int               `json:"found"`
	Pages int               `json:"pages"`
	Items []json.RawMessage `json:"items"`
}

// FetchEmployer returns the employer with the given id, or nil when the API
// does not answer 200.
func (c *Client) FetchEmployer(ctx context.Context, id string) (*models.Employer, error) {
	body, ok, err := c.get(ctx, c.baseURL+"/employers/"+url.PathEscape(id))
	if err != nil || !ok {
		return nil, err
	}

	var employer models.Employer
	if err := json.Unmarshal(body, &employer); err != nil {
		return nil, fmt.Errorf("failed to parse employer %s: %w", id, err)
	}
	employer.Raw = json.RawMessage(body)
	return &employer, nil
}

// FetchEmployers fetches each id in order and skips the ones the API does not
// return, so the result may be shorter than ids.
func (c *Client) FetchEmployers(ctx context.Context, ids []string) ([]models.Employer, error) {
	employers := make([]models.Employer, 0, len(ids))
	for _, id := range ids {
		employer, err := c.FetchEmployer(ctx, id)
		if err != nil {
			return employers, err
		}
		if employer == nil {
			logger.DebugLog(ctx, "employer %s not returned by API, skipping", id)
			continue
		}
		employers = append(employers, *employer)
	}
	return employers, nil
}

// FetchVacancyPage returns the first page of vacancies of an employer and the
// total the API reports, which may exceed len(items).
func (c *Client) FetchVacancyPage(ctx context.Context, employerID string) (int, []models.Vacancy, error) {
	params := url.Values{}
	params.Set("employer_id", employerID)
	params.Set("per_page", strconv.Itoa(c.perPage))
	params.Set("page", "0")

	body, ok, err := c.get(ctx, c.baseURL+"/vacancies?"+params.Encode())
	if err != nil || !ok {
		return 0, nil, err
	}

	var response vacanciesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, nil, fmt.Errorf("failed to parse vacancies of employer %s: %w", employerID, err)
	}

	vacancies := make([]models.Vacancy, 0, len(response.Items))
	for _, item := range response.Items {
		var vacancy models.Vacancy
		if err := json.Unmarshal(item, &vacancy); err != nil {
			return 0, nil, fmt.Errorf("failed to parse vacancy of employer %s: %w", employerID, err)
		}
		vacancy.Raw = item
		vacancies = append(vacancies, vacancy)
	}

	return response.Found, vacancies, nil
}

// get returns the body and true on 200. Any other status yields false and no
// error.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, bool, error) {
	resp, err := c.client.Get(ctx, rawURL)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.DebugLog(ctx, "GET %s returned status %d", rawURL, resp.StatusCode)
		return nil, false, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, true, nil
}
