package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"hh-vacancies-go/internal/models"
)

const (
	EmployersSnapshotFile = "companies.json"
	VacanciesSnapshotFile = "vacancies.json"
)

// JSONFileStore writes each snapshot as an indented JSON array of the API
// objects exactly as they were received.
type JSONFileStore struct {
	dir string
}

func NewJSONFileStore(dir string) *JSONFileStore {
	return &JSONFileStore{dir: dir}
}

func (s *JSONFileStore) Name() string {
	return "json:" + s.dir
}

func (s *JSONFileStore) SaveEmployers(employers []models.Employer) error {
	items := make([]json.RawMessage, 0, len(employers))
	for _, e := range employers {
		raw, err := rawOrMarshal(e.Raw, e)
		if err != nil {
			return fmt.Errorf("failed to encode employer %s: %w", e.ID, err)
		}
		items = append(items, raw)
	}
	return s.write(EmployersSnapshotFile, items)
}

func (s *JSONFileStore) SaveVacancies(vacancies []models.Vacancy) error {
	items := make([]json.RawMessage, 0, len(vacancies))
	for _, v := range vacancies {
		raw, err := rawOrMarshal(v.Raw, v)
		if err != nil {
			return fmt.Errorf("failed to encode vacancy %s: %w", v.ID, err)
		}
		items = append(items, raw)
	}
	return s.write(VacanciesSnapshotFile, items)
}

func (s *JSONFileStore) write(name string, items []json.RawMessage) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(items); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// rawOrMarshal prefers the verbatim payload; records built in code have none.
func rawOrMarshal(raw json.RawMessage, v any) (json.RawMessage, error) {
	if len(raw) > 0 {
		return raw, nil
	}
	return json.Marshal(v)
}
