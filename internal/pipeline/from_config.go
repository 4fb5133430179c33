package pipeline

import (
	"fmt"

	"hh-vacancies-go/internal/config"
	"hh-vacancies-go/internal/hh"
	"hh-vacancies-go/internal/storage"
	"hh-vacancies-go/pkg/httpclient"
)

// NewFromConfig wires the hh.ru client and the snapshot stores described by
// cfg to db. The JSON snapshot store is always on; the Supabase mirror only
// when both of its settings are present.
func NewFromConfig(cfg *config.Config, db Database) (*Pipeline, error) {
	httpClient := httpclient.NewHttpClient(cfg.API.RequestTimeout, cfg.API.UserAgent).
		WithRateLimit(cfg.API.RequestsPerMinute)
	client := hh.NewClient(httpClient, cfg.API.BaseURL, cfg.API.PerPage)

	stores := []storage.SnapshotStore{storage.NewJSONFileStore(cfg.Loader.SnapshotDir)}
	if cfg.MirrorEnabled() {
		mirror, err := storage.NewSupabaseStore(cfg.Mirror.SupabaseURL, cfg.Mirror.SupabaseKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize supabase mirror: %w", err)
		}
		stores = append(stores, mirror)
	}

	return New(client, db, cfg.Loader.EmployerIDs, stores...), nil
}
