package recordsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"campaign-radar/internal/domain/entity"
	"campaign-radar/internal/observability/metrics"
	"campaign-radar/internal/pkg/config"
	"campaign-radar/internal/resilience/circuitbreaker"
	"campaign-radar/internal/resilience/retry"
)

// Config holds record store connection settings.
type Config struct {
	// Enabled toggles syncing without code changes. When false the
	// factory returns a NoOpSyncer.
	Enabled bool

	// BaseURL is the record store API root, e.g.
	// "https://records.example.com/api/v1".
	BaseURL string

	// Token is the bearer token for the store API. Empty disables auth.
	Token string

	// Timeout bounds a single API call.
	// Default: 10s
	Timeout time.Duration
}

// DefaultConfig returns default record sync settings. Sync is off until
// a base URL is configured.
func DefaultConfig() Config {
	return Config{Timeout: 10 * time.Second}
}

// LoadConfigFromEnv loads record sync settings.
//
// Environment variables:
//   - RECORD_SYNC_URL: API root; empty leaves sync disabled
//   - RECORD_SYNC_TOKEN: bearer token (optional)
//   - RECORD_SYNC_TIMEOUT: duration string (default: 10s)
func LoadConfigFromEnv() (Config, []string) {
	cfg := DefaultConfig()
	var warnings []string

	cfg.BaseURL = config.LoadEnvString("RECORD_SYNC_URL", "")
	cfg.Token = config.LoadEnvString("RECORD_SYNC_TOKEN", "")
	cfg.Enabled = cfg.BaseURL != ""

	res := config.LoadEnvDuration("RECORD_SYNC_TIMEOUT", cfg.Timeout, config.ValidatePositiveDuration)
	cfg.Timeout = res.Value.(time.Duration)
	warnings = append(warnings, res.Warnings...)

	return cfg, warnings
}

// New returns an HTTPSyncer when sync is enabled, a NoOpSyncer otherwise.
func New(cfg Config) RecordSyncer {
	if !cfg.Enabled || cfg.BaseURL == "" {
		slog.Info("record sync not configured, skipping upserts")
		return NewNoOpSyncer()
	}
	return NewHTTPSyncer(cfg)
}

// HTTPSyncer talks to the record store's REST API: records are looked
// up by external_id, then created or updated; archival flips the stored
// status to expired.
//
// Thread safety: HTTPSyncer is safe for concurrent use.
type HTTPSyncer struct {
	config         Config
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewHTTPSyncer creates an HTTPSyncer with the given configuration.
func NewHTTPSyncer(cfg Config) *HTTPSyncer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &HTTPSyncer{
		config:         cfg,
		client:         &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: circuitbreaker.New(circuitbreaker.RecordSyncConfig()),
		retryConfig:    retry.RecordSyncConfig(),
	}
}

// storeRecord is the record store's wire representation.
type storeRecord struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Provider   string `json:"provider"`
	Category   string `json:"category,omitempty"`
	RewardType string `json:"reward_type,omitempty"`
	RewardVal  string `json:"reward_value,omitempty"`
	Deadline   string `json:"deadline,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status,omitempty"`
}

type queryResponse struct {
	Items []storeRecord `json:"items"`
}

// Upsert creates or updates the store record matching the campaign's
// external_id.
func (s *HTTPSyncer) Upsert(ctx context.Context, record entity.CampaignRecord) error {
	err := s.execute(ctx, func() error {
		existing, err := s.findByExternalID(ctx, record.ExternalID)
		if err != nil {
			return err
		}

		body := storeRecord{
			Name:       record.Name,
			Provider:   record.Provider,
			Category:   record.Category,
			RewardType: record.RewardType,
			RewardVal:  record.RewardValue,
			SourceURL:  record.SourceURL,
			ExternalID: record.ExternalID,
		}
		if record.Deadline != nil {
			body.Deadline = record.Deadline.String()
		}

		if existing == nil {
			return s.call(ctx, http.MethodPost, s.config.BaseURL+"/records", body)
		}
		return s.call(ctx, http.MethodPut, s.config.BaseURL+"/records/"+url.PathEscape(existing.ID), body)
	})

	metrics.RecordSync("upsert", err == nil)
	return err
}

// Archive marks the store record for externalID as expired. An unknown
// external_id is skipped silently, matching the store's idempotent
// archive semantics.
func (s *HTTPSyncer) Archive(ctx context.Context, externalID string) error {
	err := s.execute(ctx, func() error {
		existing, err := s.findByExternalID(ctx, externalID)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		return s.call(ctx, http.MethodPost,
			s.config.BaseURL+"/records/"+url.PathEscape(existing.ID)+"/archive", nil)
	})

	metrics.RecordSync("archive", err == nil)
	return err
}

// execute wraps one store operation with retry and circuit breaker.
func (s *HTTPSyncer) execute(ctx context.Context, fn func() error) error {
	return retry.WithBackoff(ctx, s.retryConfig, func() error {
		_, err := s.circuitBreaker.Execute(func() (interface{}, error) {
			return nil, fn()
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("record sync circuit breaker open, request rejected",
				slog.String("service", "record-sync"),
				slog.String("state", s.circuitBreaker.State().String()))
		}
		return err
	})
}

// findByExternalID queries the store for the record with the given
// external_id. Returns nil when the store has none.
func (s *HTTPSyncer) findByExternalID(ctx context.Context, externalID string) (*storeRecord, error) {
	endpoint := fmt.Sprintf("%s/records?external_id=%s&limit=1",
		s.config.BaseURL, url.QueryEscape(externalID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create query request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query record store: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, nil
	}
	return &result.Items[0], nil
}

// call issues one write request to the store.
func (s *HTTPSyncer) call(ctx context.Context, method, endpoint string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal record payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("record store %s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &retry.HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return nil
}

func (s *HTTPSyncer) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.Token)
	}
}
