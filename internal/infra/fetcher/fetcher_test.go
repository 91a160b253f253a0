package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false // httptest servers bind to 127.0.0.1
	cfg.PerHostDelay = 0
	cfg.Timeout = 5 * time.Second
	return cfg
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CampaignRadarBot/1.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html><body>新規口座開設キャンペーン</body></html>`))
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig())
	body, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Contains(t, string(body), "新規口座開設キャンペーン")
}

func TestHTTPFetcher_Fetch_ServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig()
	f := NewHTTPFetcher(cfg)
	f.retryConfig.InitialDelay = 1 * time.Millisecond
	f.retryConfig.MaxDelay = 2 * time.Millisecond

	_, err := f.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
	// 5xx is retryable, so all attempts should be consumed.
	assert.Equal(t, f.retryConfig.MaxAttempts, calls)
}

func TestHTTPFetcher_Fetch_NotFoundNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig())
	_, err := f.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestHTTPFetcher_Fetch_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxBodySize = 1024
	f := NewHTTPFetcher(cfg)

	_, err := f.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	f := NewHTTPFetcher(testConfig())

	tests := []struct {
		name string
		url  string
	}{
		{"unsupported scheme", "ftp://example.com/feed"},
		{"file scheme", "file:///etc/passwd"},
		{"empty hostname", "http://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), tt.url)
			assert.ErrorIs(t, err, ErrInvalidURL)
		})
	}
}

func TestHTTPFetcher_Fetch_PrivateIPDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should have been blocked before reaching the server")
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.DenyPrivateIPs = true
	f := NewHTTPFetcher(cfg)

	_, err := f.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPrivateIP)
}

func TestHTTPFetcher_Fetch_RedirectLimit(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.MaxRedirects = 2
	f := NewHTTPFetcher(cfg)

	_, err := f.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestHTTPFetcher_Fetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	f := NewHTTPFetcher(testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled) || strings.Contains(err.Error(), "context canceled"))
}

func TestHTTPFetcher_PerHostDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.PerHostDelay = 50 * time.Millisecond
	f := NewHTTPFetcher(cfg)

	start := time.Now()
	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	// The second request to the same host must wait for the pacing interval.
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		denyPrivateIPs bool
		wantErr        error
	}{
		{"valid public https", "https://example.com/campaigns", false, nil},
		{"loopback denied", "http://127.0.0.1:8080/", true, ErrPrivateIP},
		{"loopback allowed when check disabled", "http://127.0.0.1:8080/", false, nil},
		{"bad scheme", "gopher://example.com", true, ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateURL(tt.url, tt.denyPrivateIPs)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"body size too small", func(c *Config) { c.MaxBodySize = 100 }, true},
		{"too many redirects", func(c *Config) { c.MaxRedirects = 11 }, true},
		{"negative delay", func(c *Config) { c.PerHostDelay = -1 }, true},
		{"empty user agent", func(c *Config) { c.UserAgent = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "30s")
	t.Setenv("FETCH_MAX_REDIRECTS", "not-a-number")

	cfg, warnings := LoadConfigFromEnv()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, DefaultConfig().MaxRedirects, cfg.MaxRedirects)
	assert.NotEmpty(t, warnings)
}
