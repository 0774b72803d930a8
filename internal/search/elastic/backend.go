package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/catalogdash/internal/domain"
	"github.com/kailas-cloud/catalogdash/internal/metrics"
	"github.com/kailas-cloud/catalogdash/internal/search"
)

// Driver is the metrics label for this backend.
const Driver = "elasticsearch"

// Compile-time check: Backend implements search.Backend.
var _ search.Backend = (*Backend)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	Addrs    []string
	Username string
	Password string
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Backend implements search.Backend via the official Elasticsearch client.
type Backend struct {
	client *elasticsearch.Client
}

// New creates an Elasticsearch backend. Retries are disabled: every call is exactly
// one outbound request.
func New(cfg Config) (*Backend, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    cfg.Transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Backend{client: client}, nil
}

type searchResponse struct {
	Hits *struct {
		Total json.RawMessage `json:"total"`
		Hits  []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a match-all query against q.Index and returns hits in backend order.
func (b *Backend) Search(ctx context.Context, q *search.Query) (res *search.Result, err error) {
	start := time.Now()
	defer func() { metrics.ObserveBackend(Driver, search.OpSearch, time.Since(start).Seconds(), err) }()

	opts := []func(*esapi.SearchRequest){
		b.client.Search.WithContext(ctx),
		b.client.Search.WithIndex(q.Index),
	}
	if q.Size > 0 {
		opts = append(opts, b.client.Search.WithSize(q.Size))
	}

	resp, err := b.client.Search(opts...)
	if err != nil {
		return nil, &search.Error{Op: search.OpSearch, Err: err}
	}
	defer drain(resp)

	if resp.IsError() {
		return nil, &search.Error{
			Op:  search.OpSearch,
			Err: fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrBackendStatus),
		}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &search.Error{Op: search.OpSearch, Err: fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)}
	}
	if parsed.Hits == nil {
		return nil, &search.Error{Op: search.OpSearch, Err: fmt.Errorf("%w: missing hits", domain.ErrMalformedResponse)}
	}

	out := &search.Result{
		Total: parseTotal(parsed.Hits.Total, len(parsed.Hits.Hits)),
		Hits:  make([]search.Hit, 0, len(parsed.Hits.Hits)),
	}
	for _, h := range parsed.Hits.Hits {
		out.Hits = append(out.Hits, search.Hit{ID: h.ID, Source: h.Source})
	}
	return out, nil
}

// parseTotal accepts both {"value": N} and a bare N; falls back to the hit count.
func parseTotal(raw json.RawMessage, fallback int) int {
	if len(raw) == 0 {
		return fallback
	}
	var obj struct {
		Value int `json:"value"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Value
	}
	var n int
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	return fallback
}

// ClusterHealth returns the cluster status string reported by _cluster/health.
func (b *Backend) ClusterHealth(ctx context.Context) (status string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveBackend(Driver, search.OpHealth, time.Since(start).Seconds(), err) }()

	resp, err := b.client.Cluster.Health(b.client.Cluster.Health.WithContext(ctx))
	if err != nil {
		return "", &search.Error{Op: search.OpHealth, Err: err}
	}
	defer drain(resp)

	if resp.IsError() {
		return "", &search.Error{
			Op:  search.OpHealth,
			Err: fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrBackendStatus),
		}
	}

	var parsed struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &search.Error{Op: search.OpHealth, Err: fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)}
	}
	return parsed.Status, nil
}

// Ping checks connectivity.
func (b *Backend) Ping(ctx context.Context) error {
	resp, err := b.client.Ping(b.client.Ping.WithContext(ctx))
	if err != nil {
		return &search.Error{Op: search.OpPing, Err: err}
	}
	defer drain(resp)

	if resp.IsError() {
		return &search.Error{Op: search.OpPing, Err: fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrBackendStatus)}
	}
	return nil
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (b *Backend) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for search backend: %w", ctx.Err())
		case <-ticker.C:
			if err := b.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close is a no-op for the HTTP-based client.
func (b *Backend) Close() {}

func drain(resp *esapi.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
