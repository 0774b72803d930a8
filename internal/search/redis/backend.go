package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/catalogdash/internal/domain"
	"github.com/kailas-cloud/catalogdash/internal/metrics"
	"github.com/kailas-cloud/catalogdash/internal/search"
)

// Driver is the metrics label for this backend.
const Driver = "redis"

// jsonRootField is the field name FT.SEARCH uses for a whole JSON document.
const jsonRootField = "$"

// Compile-time check: Backend implements search.Backend.
var _ search.Backend = (*Backend)(nil)

// Config holds connection parameters for a Redis (or Valkey) instance with a search module.
type Config struct {
	Addrs    []string
	Username string
	Password string
	// KeyPrefix is stripped from document keys to form hit IDs.
	KeyPrefix string
	// HealthIndex is checked with FT.INFO by ClusterHealth; empty skips the check.
	HealthIndex string
}

// Backend implements search.Backend via rueidis and FT.SEARCH.
type Backend struct {
	client      rueidis.Client
	keyPrefix   string
	healthIndex string
}

// New creates a Redis backend via rueidis.
func New(cfg Config) (*Backend, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Backend{client: client, keyPrefix: cfg.KeyPrefix, healthIndex: cfg.HealthIndex}, nil
}

// Search runs FT.SEARCH <index> * and returns documents in reply order.
func (b *Backend) Search(ctx context.Context, q *search.Query) (res *search.Result, err error) {
	start := time.Now()
	defer func() { metrics.ObserveBackend(Driver, search.OpSearch, time.Since(start).Seconds(), err) }()

	args := []string{q.Index, "*"}
	if q.Size > 0 {
		args = append(args, "LIMIT", "0", strconv.Itoa(q.Size))
	}
	args = append(args, "DIALECT", "2")

	cmd := b.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := b.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &search.Error{Op: search.OpSearch, Err: err}
	}

	return b.parseSearchReply(raw)
}

// parseSearchReply decodes the RESP2 reply [total, key1, fields1, key2, fields2, ...].
func (b *Backend) parseSearchReply(raw []rueidis.RedisMessage) (*search.Result, error) {
	if len(raw) == 0 {
		return nil, &search.Error{Op: search.OpSearch, Err: fmt.Errorf("%w: empty reply", domain.ErrMalformedResponse)}
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, &search.Error{Op: search.OpSearch, Err: fmt.Errorf("%w: total: %w", domain.ErrMalformedResponse, err)}
	}

	out := &search.Result{Total: int(total), Hits: make([]search.Hit, 0, (len(raw)-1)/2)}
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			return nil, &search.Error{Op: search.OpSearch, Err: fmt.Errorf("%w: key: %w", domain.ErrMalformedResponse, err)}
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			return nil, &search.Error{Op: search.OpSearch, Err: fmt.Errorf("%w: fields: %w", domain.ErrMalformedResponse, err)}
		}

		out.Hits = append(out.Hits, search.Hit{
			ID:     strings.TrimPrefix(key, b.keyPrefix),
			Source: sourceFromFields(parseFieldPairs(fields)),
		})
	}
	return out, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// sourceFromFields returns the JSON document for JSON indexes, or a JSON object
// built from hash fields otherwise.
func sourceFromFields(fields map[string]string) json.RawMessage {
	if doc, ok := fields[jsonRootField]; ok {
		return json.RawMessage(doc)
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// ClusterHealth maps instance state onto cluster health: a reachable instance with the
// health index present is green, a reachable instance without it is yellow.
func (b *Backend) ClusterHealth(ctx context.Context) (status string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveBackend(Driver, search.OpHealth, time.Since(start).Seconds(), err) }()

	if err := b.Ping(ctx); err != nil {
		return "", err
	}
	if b.healthIndex == "" {
		return search.HealthGreen, nil
	}

	cmd := b.client.B().Arbitrary("FT.INFO").Args(b.healthIndex).Build()
	if err := b.client.Do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return search.HealthYellow, nil
		}
		return "", &search.Error{Op: search.OpHealth, Err: err}
	}
	return search.HealthGreen, nil
}

// Ping checks connectivity.
func (b *Backend) Ping(ctx context.Context) error {
	cmd := b.client.B().Ping().Build()
	if err := b.client.Do(ctx, cmd).Error(); err != nil {
		return &search.Error{Op: search.OpPing, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the instance responds or timeout expires.
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

// Close shuts down the client.
func (b *Backend) Close() {
	b.client.Close()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
