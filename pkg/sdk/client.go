package catalogdash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/catalogdash/internal/domain/chart"
	domproduct "github.com/kailas-cloud/catalogdash/internal/domain/product"
	"github.com/kailas-cloud/catalogdash/internal/domain/summary"
	productrepo "github.com/kailas-cloud/catalogdash/internal/repository/product"
	"github.com/kailas-cloud/catalogdash/internal/search"
	"github.com/kailas-cloud/catalogdash/internal/search/elastic"
	searchRedis "github.com/kailas-cloud/catalogdash/internal/search/redis"
	dashboarduc "github.com/kailas-cloud/catalogdash/internal/usecase/dashboard"
	healthuc "github.com/kailas-cloud/catalogdash/internal/usecase/health"
)

const (
	driverElasticsearch = "elasticsearch"
	driverRedis         = "redis"

	defaultIndex            = "products"
	defaultFetchSize        = 10
	defaultReadinessTimeout = 10 * time.Second
)

type (
	// Product is one catalog record. Price and StockQuantity may be invalid.
	Product = domproduct.Record
	// Dashboard is a summary plus its chart series.
	Dashboard = dashboarduc.Dashboard
	// Summary is the statistical reduction of a record set.
	Summary = summary.Summary
	// Series is one chart-ready dataset.
	Series = chart.Series
)

// HealthStatus is the normalized backend health: "healthy", "degraded" or "unreachable".
type HealthStatus struct {
	Status string
}

// Internal interfaces for substitution in tests.
type productFetcher interface {
	Fetch(ctx context.Context) ([]domproduct.Record, error)
}

type dashboardSession interface {
	Refresh(ctx context.Context) (dashboarduc.Dashboard, error)
	Latest() dashboarduc.Dashboard
}

type healthProber interface {
	Probe(ctx context.Context) healthuc.Status
}

// Client is the catalogdash SDK entry point. It is safe for concurrent use; concurrent
// Dashboard calls follow last-started-wins.
type Client struct {
	backend  search.Backend
	products productFetcher
	session  dashboardSession
	health   healthProber
	obs      *observer
}

// New creates a Client and waits for the backend to answer.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		index:            defaultIndex,
		fetchSize:        defaultFetchSize,
		healthTimeout:    healthuc.DefaultTimeout,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("catalogdash: backend address required (use WithElasticsearch or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	backend, err := createBackend(cfg)
	if err != nil {
		return nil, err
	}

	if err := backend.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		backend.Close()
		return nil, fmt.Errorf("catalogdash: backend not ready: %w", err)
	}

	return wireClient(backend, cfg, obs), nil
}

func createBackend(cfg *clientConfig) (search.Backend, error) {
	switch cfg.driver {
	case driverElasticsearch:
		b, err := elastic.New(elastic.Config{
			Addrs:     cfg.addrs,
			Username:  cfg.username,
			Password:  cfg.password,
			Transport: cfg.transport,
		})
		if err != nil {
			return nil, fmt.Errorf("catalogdash: create elasticsearch backend: %w", err)
		}
		return b, nil
	case driverRedis:
		b, err := searchRedis.New(searchRedis.Config{
			Addrs:       cfg.addrs,
			Username:    cfg.username,
			Password:    cfg.password,
			KeyPrefix:   cfg.keyPrefix,
			HealthIndex: cfg.index,
		})
		if err != nil {
			return nil, fmt.Errorf("catalogdash: create redis backend: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("catalogdash: unknown driver %q", cfg.driver)
	}
}

func wireClient(backend search.Backend, cfg *clientConfig, obs *observer) *Client {
	products := productrepo.New(backend, cfg.index, cfg.fetchSize)
	return &Client{
		backend:  backend,
		products: products,
		session:  dashboarduc.NewSession(dashboarduc.New(products)),
		health:   healthuc.New(backend, cfg.healthTimeout, nil),
		obs:      obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.backend != nil {
		c.backend.Close()
	}
}

// Products fetches the current product records in backend order.
func (c *Client) Products(ctx context.Context) (_ []Product, err error) {
	start := time.Now()
	defer func() { c.obs.observe("products", start, err) }()

	return c.products.Fetch(ctx)
}

// Dashboard fetches records and builds a fresh dashboard. On ErrFetchFailed the
// previous dashboard stays available through Latest.
func (c *Client) Dashboard(ctx context.Context) (_ Dashboard, err error) {
	start := time.Now()
	defer func() { c.obs.observe("dashboard", start, err) }()

	return c.session.Refresh(ctx)
}

// Latest returns the last successfully built dashboard, or an empty one.
func (c *Client) Latest() Dashboard {
	return c.session.Latest()
}

// Health probes the backend. It never fails; problems surface as "unreachable".
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	st := c.health.Probe(ctx)
	c.obs.record("health", start, healthOutcome(st.State), nil)
	return HealthStatus{Status: string(st.State)}
}
