package catalogdash

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "elasticsearch" or "redis"
	addrs     []string
	username  string
	password  string
	keyPrefix string
	transport http.RoundTripper

	index            string
	fetchSize        int
	healthTimeout    time.Duration
	readinessTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithElasticsearch configures the client to read from an Elasticsearch cluster.
func WithElasticsearch(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverElasticsearch
		c.addrs = addrs
	})
}

// WithRedis configures the client to read from a Redis or Valkey search index.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBasicAuth sets backend credentials.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithKeyPrefix sets the key prefix stripped from Redis document keys.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithHTTPTransport overrides the Elasticsearch HTTP transport.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithIndex sets the product index. Default: "products".
func WithIndex(index string) Option {
	return optionFunc(func(c *clientConfig) {
		c.index = index
	})
}

// WithFetchSize sets the number of records fetched per dashboard. Default: 10.
func WithFetchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.fetchSize = n
	})
}

// WithHealthTimeout bounds each health probe. Default: 5s.
func WithHealthTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.healthTimeout = d
	})
}

// WithReadinessTimeout bounds the initial readiness wait in New. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
