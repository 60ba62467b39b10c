package lightarchive

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Backend drivers.
const (
	driverRedis  = "redis"
	driverValkey = "valkey"
	driverMongo  = "mongo"
	driverSQLite = "sqlite"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string
	addrs    []string
	password string
	uri      string
	database string
	path     string

	keyPrefix       string
	defaultPageSize int
	maxPageSize     int
	weights         *Weights

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey stores archives in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverValkey
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis stores archives in a Redis instance with the JSON module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMongo stores archives in the archive_items collection of database.
func WithMongo(uri, database string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMongo
		c.uri = uri
		c.database = database
	})
}

// WithSQLite stores archives in a SQLite file. The schema is migrated on connect.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverSQLite
		c.path = path
	})
}

// WithKeyPrefix namespaces keys in Redis/Valkey. Default: "lightarchive:".
func WithKeyPrefix(p string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = p
	})
}

// WithPagination sets the default and maximum page sizes.
// Defaults: 20 and 100.
func WithPagination(defaultSize, maxSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = defaultSize
		c.maxPageSize = maxSize
	})
}

// WithRelatedWeights overrides the related-content scoring points.
func WithRelatedWeights(w Weights) Option {
	return optionFunc(func(c *clientConfig) {
		c.weights = &w
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
