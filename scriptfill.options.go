package scriptfill

import (
	"time"

	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	store             DocumentStore
	rng               Rand
	placeholderFormat string
	defaultTemplate   string
	library           *ValueLibrary
	actions           *ActionLibrary
	now               func() time.Time
	logger            *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		store:             nil,
		rng:               nil,
		placeholderFormat: DefaultPlaceholderFormat,
		defaultTemplate:   DefaultTemplate,
		now:               time.Now,
		logger:            nil,
	}
}

// WithStore sets the document store used to persist engine state and presets.
// Default: a fresh MemoryStore (nothing survives the process)
func WithStore(store DocumentStore) Option {
	return func(c *engineConfig) {
		c.store = store
	}
}

// WithRand sets the randomness source for random-mode draws, actions and atmospheres.
// Default: the math/rand/v2 global source
func WithRand(rng Rand) Option {
	return func(c *engineConfig) {
		c.rng = rng
	}
}

// WithPlaceholderFormat sets the format used for unresolved markers.
// The format receives the marker name as its only argument.
// Default: "[自定义:%s]"
func WithPlaceholderFormat(format string) Option {
	return func(c *engineConfig) {
		if format != "" {
			c.placeholderFormat = format
		}
	}
}

// WithDefaultTemplate sets the active template used when no state has been persisted.
// Default: DefaultTemplate
func WithDefaultTemplate(template string) Option {
	return func(c *engineConfig) {
		c.defaultTemplate = template
	}
}

// WithLibrary sets the initial value library.
// Default: an empty library
func WithLibrary(library *ValueLibrary) Option {
	return func(c *engineConfig) {
		c.library = library
	}
}

// WithActionLibrary sets the initial action library.
// Default: DefaultActionLibrary()
func WithActionLibrary(actions *ActionLibrary) Option {
	return func(c *engineConfig) {
		c.actions = actions
	}
}

// WithClock sets the time source for preset timestamps.
// Default: time.Now
func WithClock(now func() time.Time) Option {
	return func(c *engineConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
