package factory

import (
	"fmt"

	"NetFlowSond/internal/config"
	"NetFlowSond/internal/model"
)

// SinkFactory defines a function that builds one storage sink from the
// resolved storage configuration.
type SinkFactory func(cfg *config.StorageConfig) (model.Sink, error)

// registry holds the mapping of storage backend types to their factory functions.
var registry = make(map[string]SinkFactory)

// RegisterSink registers a new storage backend type with its factory function.
func RegisterSink(name string, factory SinkFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("storage backend '%s' already registered", name))
	}
	registry[name] = factory
}

// Create builds a sink for the configured backend type. Called once per
// probe, so every probe owns a sink instance of its own.
func Create(cfg *config.StorageConfig) (model.Sink, error) {
	factory, ok := registry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown storage backend: '%s'", cfg.Type)
	}
	return factory(cfg)
}
