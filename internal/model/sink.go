package model

// Sink is the storage abstraction decoded flow records are pushed through.
// Each probe owns exactly one sink instance; implementations do not need to
// be safe for concurrent use.
type Sink interface {
	// Connect opens the backend and provisions its storage structure via
	// InitSchema, so a fresh target works without manual setup.
	Connect() error

	// InitSchema creates the table, file or equivalent if it does not exist
	// yet. Calling it twice on the same target must not error or duplicate
	// schema objects.
	InitSchema() error

	// Insert persists one record. A failure drops that record only; the
	// caller logs the error and keeps ingesting.
	Insert(record *FlowRecord) error

	// Ping checks the backend is reachable without requiring Connect first.
	// Used by the offline configuration check.
	Ping() error

	// Close releases the backend connection.
	Close() error
}
