package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/hupe1980/vecflow/execution"
	"github.com/hupe1980/vecflow/physical"
)

var (
	// ErrTableExists is returned when registering a name that is taken.
	ErrTableExists = errors.New("table already exists")

	// ErrTableNotFound is returned when a table name is unknown.
	ErrTableNotFound = errors.New("table not found")
)

// SessionContext is a shareable handle bundling configuration, runtime
// resources and registered tables.
type SessionContext struct {
	id      string
	config  execution.SessionConfig
	runtime *execution.RuntimeEnv
	logger  *slog.Logger

	mu     sync.RWMutex
	tables map[string]TableProvider
}

// NewSessionContextWithConfig creates a context from explicit parts.
// A nil runtime uses execution.DefaultRuntimeEnv, a nil logger slog.Default().
func NewSessionContextWithConfig(cfg execution.SessionConfig, rt *execution.RuntimeEnv, logger *slog.Logger) *SessionContext {
	if rt == nil {
		rt = execution.DefaultRuntimeEnv()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionContext{
		id:      uuid.NewString(),
		config:  cfg,
		runtime: rt,
		logger:  logger,
		tables:  make(map[string]TableProvider),
	}
}

// ID returns the unique session ID.
func (s *SessionContext) ID() string { return s.id }

// Config returns a copy of the session configuration.
func (s *SessionContext) Config() execution.SessionConfig { return s.config }

// Runtime returns the runtime environment.
func (s *SessionContext) Runtime() *execution.RuntimeEnv { return s.runtime }

// TaskContext returns a task context using the session configuration unchanged.
func (s *SessionContext) TaskContext() *execution.TaskContext {
	return execution.NewTaskContext(s.id, s.config, s.runtime)
}

// RegisterTable makes provider queryable under name.
func (s *SessionContext) RegisterTable(name string, provider TableProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[name]; ok {
		return fmt.Errorf("%w: %s", ErrTableExists, name)
	}
	s.tables[name] = provider
	return nil
}

// DeregisterTable removes name and returns the provider that was registered.
func (s *SessionContext) DeregisterTable(name string) (TableProvider, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.tables[name]
	delete(s.tables, name)
	return p, ok
}

// Table returns a DataFrame over the table registered as name.
func (s *SessionContext) Table(name string) (*DataFrame, error) {
	s.mu.RLock()
	p, ok := s.tables[name]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return s.ReadTable(p), nil
}

// ReadTable returns a DataFrame over provider without registering it.
func (s *SessionContext) ReadTable(provider TableProvider) *DataFrame {
	return &DataFrame{session: s, provider: provider}
}

// ReadOneShot returns a DataFrame reading stream. The DataFrame can be
// executed once; later executions fail with physical.ErrExhausted.
func (s *SessionContext) ReadOneShot(stream physical.RecordBatchStream) (*DataFrame, error) {
	provider, err := NewStreamingTable(stream.Schema(), physical.NewOneShotPartitionStream(stream))
	if err != nil {
		return nil, err
	}
	return s.ReadTable(provider), nil
}

// RegisterOneShot registers stream as a single-use table called name.
func (s *SessionContext) RegisterOneShot(name string, stream physical.RecordBatchStream) error {
	provider, err := NewStreamingTable(stream.Schema(), physical.NewOneShotPartitionStream(stream))
	if err != nil {
		return err
	}
	return s.RegisterTable(name, provider)
}
