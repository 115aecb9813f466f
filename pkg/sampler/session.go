// Package sampler is the declaration API: it prepares samplers, collects matchers, builds
// samples and verifies call quantities.
//
// Every operation takes the *Session that owns the sample and execution repositories, so
// state is never read from ambient globals. A typical test creates one Session:
//
//	s := sampler.NewSession()
//	greeter := sampler.Prepare(s, greeterSampler)
//	sampler.Of(s, sampler.Value(greeter.Greet(sampler.Any[string](s)))).Is("hi")
//	live := sampler.Intercept(s, greeterSampler, realGreeter)
package sampler

import (
	"fmt"
	"log/slog"
	"sync"

	"deepsampler.dev/pkg/deepsampler/pkg/repository"
)

// ScopeType selects where a Session keeps its repositories.
type ScopeType int

const (
	// ScopeLocal keeps the repositories inside the Session (default).
	ScopeLocal ScopeType = iota
	// ScopeSingleton shares the repositories with every Session using this scope.
	ScopeSingleton
)

func (t ScopeType) String() string {
	switch t {
	case ScopeLocal:
		return "local"
	case ScopeSingleton:
		return "singleton"
	default:
		return fmt.Sprintf("ScopeType(%d)", int(t))
	}
}

// Session owns the scoped sample and execution repositories of one test.
type Session struct {
	mu         sync.Mutex
	scopeType  ScopeType
	samples    repository.Scope[*repository.SampleRepository]
	executions repository.Scope[*repository.ExecutionRepository]
}

// NewSession creates a Session with local scope.
func NewSession() *Session {
	return &Session{
		scopeType:  ScopeLocal,
		samples:    repository.NewLocalScope[*repository.SampleRepository](),
		executions: repository.NewLocalScope[*repository.ExecutionRepository](),
	}
}

// Samples returns the scoped sample repository.
func (s *Session) Samples() *repository.SampleRepository {
	s.mu.Lock()
	scope := s.samples
	s.mu.Unlock()

	return scope.GetOrCreate(repository.NewSampleRepository)
}

// Executions returns the scoped execution repository.
func (s *Session) Executions() *repository.ExecutionRepository {
	s.mu.Lock()
	scope := s.executions
	s.mu.Unlock()

	return scope.GetOrCreate(repository.NewExecutionRepository)
}

// Scope returns the active scope type.
func (s *Session) Scope() ScopeType {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scopeType
}

// SetScope closes the current scopes and installs new ones of the given type.
func (s *Session) SetScope(scopeType ScopeType) error {
	var (
		samples    repository.Scope[*repository.SampleRepository]
		executions repository.Scope[*repository.ExecutionRepository]
	)

	switch scopeType {
	case ScopeLocal:
		samples = repository.NewLocalScope[*repository.SampleRepository]()
		executions = repository.NewLocalScope[*repository.ExecutionRepository]()
	case ScopeSingleton:
		samples = repository.NewSingletonScope[*repository.SampleRepository]()
		executions = repository.NewSingletonScope[*repository.ExecutionRepository]()
	default:
		return fmt.Errorf("unsupported scope type %s", scopeType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples.Close()
	s.executions.Close()

	s.samples = samples
	s.executions = executions
	s.scopeType = scopeType

	slog.Debug("sampler scope changed", "scope", scopeType)

	return nil
}

// Clear drops all samples and execution information of the session's scope.
func (s *Session) Clear() {
	s.Samples().Clear()
	s.Executions().Clear()
}
