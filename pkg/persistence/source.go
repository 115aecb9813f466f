package persistence

import (
	"context"
	"errors"
	"sync"

	"deepsampler.dev/pkg/deepsampler/pkg/repository"
)

// SourceManager stores and retrieves models.
type SourceManager interface {
	Save(ctx context.Context, model *Model) error
	Load(ctx context.Context) (*Model, error)
}

// Repositories gives access to the repositories of the test being recorded or replayed.
// *sampler.Session implements it.
type Repositories interface {
	Samples() *repository.SampleRepository
	Executions() *repository.ExecutionRepository
}

// ErrNothingSaved is returned by MemorySource.Load before the first Save.
var ErrNothingSaved = errors.New("no model has been saved")

// MemorySource keeps the last saved model in memory.
type MemorySource struct {
	mu    sync.Mutex
	model *Model
}

// NewMemorySource returns a source holding model, which may be nil.
func NewMemorySource(model *Model) *MemorySource {
	return &MemorySource{model: model}
}

// Save implements SourceManager.
func (s *MemorySource) Save(_ context.Context, model *Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.model = model

	return nil
}

// Load implements SourceManager.
func (s *MemorySource) Load(_ context.Context) (*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model == nil {
		return nil, ErrNothingSaved
	}

	return s.model, nil
}
