// Package adapter contains infrastructure adapters for the deepsampler CLI.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	m "deepsampler.dev/pkg/deepsampler/internal/model"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence/jsonsource"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence/resource"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence/yamlsource"
)

// ErrUnsupportedFormat is returned for sample files that are neither JSON nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported sample file format")

// SampleStore reads and writes sample files.
type SampleStore interface {
	Load(ctx context.Context, path m.Path) (*persistence.Model, error)
	Save(ctx context.Context, path m.Path, model *persistence.Model) error
}

// LocalSampleStore picks the JSON or YAML source by file extension.
type LocalSampleStore struct {
	fs      afero.Fs
	root    string
	charset string
}

// StoreOption configures a LocalSampleStore.
type StoreOption func(*LocalSampleStore)

// WithFs replaces the operating system file system.
func WithFs(fsys afero.Fs) StoreOption {
	return func(s *LocalSampleStore) {
		s.fs = fsys
	}
}

// WithRoot resolves relative sample paths against root.
func WithRoot(root string) StoreOption {
	return func(s *LocalSampleStore) {
		s.root = root
	}
}

// WithCharset sets the charset of the sample files.
func WithCharset(charset string) StoreOption {
	return func(s *LocalSampleStore) {
		s.charset = charset
	}
}

// NewLocalSampleStore constructs a LocalSampleStore.
func NewLocalSampleStore(opts ...StoreOption) *LocalSampleStore {
	s := &LocalSampleStore{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load reads the model stored at path.
func (s *LocalSampleStore) Load(ctx context.Context, path m.Path) (*persistence.Model, error) {
	source, err := s.source(path)
	if err != nil {
		return nil, err
	}

	return source.Load(ctx)
}

// Save writes model to path, replacing its content.
func (s *LocalSampleStore) Save(ctx context.Context, path m.Path, model *persistence.Model) error {
	source, err := s.source(path)
	if err != nil {
		return err
	}

	return source.Save(ctx, model)
}

func (s *LocalSampleStore) source(path m.Path) (persistence.SourceManager, error) {
	res := resource.NewFile(string(path), resource.WithFs(s.fs), resource.WithRoot(s.root))

	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".json":
		return jsonsource.New(res, jsonsource.WithCharset(s.charset))
	case ".yaml", ".yml":
		return yamlsource.New(res, yamlsource.WithCharset(s.charset))
	default:
		return nil, fmt.Errorf("%s: %w (use .json, .yaml or .yml)", path, ErrUnsupportedFormat)
	}
}
