// Package yamlsource stores sample models as YAML documents.
package yamlsource

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/text/encoding"
	"gopkg.in/yaml.v3"

	"deepsampler.dev/pkg/deepsampler/pkg/persistence"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence/codec"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence/resource"
)

// Source reads and writes one YAML resource.
type Source struct {
	res     resource.Resource
	codec   *codec.Codec
	charset string
	enc     encoding.Encoding
}

// Option configures a Source.
type Option func(*Source)

// WithCharset selects the charset of the resource.
func WithCharset(name string) Option {
	return func(s *Source) {
		s.charset = name
	}
}

// WithSerializer registers a serializer for values the bean converter leaves untouched.
// Decode receives YAML scalars: int, float64, bool or string.
func WithSerializer(serializer codec.Serializer) Option {
	return func(s *Source) {
		s.codec.Register(serializer)
	}
}

// New returns a source for res.
func New(res resource.Resource, opts ...Option) (*Source, error) {
	s := &Source{res: res, codec: codec.New()}
	for _, opt := range opts {
		opt(s)
	}

	enc, err := resource.Charset(s.charset)
	if err != nil {
		return nil, err
	}

	s.enc = enc

	return s, nil
}

// Save implements persistence.SourceManager.
func (s *Source) Save(ctx context.Context, m *persistence.Model) error {
	doc, err := s.codec.Encode(m)
	if err != nil {
		return persistence.NewPersistenceError("encode samples for %s: %v", s.res, err)
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return persistence.NewPersistenceError("marshal samples for %s: %v", s.res, err)
	}

	if err := resource.WriteAll(ctx, s.res, s.enc, data); err != nil {
		return fmt.Errorf("save samples: %w", err)
	}

	slog.Debug("saved samples", "resource", s.res.String(), "samples", len(m.Samples))

	return nil
}

// Load implements persistence.SourceManager.
func (s *Source) Load(ctx context.Context) (*persistence.Model, error) {
	data, err := resource.ReadAll(ctx, s.res, s.enc)
	if err != nil {
		return nil, fmt.Errorf("load samples: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, persistence.NewPersistenceError("parse %s: %v", s.res, err)
	}

	m, err := s.codec.Decode(doc)
	if err != nil {
		return nil, persistence.NewPersistenceError("decode %s: %v", s.res, err)
	}

	slog.Debug("read samples", "resource", s.res.String(), "samples", len(m.Samples))

	return m, nil
}
