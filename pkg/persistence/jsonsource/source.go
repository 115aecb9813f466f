// Package jsonsource stores sample models as JSON documents.
package jsonsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/text/encoding"

	"deepsampler.dev/pkg/deepsampler/pkg/persistence"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence/codec"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence/resource"
)

// Source reads and writes one JSON resource.
type Source struct {
	res     resource.Resource
	codec   *codec.Codec
	charset string
	enc     encoding.Encoding
	indent  string
}

// Option configures a Source.
type Option func(*Source)

// WithCharset selects the charset of the resource. The default is UTF-8.
func WithCharset(name string) Option {
	return func(s *Source) {
		s.charset = name
	}
}

// WithSerializer registers a serializer for values the bean converter leaves untouched.
func WithSerializer(serializer codec.Serializer) Option {
	return func(s *Source) {
		s.codec.Register(serializer)
	}
}

// WithCompact writes the document on a single line.
func WithCompact() Option {
	return func(s *Source) {
		s.indent = ""
	}
}

// New returns a source for res.
func New(res resource.Resource, opts ...Option) (*Source, error) {
	s := &Source{res: res, codec: codec.New(), indent: "  "}
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

	var data []byte
	if s.indent == "" {
		data, err = json.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", s.indent)
	}

	if err != nil {
		return persistence.NewPersistenceError("marshal samples for %s: %v", s.res, err)
	}

	if err := resource.WriteAll(ctx, s.res, s.enc, append(data, '\n')); err != nil {
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

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, persistence.NewPersistenceError("parse %s: %v", s.res, err)
	}

	m, err := s.codec.Decode(doc)
	if err != nil {
		return nil, persistence.NewPersistenceError("decode %s: %v", s.res, err)
	}

	slog.Debug("read samples", "resource", s.res.String(), "samples", len(m.Samples))

	return m, nil
}
