// Package resource resolves the files sample sources read from and write to.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrReadOnly is returned when writing to a read-only resource.
var ErrReadOnly = errors.New("resource is read-only")

// Resource is a named stream of bytes.
type Resource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Create(ctx context.Context) (io.WriteCloser, error)
	String() string
}

// File is a file on an afero file system. Parent directories are created on write.
type File struct {
	fs   afero.Fs
	path string
}

// FileOption configures a File.
type FileOption func(*File)

// WithFs selects the file system. The default is the operating system.
func WithFs(fsys afero.Fs) FileOption {
	return func(f *File) {
		f.fs = fsys
	}
}

// WithRoot resolves a relative path against root.
func WithRoot(root string) FileOption {
	return func(f *File) {
		if root != "" && !filepath.IsAbs(f.path) {
			f.path = filepath.Join(root, f.path)
		}
	}
}

// NewFile returns the file at path.
func NewFile(path string, opts ...FileOption) *File {
	f := &File{fs: afero.NewOsFs(), path: path}
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Path returns the resolved path.
func (f *File) Path() string {
	return f.path
}

// Open implements Resource.
func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := f.fs.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}

	return file, nil
}

// Create implements Resource.
func (f *File) Create(ctx context.Context) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	file, err := f.fs.Create(f.path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", f.path, err)
	}

	return file, nil
}

func (f *File) String() string {
	return f.path
}

// FS is a read-only file inside an fs.FS such as an embed.FS.
type FS struct {
	fsys fs.FS
	name string
}

// NewFS returns the file name inside fsys.
func NewFS(fsys fs.FS, name string) *FS {
	return &FS{fsys: fsys, name: name}
}

// Open implements Resource.
func (r *FS) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := r.fsys.Open(r.name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.name, err)
	}

	return file, nil
}

// Create implements Resource. It always fails with ErrReadOnly.
func (r *FS) Create(context.Context) (io.WriteCloser, error) {
	return nil, fmt.Errorf("create %s: %w", r.name, ErrReadOnly)
}

func (r *FS) String() string {
	return r.name
}

// Charset returns the encoding registered under name, e.g. "utf-8" or "iso-8859-1". An
// empty name selects UTF-8.
func Charset(name string) (encoding.Encoding, error) {
	if name == "" {
		return unicode.UTF8, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}

	return enc, nil
}

// ReadAll reads the resource and decodes it from enc to UTF-8.
func ReadAll(ctx context.Context, r Resource, enc encoding.Encoding) ([]byte, error) {
	in, err := r.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	data, err := io.ReadAll(transform.NewReader(in, enc.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r, err)
	}

	return data, nil
}

// WriteAll encodes UTF-8 data to enc and replaces the resource's content with it.
func WriteAll(ctx context.Context, r Resource, enc encoding.Encoding, data []byte) error {
	out, err := r.Create(ctx)
	if err != nil {
		return err
	}

	w := transform.NewWriter(out, enc.NewEncoder())

	if _, err := w.Write(data); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", r, err)
	}

	if err := w.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", r, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", r, err)
	}

	return nil
}
