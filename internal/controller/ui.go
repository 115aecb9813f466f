// Package controller provides output adapters for displaying sample files.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "deepsampler.dev/pkg/deepsampler/internal/model"
)

// DisplayOption is a functional option for DisplayCalls.
type DisplayOption func(*DisplayConfig)

// DisplayConfig holds configuration for displaying calls.
type DisplayConfig struct {
	plain bool
}

// WithPlainOutput prints calls as a table even on an interactive terminal.
func WithPlainOutput(plain bool) DisplayOption {
	return func(c *DisplayConfig) {
		c.plain = plain
	}
}

func newDisplayConfig(options []DisplayOption) DisplayConfig {
	var cfg DisplayConfig
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines how sample files are presented.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplaySummaries(ctx context.Context, summaries []m.FileSummary) error
	DisplayCalls(ctx context.Context, path m.Path, calls []m.CallView, options ...DisplayOption) error
	DisplayMerged(ctx context.Context, output m.Path, inputs int, summary m.FileSummary) error
}

// NewUI returns the TUI when interactive is set and the SimpleUI otherwise.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
