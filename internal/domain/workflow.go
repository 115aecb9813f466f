// Package domain implements the deepsampler CLI workflows over sample files.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"deepsampler.dev/pkg/deepsampler/internal/adapter"
	"deepsampler.dev/pkg/deepsampler/internal/controller"
	m "deepsampler.dev/pkg/deepsampler/internal/model"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence"
)

// ErrNoFiles is returned when a workflow is started without sample files.
var ErrNoFiles = errors.New("no sample files given")

// ListArgs contains the arguments for listing sample files.
type ListArgs struct {
	Files    []m.Path
	Parallel int
}

// ViewArgs contains the arguments for viewing one sample file.
type ViewArgs struct {
	File  m.Path
	Plain bool
}

// MergeArgs contains the arguments for merging sample files.
type MergeArgs struct {
	Files    []m.Path
	Output   m.Path
	Parallel int
}

// Workflow defines the operations of the deepsampler CLI.
type Workflow interface {
	List(ctx context.Context, args ListArgs) error
	View(ctx context.Context, args ViewArgs) error
	Merge(ctx context.Context, args MergeArgs) error
}

type workflow struct {
	adapter.SampleStore
	controller.UI

	newID func() string
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(store adapter.SampleStore, ui controller.UI) Workflow {
	return &workflow{
		SampleStore: store,
		UI:          ui,
		newID:       uuid.NewString,
	}
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	models, err := w.loadAll(ctx, args.Files, args.Parallel)
	if err != nil {
		return err
	}

	summaries := make([]m.FileSummary, len(models))
	for i, model := range models {
		summaries[i] = m.Summarize(args.Files[i], model)
	}

	return w.DisplaySummaries(ctx, summaries)
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	model, err := w.Load(ctx, args.File)
	if err != nil {
		return fmt.Errorf("load %s: %w", args.File, err)
	}

	return w.DisplayCalls(ctx, args.File, m.Describe(model), controller.WithPlainOutput(args.Plain))
}

func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	if args.Output == "" {
		return errors.New("merge needs an output file")
	}

	models, err := w.loadAll(ctx, args.Files, args.Parallel)
	if err != nil {
		return err
	}

	merged := persistence.NewModel(w.newID())
	for _, model := range models {
		merged.Merge(model)
	}

	if err := w.Save(ctx, args.Output, merged); err != nil {
		return fmt.Errorf("save %s: %w", args.Output, err)
	}

	slog.Info("merged sample files", "inputs", len(args.Files), "output", args.Output, "calls", merged.CallCount())

	return w.DisplayMerged(ctx, args.Output, len(args.Files), m.Summarize(args.Output, merged))
}

// loadAll reads files concurrently. The result keeps the order of files so merges are
// deterministic.
func (w *workflow) loadAll(ctx context.Context, files []m.Path, parallel int) ([]*persistence.Model, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	models := make([]*persistence.Model, len(files))

	group, groupCtx := errgroup.WithContext(ctx)
	if parallel > 0 {
		group.SetLimit(parallel)
	}

	for i, file := range files {
		group.Go(func() error {
			model, err := w.Load(groupCtx, file)
			if err != nil {
				return fmt.Errorf("load %s: %w", file, err)
			}

			slog.Debug("loaded sample file", "path", file, "samples", len(model.Samples))
			models[i] = model

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return models, nil
}
