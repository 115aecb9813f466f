package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "deepsampler.dev/pkg/deepsampler/internal/model"
)

// SimpleUI implements UI using cobra Command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplaySummaries prints one table per sample file.
func (s *SimpleUI) DisplaySummaries(ctx context.Context, summaries []m.FileSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, summary := range summaries {
		s.printf("%s (model %s)\n%s\n", summary.Path, summary.ModelID, renderSummaryTable(summary))
	}

	return nil
}

func renderSummaryTable(summary m.FileSummary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Sample ID", "Calls"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, sample := range summary.Samples {
		table.Append([]string{sample.ID, strconv.Itoa(sample.Calls)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Samples %d", len(summary.Samples)),
		strconv.Itoa(summary.CallCount()),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayCalls prints every call of a file as a table.
func (s *SimpleUI) DisplayCalls(ctx context.Context, path m.Path, calls []m.CallView, _ ...DisplayOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(calls) == 0 {
		s.printf("%s holds no recorded calls\n", path)
		return nil
	}

	s.printf("%s\n%s", path, renderCallTable(calls))

	return nil
}

func renderCallTable(calls []m.CallView) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Sample ID", "#", "Args", "Return Value"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoMergeCells(true)
	table.SetRowLine(true)

	for _, call := range calls {
		table.Append([]string{call.SampleID, strconv.Itoa(call.Index), call.Args, call.ReturnValue})
	}

	table.Render()

	return tableBuffer.String()
}

// DisplayMerged reports the result of a merge.
func (s *SimpleUI) DisplayMerged(ctx context.Context, output m.Path, inputs int, summary m.FileSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("Merged %d file(s) into %s: %d sample(s), %d call(s)\n",
		inputs, output, len(summary.Samples), summary.CallCount())

	return nil
}

func (s *SimpleUI) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
