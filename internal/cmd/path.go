package cmd

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/dialectic/internal/errors"
	"github.com/felixgeelhaar/dialectic/internal/metrics"
	"github.com/felixgeelhaar/dialectic/internal/pathcodec"
	"github.com/felixgeelhaar/dialectic/internal/ux"
)

func newPathCmd() *cobra.Command {
	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Build and classify canonical storage paths",
		Long: `Build and classify the canonical storage paths of pipeline artifacts.

Examples:
  # Build the path of a rendered document
  dialectic path construct --project proj-1 --type rendered_document \
    --session a1b2c3d4-0000-0000-0000-000000000000 --iteration 1 \
    --stage thesis --model claude-3 --document-key business_case

  # Classify a stored path
  dialectic path deconstruct proj-1/session_a1b2c3d4/iteration_1/1_thesis/documents/claude-3_0_business_case.md

  # Classify every file below a directory
  dialectic path scan ./storage --metrics
`,
	}

	pathCmd.AddCommand(newPathConstructCmd())
	pathCmd.AddCommand(newPathDeconstructCmd())
	pathCmd.AddCommand(newPathScanCmd())
	return pathCmd
}

type constructFlags struct {
	ctx                pathcodec.PathContext
	fileType           string
	sourceAttemptCount int
}

func newPathConstructCmd() *cobra.Command {
	var opts constructFlags

	c := &cobra.Command{
		Use:   "construct",
		Short: "Build the storage path of an artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPathConstruct(cmd, &opts)
		},
	}

	f := c.Flags()
	f.StringVar(&opts.ctx.ProjectID, "project", "", "project id")
	f.StringVar(&opts.fileType, "type", "", "file type (e.g. rendered_document, model_contribution_main)")
	f.StringVar(&opts.ctx.SessionID, "session", "", "session id")
	f.IntVar(&opts.ctx.Iteration, "iteration", 0, "iteration number")
	f.StringVar(&opts.ctx.StageSlug, "stage", "", "stage slug")
	f.StringVar(&opts.ctx.ModelSlug, "model", "", "model slug")
	f.IntVar(&opts.ctx.AttemptCount, "attempt", 0, "attempt count")
	f.StringVar(&opts.ctx.ContributionType, "contribution-type", "", "contribution type")
	f.StringVar(&opts.ctx.DocumentKey, "document-key", "", "document key")
	f.StringVar(&opts.ctx.StepName, "step-name", "", "planner step name")
	f.StringVar(&opts.ctx.OriginalFileName, "original-file-name", "", "name of a user supplied file")
	f.StringVar(&opts.ctx.Extension, "ext", "", "work artifact extension: md, json or txt")
	f.BoolVar(&opts.ctx.IsContinuation, "continuation", false, "artifact is a continuation chunk")
	f.IntVar(&opts.ctx.TurnIndex, "turn", 0, "continuation turn index")
	f.StringSliceVar(&opts.ctx.SourceModelSlugs, "source-models", nil, "source model slugs")
	f.StringVar(&opts.ctx.SourceAnchorType, "anchor-type", "", "source anchor type")
	f.StringVar(&opts.ctx.SourceAnchorModelSlug, "anchor-model", "", "source anchor model slug")
	f.IntVar(&opts.sourceAttemptCount, "source-attempt", -1, "source attempt count")
	f.StringVar(&opts.ctx.PairedModelSlug, "paired-model", "", "paired model slug")
	_ = c.MarkFlagRequired("project")
	_ = c.MarkFlagRequired("type")
	return c
}

func runPathConstruct(cmd *cobra.Command, opts *constructFlags) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	pc := opts.ctx
	pc.FileType = pathcodec.FileType(opts.fileType)
	if opts.sourceAttemptCount >= 0 {
		n := opts.sourceAttemptCount
		pc.SourceAttemptCount = &n
	}

	parts, err := pathcodec.Construct(pc)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Debug("constructed path", "file_type", pc.FileType, "path", parts.FullPath())

	if cmdCtx.Structured() {
		return format(cmdCtx, cmd.OutOrStdout(), parts)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "storage_path: %s\nfile_name:    %s\n", parts.StoragePath, parts.FileName)
	return nil
}

func newPathDeconstructCmd() *cobra.Command {
	var originalName string

	c := &cobra.Command{
		Use:   "deconstruct <path>",
		Short: "Classify a stored path and recover its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPathDeconstruct(cmd, args[0], originalName)
		},
	}
	c.Flags().StringVar(&originalName, "original-file-name", "", "original name recorded for a user supplied file")
	return c
}

func runPathDeconstruct(cmd *cobra.Command, fullPath, originalName string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	dir, name := splitStoredPath(fullPath)
	info := pathcodec.Deconstruct(pathcodec.DeconstructInput{
		StoragePath:        dir,
		FileName:           name,
		DBOriginalFileName: originalName,
	})

	if err := format(cmdCtx, cmd.OutOrStdout(), info); err != nil {
		return err
	}

	if !info.Recognized() {
		return errors.New(errors.ErrCodePathUnrecognized, info.Error).
			WithSuggestion("Check the path against 'dialectic path construct' output")
	}
	return nil
}

// splitStoredPath splits at the last slash. Backslashes are normalized so
// Windows paths classify the same way.
func splitStoredPath(p string) (string, string) {
	p = strings.ReplaceAll(p, `\`, "/")
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", p
	}
	return p[:i], p[i+1:]
}

type scanResult struct {
	Root    string            `json:"root" yaml:"root"`
	Summary pathcodec.Summary `json:"summary" yaml:"summary"`
	Metrics []metrics.Sample  `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

func newPathScanCmd() *cobra.Command {
	var (
		withMetrics bool
		metricsFile string
		jobs        int
	)

	c := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Classify every file below a storage directory",
		Long: `Walk a directory holding a copy of artifact storage and classify each file
by its path relative to the directory. Unrecognized paths are listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPathScan(cmd, args[0], jobs, withMetrics, metricsFile)
		},
	}
	c.Flags().BoolVar(&withMetrics, "metrics", false, "print classification counters")
	c.Flags().StringVar(&metricsFile, "metrics-file", "", "write classification counters to a Prometheus textfile")
	c.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "number of parallel classifiers")
	return c
}

func runPathScan(cmd *cobra.Command, root string, jobs int, withMetrics bool, metricsFile string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	var rels []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileReadFailed, "failed to walk "+root, err).
			WithSuggestion("Check that the directory exists and is readable")
	}

	reg, m := metrics.NewRegistry()
	results := make([]pathcodec.Classification, len(rels))

	g, ctx := errgroup.WithContext(cmd.Context())
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, rel := range rels {
		i, rel := i, rel
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = pathcodec.Classify(rel)
			m.ObserveClassification(string(results[i].Info.FileType))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := scanResult{Root: root, Summary: pathcodec.Summarize(results)}
	if withMetrics || cmdCtx.Config.Metrics.Enabled {
		if out.Metrics, err = metrics.Snapshot(reg); err != nil {
			return err
		}
	}
	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile, reg); err != nil {
			return err
		}
	}
	cmdCtx.Logger.Info("scan complete",
		"root", root,
		"total", out.Summary.Total,
		"recognized", out.Summary.Recognized,
	)

	if cmdCtx.Structured() {
		return format(cmdCtx, cmd.OutOrStdout(), out)
	}
	printScan(cmd.OutOrStdout(), out, cmdCtx.NoColor)
	return nil
}

func printScan(w io.Writer, out scanResult, noColor bool) {
	table := ux.NewTable("FILE TYPE", "COUNT")
	table.Title = fmt.Sprintf("%s: %d of %d paths recognized", out.Root, out.Summary.Recognized, out.Summary.Total)
	table.NoColor = noColor

	types := make([]string, 0, len(out.Summary.ByType))
	for t := range out.Summary.ByType {
		types = append(types, string(t))
	}
	slices.Sort(types)
	for _, t := range types {
		table.AddRow(t, strconv.Itoa(out.Summary.ByType[pathcodec.FileType(t)]))
	}
	fmt.Fprintln(w, table)

	if len(out.Summary.Misses) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ux.ErrorText("Unrecognized:", noColor))
		for _, miss := range out.Summary.Misses {
			fmt.Fprintf(w, "  %s\n", miss)
		}
	}

	if len(out.Metrics) > 0 {
		metricsTable := ux.NewTable("SERIES", "VALUE")
		metricsTable.NoColor = noColor
		for _, s := range out.Metrics {
			metricsTable.AddRow(s.Series, strconv.FormatFloat(s.Value, 'f', -1, 64))
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, metricsTable)
	}
}

// format writes data with the formatter selected by --format
func format(cmdCtx *CommandContext, w io.Writer, data any) error {
	f, err := cmdCtx.Formatter(w, false)
	if err != nil {
		return err
	}
	return f.Format(data)
}
