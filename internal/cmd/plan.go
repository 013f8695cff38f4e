package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/dialectic/internal/canonical"
	"github.com/felixgeelhaar/dialectic/internal/errors"
	"github.com/felixgeelhaar/dialectic/internal/job"
	"github.com/felixgeelhaar/dialectic/internal/metrics"
	"github.com/felixgeelhaar/dialectic/internal/planner"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
	"github.com/felixgeelhaar/dialectic/internal/ux"
)

// planRequestFile is the on-disk planning request. The step is given inline
// in any step shape, or by recipe file and step id.
type planRequestFile struct {
	AuthToken       string               `yaml:"auth_token"`
	ParentJob       job.JobRow           `yaml:"parent_job"`
	SourceDocuments []job.SourceDocument `yaml:"source_documents"`
	Step            yaml.Node            `yaml:"step"`
	Recipe          string               `yaml:"recipe"`
	StepID          string               `yaml:"step_id"`
}

// planResult is the plan output. Paths[i], when requested, is where Jobs[i]
// stores its first attempt, or "" when the codec has no path for it.
type planResult struct {
	Step        string                  `json:"step"`
	Strategy    string                  `json:"strategy"`
	Fingerprint string                  `json:"fingerprint"`
	Jobs        []job.ExecuteJobPayload `json:"jobs"`
	Paths       []string                `json:"paths,omitempty"`
	Metrics     []metrics.Sample        `json:"metrics,omitempty"`
}

func newPlanCmd() *cobra.Command {
	var (
		requestPath string
		withMetrics bool
		withPaths   bool
		metricsFile string
	)

	c := &cobra.Command{
		Use:   "plan",
		Short: "Plan the child jobs of a recipe step",
		Long: `Run the granularity strategy of a recipe step over a set of source documents
and print the EXECUTE job payloads it produces.

The request file (YAML or JSON) holds:
  parent_job        the PLAN job being expanded
  source_documents  the documents available to the step
  step              the recipe step, inline
  recipe, step_id   or a recipe file and the id of one of its steps
  auth_token        forwarded to every child as user_jwt

Examples:
  dialectic plan --request request.yaml
  dialectic plan --request request.yaml --format json
  dialectic plan --request request.yaml --paths
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, requestPath, withMetrics, withPaths, metricsFile)
		},
	}
	c.Flags().StringVarP(&requestPath, "request", "r", "", "planning request file")
	c.Flags().BoolVar(&withMetrics, "metrics", false, "include planner counters in the output")
	c.Flags().BoolVar(&withPaths, "paths", false, "show where each child stores its output")
	c.Flags().StringVar(&metricsFile, "metrics-file", "", "write planner metrics to a Prometheus textfile")
	_ = c.MarkFlagRequired("request")
	return c
}

func runPlan(cmd *cobra.Command, requestPath string, withMetrics, withPaths bool, metricsFile string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	req, err := loadPlanRequest(requestPath)
	if err != nil {
		return ux.EnhanceError(err)
	}
	if req.Step.GranularityStrategy == "" {
		req.Step.GranularityStrategy = cmdCtx.Config.Planner.DefaultStrategy
	}

	reg, m := metrics.NewRegistry()
	opts := []planner.Option{
		planner.WithLogger(cmdCtx.Logger.With("request", requestPath)),
		planner.WithMetrics(m),
	}
	if cmdCtx.Config.Planner.StrictStrategies {
		opts = append(opts, planner.WithStrictStrategies())
	}

	payloads, err := planner.NewService(opts...).Plan(cmd.Context(), req)
	if metricsFile != "" {
		// Failed invocations are counted too
		if werr := metrics.WriteTextfile(metricsFile, reg); werr != nil {
			cmdCtx.Logger.WithError(werr).Warn("metrics not written", "path", metricsFile)
		}
	}
	if err != nil {
		return err
	}

	fp, err := planner.Fingerprint(payloads)
	if err != nil {
		return err
	}

	out := planResult{
		Step:        req.Step.ID,
		Strategy:    req.Step.GranularityStrategy,
		Fingerprint: fp,
		Jobs:        payloads,
	}
	if out.Jobs == nil {
		out.Jobs = []job.ExecuteJobPayload{}
	}
	if withPaths {
		out.Paths = make([]string, len(out.Jobs))
		for i, p := range out.Jobs {
			parts, err := canonical.ArtifactPath(p)
			if err != nil {
				cmdCtx.Logger.WithError(err).Warn("no path for planned job", "index", i, "output_type", p.OutputType)
				continue
			}
			out.Paths[i] = parts.FullPath()
		}
	}
	if withMetrics || cmdCtx.Config.Metrics.Enabled {
		if out.Metrics, err = metrics.Snapshot(reg); err != nil {
			return err
		}
	}

	if !cmdCtx.Structured() {
		printPlan(cmd.OutOrStdout(), out, cmdCtx.NoColor)
		return nil
	}
	// Payloads only carry json tags
	f, err := cmdCtx.Formatter(cmd.OutOrStdout(), true)
	if err != nil {
		return err
	}
	return f.Format(out)
}

func loadPlanRequest(path string) (planner.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return planner.Request{}, errors.NewFileNotFoundError(path)
		}
		return planner.Request{}, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read planning request", err)
	}

	var file planRequestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return planner.Request{}, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	step, err := resolveStep(file, filepath.Dir(path))
	if err != nil {
		return planner.Request{}, err
	}

	return planner.Request{
		Documents: file.SourceDocuments,
		Parent:    file.ParentJob,
		Step:      step,
		AuthToken: file.AuthToken,
	}, nil
}

// resolveStep returns the inline step, or loads it from the referenced
// recipe. Recipe paths are relative to the request file.
func resolveStep(file planRequestFile, baseDir string) (recipe.Step, error) {
	if file.Step.Kind != 0 {
		raw, err := yaml.Marshal(&file.Step)
		if err != nil {
			return recipe.Step{}, errors.Wrap(errors.ErrCodeRecipeMalformed, "failed to re-encode inline step", err)
		}
		step, err := recipe.ParseStep(raw)
		if err != nil {
			return recipe.Step{}, err
		}
		return step, step.Validate()
	}

	if file.Recipe == "" || file.StepID == "" {
		return recipe.Step{}, errors.New(errors.ErrCodeRecipeMalformed, "planning request names no step").
			WithSuggestion("Add an inline 'step', or both 'recipe' and 'step_id'")
	}

	recipePath := file.Recipe
	if !filepath.IsAbs(recipePath) {
		recipePath = filepath.Join(baseDir, recipePath)
	}
	rec, err := recipe.LoadRecipe(recipePath)
	if err != nil {
		return recipe.Step{}, err
	}
	return rec.Step(file.StepID)
}

func printPlan(w io.Writer, out planResult, noColor bool) {
	headers := []string{"#", "MODEL", "OUTPUT", "ANCHOR", "SOURCE GROUP", "INPUTS"}
	if out.Paths != nil {
		headers = append(headers, "PATH")
	}
	table := ux.NewTable(headers...)
	table.Title = fmt.Sprintf("%s (%s): %d job(s)", out.Step, out.Strategy, len(out.Jobs))
	table.NoColor = noColor

	for i, p := range out.Jobs {
		anchor := "-"
		if p.SourceContributionID != nil {
			anchor = *p.SourceContributionID
		}
		group := p.DocumentRelationships.SourceGroup()
		if group == "" {
			group = "-"
		}
		row := []string{
			fmt.Sprint(i + 1),
			p.ModelID,
			p.OutputType,
			anchor,
			group,
			strings.Join(p.Inputs.DocumentIDs, ","),
		}
		if out.Paths != nil {
			path := out.Paths[i]
			if path == "" {
				path = "-"
			}
			row = append(row, path)
		}
		table.AddRow(row...)
	}

	fmt.Fprintln(w, table)
	fmt.Fprintf(w, "\nfingerprint: %s\n", out.Fingerprint)

	if len(out.Metrics) > 0 {
		metricsTable := ux.NewTable("SERIES", "VALUE")
		metricsTable.NoColor = noColor
		for _, s := range out.Metrics {
			metricsTable.AddRow(s.Series, fmt.Sprint(s.Value))
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, metricsTable)
	}
}
