package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dialectic/internal/recipe"
	"github.com/felixgeelhaar/dialectic/internal/ux"
)

func newRecipeCmd() *cobra.Command {
	recipeCmd := &cobra.Command{
		Use:   "recipe",
		Short: "Work with stage recipes",
	}

	recipeCmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a recipe file and list its steps",
		Long: `Load a recipe (YAML or JSON), normalize each step from its template,
instance or ad hoc shape, and check the rules planners rely on.`,
		Args: cobra.ExactArgs(1),
		RunE: runRecipeValidate,
	})
	return recipeCmd
}

func runRecipeValidate(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	rec, err := recipe.LoadRecipe(args[0])
	if err != nil {
		return ux.EnhanceError(err)
	}
	cmdCtx.Logger.Debug("recipe valid", "recipe", rec.Name, "steps", len(rec.Steps))

	if cmdCtx.Structured() {
		return format(cmdCtx, cmd.OutOrStdout(), rec)
	}
	printRecipe(cmd.OutOrStdout(), rec, cmdCtx.NoColor)
	return nil
}

func printRecipe(w io.Writer, rec *recipe.Recipe, noColor bool) {
	table := ux.NewTable("STEP", "SHAPE", "JOB", "STRATEGY", "OUTPUT", "INPUTS")
	table.Title = fmt.Sprintf("✓ %s is valid (%d step(s))", rec.Name, len(rec.Steps))
	table.NoColor = noColor

	for _, s := range rec.Steps {
		inputs := make([]string, len(s.InputsRequired))
		for i, in := range s.InputsRequired {
			inputs[i] = in.String()
		}
		strategy := s.GranularityStrategy
		if strategy == "" {
			strategy = "(default)"
		}
		table.AddRow(s.ID, string(s.Origin), string(s.JobType), strategy, s.OutputType, strings.Join(inputs, " "))
	}
	fmt.Fprintln(w, table)
}
