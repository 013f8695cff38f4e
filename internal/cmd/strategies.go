package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/dialectic/internal/planner"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
	"github.com/felixgeelhaar/dialectic/internal/ux"
)

var strategyDescriptions = map[string]string{
	recipe.StrategyPerSourceDocument:          "one job per source document",
	recipe.StrategyPairwiseByOrigin:           "one job per anchor and paired document",
	recipe.StrategyPerModel:                   "one job consolidating all documents",
	recipe.StrategyPerSourceDocumentByLineage: "one job per complete lineage",
	recipe.StrategyPerSourceGroup:             "one job per source group",
	recipe.StrategyAllToOne:                   "one job over every document",
}

type strategyInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Default     bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the granularity strategies",
		Args:  cobra.NoArgs,
		RunE:  runStrategies,
	}
}

func runStrategies(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	var infos []strategyInfo
	for _, name := range planner.Strategies() {
		infos = append(infos, strategyInfo{
			Name:        name,
			Description: strategyDescriptions[name],
			Default:     name == cmdCtx.Config.Planner.DefaultStrategy,
		})
	}

	if cmdCtx.Structured() {
		return format(cmdCtx, cmd.OutOrStdout(), infos)
	}

	table := ux.NewTable("STRATEGY", "DESCRIPTION")
	table.NoColor = cmdCtx.NoColor
	for _, info := range infos {
		name := info.Name
		if info.Default {
			name += " *"
		}
		table.AddRow(name, info.Description)
	}
	fmt.Fprintln(cmd.OutOrStdout(), table)
	return nil
}
