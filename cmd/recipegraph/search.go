package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/siherrmann/recipegraph"
	"github.com/siherrmann/recipegraph/config"
	"github.com/siherrmann/recipegraph/model"
	"github.com/spf13/cobra"
)

func newSearchCmd(envFile *string) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print the fused results",
		Example: `  recipegraph search "quick vegetarian indian dinner"
  recipegraph search "recipes with paneer and spinach" --limit 5 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}
			return runSearch(cmd.Context(), cmd.OutOrStdout(), *envFile, strings.Join(args, " "), limit, jsonOutput)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runSearch(ctx context.Context, out io.Writer, envFile string, query string, limit int, jsonOutput bool) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	handle, err := recipegraph.NewRecipeGraph(ctx, cfg)
	if err != nil {
		return err
	}
	defer handle.Close(context.Background())

	outcome, err := handle.Search(ctx, query, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	printOutcome(out, outcome)
	return nil
}

func printOutcome(out io.Writer, outcome *model.SearchOutcome) {
	fmt.Fprintf(out, "Query: %s\n", outcome.Query)
	if outcome.Intent != nil && outcome.Intent.Reasoning != "" {
		fmt.Fprintf(out, "Reasoning: %s\n", outcome.Intent.Reasoning)
	}
	for _, line := range outcome.Explanation {
		fmt.Fprintf(out, "  %s\n", line)
	}

	fmt.Fprintf(out, "\nResults (%d):\n", len(outcome.Results))
	for i, result := range outcome.Results {
		fmt.Fprintf(out, "%2d. %s [%.3f] %s\n", i+1, result.Title, result.FinalScore, joinSources(result.Sources))
		if result.URL != "" {
			fmt.Fprintf(out, "    %s\n", result.URL)
		}
	}

	fmt.Fprint(out, "\nSources:")
	for _, source := range model.Sources {
		fmt.Fprintf(out, " %s=%d", source, outcome.SourceBreakdown[source])
	}
	fmt.Fprintln(out)
}

func joinSources(sources []model.Source) string {
	parts := make([]string, len(sources))
	for i, source := range sources {
		parts[i] = string(source)
	}
	return strings.Join(parts, ",")
}
