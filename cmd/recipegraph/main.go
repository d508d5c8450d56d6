/*
Recipegraph answers natural language recipe queries from a knowledge graph and
a relational+vector store.

Usage:

	recipegraph [command]

Available Commands:

	serve       Run the HTTP API
	search      Run one search and print the fused results
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "recipegraph",
		Short:         "Recipe search over a knowledge graph and a vector store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file to load (default .env when present)")

	rootCmd.AddCommand(newServeCmd(&envFile))
	rootCmd.AddCommand(newSearchCmd(&envFile))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
