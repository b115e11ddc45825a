// Package main provides the ligature CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/ligature/pkg/ligature"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ligature",
		Short: "Ligature - in-memory RDF collections",
		Long: `Ligature keeps named collections of RDF statements in memory,
optionally persisted to a badger directory.

Input formats:
  • N-Triples (.nt)
  • Turtle (.ttl)`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().String("data-dir", "", "Badger data directory (empty keeps data in memory)")
	rootCmd.PersistentFlags().String("collection", "", "Collection IRI (default from config)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ligature v%s\n", ligature.Version)
		},
	})

	loadCmd := &cobra.Command{
		Use:   "load [files...]",
		Short: "Load N-Triples or Turtle files into a collection",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runLoad,
	}
	loadCmd.Flags().String("format", "", "Content type for all files (default: by extension)")
	loadCmd.Flags().Int("workers", 0, "Files parsed in parallel (default from config)")
	rootCmd.AddCommand(loadCmd)

	matchCmd := &cobra.Command{
		Use:   "match",
		Short: "Print statements matching a pattern",
		RunE:  runMatch,
	}
	matchCmd.Flags().String("subject", "", "Subject term in N-Triples syntax")
	matchCmd.Flags().String("predicate", "", "Predicate term in N-Triples syntax")
	matchCmd.Flags().String("object", "", "Object term in N-Triples syntax")
	matchCmd.Flags().Bool("all", false, "Match across every collection")
	rootCmd.AddCommand(matchCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Write a collection as N-Triples",
		RunE:  runDump,
	})

	collectionsCmd := &cobra.Command{
		Use:   "collections",
		Short: "List collections",
		RunE:  runCollections,
	}
	collectionsCmd.AddCommand(&cobra.Command{
		Use:   "create [iri]",
		Short: "Create an empty collection",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreate,
	})
	collectionsCmd.AddCommand(&cobra.Command{
		Use:   "delete [iri]",
		Short: "Delete a collection and its statements",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	})
	rootCmd.AddCommand(collectionsCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "details",
		Short: "Show store details",
		RunE:  runDetails,
	})

	return rootCmd
}
