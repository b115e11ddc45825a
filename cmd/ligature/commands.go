package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/ligature/internal/config"
	"github.com/aleksaelezovic/ligature/internal/rdfio"
	"github.com/aleksaelezovic/ligature/internal/storage"
	"github.com/aleksaelezovic/ligature/pkg/ligature"
	"github.com/aleksaelezovic/ligature/pkg/ntriples"
	"github.com/aleksaelezovic/ligature/pkg/rdf"
)

// session is the state every command starts from.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *ligature.MemStore
}

func openSession(cmd *cobra.Command) (*session, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	logger := cfg.Logger(cmd.ErrOrStderr())

	storeCfg := ligature.Config{Logger: logger}
	if cfg.DataDir != "" {
		badgerStorage, err := storage.NewBadgerStorage(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		storeCfg.Backend = storage.NewBackend(badgerStorage, logger)
	}
	s, err := ligature.Open(cmd.Context(), storeCfg)
	if err != nil {
		if storeCfg.Backend != nil {
			storeCfg.Backend.Close()
		}
		return nil, err
	}
	logger.Debug("store opened", slog.String("data_dir", cfg.DataDir))
	return &session{cfg: cfg, logger: logger, store: s}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// collection returns the --collection flag or the configured default.
func (s *session) collection(cmd *cobra.Command) (rdf.NamedNode, error) {
	name, _ := cmd.Flags().GetString("collection")
	if name == "" {
		name = s.cfg.DefaultCollection
	}
	return parseCollection(name)
}

func parseCollection(name string) (rdf.NamedNode, error) {
	node := rdf.NewNamedNode(name)
	if err := rdf.Validate(node); err != nil {
		return rdf.NamedNode{}, fmt.Errorf("invalid collection name %q: %w", name, err)
	}
	return node, nil
}

func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) (err error) {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); err == nil {
			err = closeErr
		}
	}()
	return fn(cmd.Context(), s)
}

func runLoad(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	workers, _ := cmd.Flags().GetInt("workers")

	return withSession(cmd, func(ctx context.Context, s *session) error {
		name, err := s.collection(cmd)
		if err != nil {
			return err
		}
		if workers <= 0 {
			workers = s.cfg.Load.Workers
		}

		loader := &rdfio.FileLoader{ContentType: format, Workers: workers, Logger: s.logger}
		model, err := loader.LoadFiles(ctx, args)
		if err != nil {
			return err
		}

		tx, err := s.store.Write(ctx)
		if err != nil {
			return err
		}
		c, err := tx.Collection(name)
		if err != nil {
			tx.Cancel()
			return err
		}
		if err := c.AddModel(model); err != nil {
			tx.Cancel()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Loaded %d statements from %d files into %s\n",
			model.Len(), len(args), name.IRI)
		return nil
	})
}

func parseOptionalTerm(cmd *cobra.Command, flag string) (rdf.Term, error) {
	text, _ := cmd.Flags().GetString(flag)
	if text == "" {
		return nil, nil
	}
	term, err := ntriples.ParseTerm(text)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return term, nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	var pattern ligature.Pattern
	var err error
	if pattern.Subject, err = parseOptionalTerm(cmd, "subject"); err != nil {
		return err
	}
	if pattern.Predicate, err = parseOptionalTerm(cmd, "predicate"); err != nil {
		return err
	}
	if pattern.Object, err = parseOptionalTerm(cmd, "object"); err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")

	return withSession(cmd, func(ctx context.Context, s *session) error {
		if !all {
			name, err := s.collection(cmd)
			if err != nil {
				return err
			}
			pattern.Context = name
		}

		tx, err := s.store.Read(ctx)
		if err != nil {
			return err
		}
		defer tx.Cancel()
		matches, err := tx.MatchStatements(pattern)
		if err != nil {
			return err
		}

		var rows [][]string
		for stmt := range matches {
			rows = append(rows, []string{
				stmt.Subject.String(),
				stmt.Predicate.String(),
				stmt.Object.String(),
				stmt.Graph.String(),
			})
		}
		slices.SortFunc(rows, func(a, b []string) int {
			return slices.Compare(a, b)
		})

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			color.New(color.FgYellow).Fprintln(out, "No matching statements")
			return nil
		}
		if err := renderTable(out, []string{"Subject", "Predicate", "Object", "Collection"}, rows); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n_%d statements_\n", len(rows))
		return nil
	})
}

func runDump(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		name, err := s.collection(cmd)
		if err != nil {
			return err
		}
		tx, err := s.store.Read(ctx)
		if err != nil {
			return err
		}
		defer tx.Cancel()
		c, err := tx.Collection(name)
		if err != nil {
			return err
		}
		stmts, err := c.MatchStatements(ligature.Pattern{})
		if err != nil {
			return err
		}
		n, err := ntriples.Write(cmd.OutOrStdout(), stmts)
		if err != nil {
			return err
		}
		s.logger.Debug("dumped collection", slog.String("collection", name.IRI), slog.Int("statements", n))
		return nil
	})
}

func runCollections(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		tx, err := s.store.Read(ctx)
		if err != nil {
			return err
		}
		defer tx.Cancel()
		names, err := tx.Collections()
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			c, err := tx.Collection(name)
			if err != nil {
				return err
			}
			n, err := c.Len()
			if err != nil {
				return err
			}
			rows = append(rows, []string{name.IRI, fmt.Sprint(n)})
		}
		if len(rows) == 0 {
			color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "No collections")
			return nil
		}
		return renderTable(cmd.OutOrStdout(), []string{"Collection", "Statements"}, rows)
	})
}

func runCreate(cmd *cobra.Command, args []string) error {
	name, err := parseCollection(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if err := s.store.CreateCollection(ctx, name); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", name.IRI)
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	name, err := parseCollection(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if err := s.store.DeleteCollection(ctx, name); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", name.IRI)
		return nil
	})
}

func runDetails(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		details := s.store.Details()
		keys := slices.Sorted(maps.Keys(details))
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, details[k]})
		}
		return renderTable(cmd.OutOrStdout(), []string{"Key", "Value"}, rows)
	})
}

// renderTable writes rows as a markdown table.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
