package rdfio

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/aleksaelezovic/ligature/pkg/store"
)

// FileLoader parses files in parallel, each into its own scratch store, and
// merges the results.
type FileLoader struct {
	// ContentType overrides detection by file extension when set.
	ContentType string

	// Workers bounds the number of files parsed at once; <= 0 means one.
	Workers int

	Logger *slog.Logger
}

// LoadFiles parses every file and returns the merged store. Blank nodes of
// different files never share identity. The first failure cancels the rest.
func (l *FileLoader) LoadFiles(ctx context.Context, paths []string) (*store.Store, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := l.Workers
	if workers <= 0 {
		workers = 1
	}

	result := store.New(store.WithLogger(logger))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scratch, n, err := l.loadFile(path, logger)
			if err != nil {
				return err
			}
			result.AddModel(scratch)
			logger.Info("loaded file", slog.String("path", path), slog.Int("statements", n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (l *FileLoader) loadFile(path string, logger *slog.Logger) (*store.Store, int, error) {
	contentType := l.ContentType
	if contentType == "" {
		var err error
		if contentType, err = ContentTypeForFile(path); err != nil {
			return nil, 0, err
		}
	}
	parser, err := NewParser(contentType)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scratch := store.New(store.WithLogger(logger))
	n, err := Load(parser, f, scratch)
	if err != nil {
		return nil, n, fmt.Errorf("%s: %w", path, err)
	}
	return scratch, n, nil
}
