package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lectern-ai/lectern/internal/course"
)

// ingestConcurrency bounds how many course files are parsed and embedded
// in parallel during directory ingestion.
const ingestConcurrency = 4

// IngestFile parses one course file and indexes it, replacing any previous
// content under the same course title. It returns the indexed chunk count.
func (s *System) IngestFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	doc, err := course.ParseDocument(f, filepath.Base(path))
	if err != nil {
		return 0, err
	}

	chunks := s.chunker.ChunkDocument(doc)
	if err := s.store.UpsertCourse(ctx, doc, chunks); err != nil {
		return 0, err
	}

	s.logger.Info("ingested course file",
		"path", path, "title", doc.Title, "chunks", len(chunks))
	return len(chunks), nil
}

// IngestDirectory indexes every .txt file in dir. Files are processed
// concurrently; a malformed document is logged and skipped without
// aborting the rest. Returns the number of courses and chunks indexed.
func (s *System) IngestDirectory(ctx context.Context, dir string) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("reading docs dir %s: %w", dir, err)
	}

	var (
		mu      sync.Mutex
		courses int
		chunks  int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		g.Go(func() error {
			n, err := s.IngestFile(ctx, path)
			if err != nil {
				if errors.Is(err, course.ErrMalformedDocument) {
					s.logger.Warn("skipping malformed course file", "path", path, "error", err)
					return nil
				}
				return err
			}
			mu.Lock()
			courses++
			chunks += n
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return courses, chunks, fmt.Errorf("ingesting %s: %w", dir, err)
	}
	s.logger.Info("ingested course directory", "dir", dir, "courses", courses, "chunks", chunks)
	return courses, chunks, nil
}
