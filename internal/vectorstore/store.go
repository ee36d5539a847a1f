package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/firebase/genkit/go/ai"
	chromem "github.com/philippgille/chromem-go"

	"github.com/lectern-ai/lectern/internal/course"
)

var (
	// ErrIndex wraps failures of the underlying vector database.
	ErrIndex = errors.New("vector index error")

	// ErrNoCourseMatch indicates a course name that resolved to nothing,
	// either because the catalog is empty or the name matched no entry.
	ErrNoCourseMatch = errors.New("no matching course")
)

// Store is the dual-collection vector index over course material. The
// catalog collection holds one document per course (content = title) and
// serves fuzzy course-name resolution; the content collection holds the
// chunked lesson text and serves retrieval.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	catalog    *chromem.Collection
	content    *chromem.Collection
	maxResults int
	logger     *slog.Logger

	mu      sync.RWMutex
	courses map[string]CourseMeta

	// titleLocks serializes the delete-and-reinsert sequence per course
	// title; upserts of distinct titles proceed in parallel.
	titleLocks map[string]*sync.Mutex
}

// Config holds the Store dependencies.
type Config struct {
	// Embedder produces the vectors for both collections.
	Embedder ai.Embedder

	// MaxResults caps how many chunks a single search returns.
	MaxResults int

	// Logger for debugging (nil = slog.Default()).
	Logger *slog.Logger
}

func (c Config) validate() error {
	if c.Embedder == nil {
		return errors.New("embedder is required")
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max results must be positive, got %d", c.MaxResults)
	}
	return nil
}

// New creates an in-memory Store. The index is derived data; it is rebuilt
// from the course files at startup rather than persisted across runs.
func New(cfg Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid vectorstore config: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	db := chromem.NewDB()
	embed := NewEmbeddingFunc(cfg.Embedder)

	catalog, err := db.GetOrCreateCollection(catalogCollection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("%w: create catalog collection: %v", ErrIndex, err)
	}
	content, err := db.GetOrCreateCollection(contentCollection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("%w: create content collection: %v", ErrIndex, err)
	}

	return &Store{
		catalog:    catalog,
		content:    content,
		maxResults: cfg.MaxResults,
		logger:     cfg.Logger,
		courses:    make(map[string]CourseMeta),
		titleLocks: make(map[string]*sync.Mutex),
	}, nil
}

func (s *Store) titleLock(title string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.titleLocks[title]
	if !ok {
		l = &sync.Mutex{}
		s.titleLocks[title] = l
	}
	return l
}

// UpsertCourse indexes one course: a catalog entry keyed by the exact title
// plus one content document per chunk. Re-ingesting a title replaces its
// previous chunks entirely, so stale chunks never survive an update.
func (s *Store) UpsertCourse(ctx context.Context, doc *course.Document, chunks []course.Chunk) error {
	if doc == nil || doc.Title == "" {
		return errors.New("document with a title is required")
	}

	// Concurrent upserts of the same title must not interleave their
	// delete and insert steps, or the chunk set ends up a mix of both.
	lock := s.titleLock(doc.Title)
	lock.Lock()
	defer lock.Unlock()

	if s.HasCourse(doc.Title) {
		if err := s.content.Delete(ctx, map[string]string{metaCourseTitle: doc.Title}, nil); err != nil {
			return fmt.Errorf("%w: delete stale chunks for %q: %v", ErrIndex, doc.Title, err)
		}
	}

	meta := map[string]string{}
	if doc.Instructor != "" {
		meta[metaInstructor] = doc.Instructor
	}
	if doc.Link != "" {
		meta[metaLink] = doc.Link
	}
	err := s.catalog.AddDocument(ctx, chromem.Document{
		ID:       doc.Title,
		Content:  doc.Title,
		Metadata: meta,
	})
	if err != nil {
		return fmt.Errorf("%w: add catalog entry %q: %v", ErrIndex, doc.Title, err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, ch := range chunks {
		docs = append(docs, chromem.Document{
			ID:      fmt.Sprintf("%s#%d", ch.CourseTitle, ch.Index),
			Content: ch.Text,
			Metadata: map[string]string{
				metaCourseTitle:  ch.CourseTitle,
				metaLessonNumber: strconv.Itoa(ch.LessonNumber),
				metaChunkIndex:   strconv.Itoa(ch.Index),
			},
		})
	}
	if len(docs) > 0 {
		if err := s.content.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return fmt.Errorf("%w: add chunks for %q: %v", ErrIndex, doc.Title, err)
		}
	}

	perLesson := make(map[int]int)
	for _, ch := range chunks {
		perLesson[ch.LessonNumber]++
	}
	lessons := make([]LessonMeta, 0, len(doc.Lessons))
	for _, l := range doc.Lessons {
		lessons = append(lessons, LessonMeta{
			Number:     l.Number,
			Title:      l.Title,
			Link:       l.Link,
			ChunkCount: perLesson[l.Number],
		})
	}
	s.mu.Lock()
	s.courses[doc.Title] = CourseMeta{
		Title:      doc.Title,
		Link:       doc.Link,
		Instructor: doc.Instructor,
		Lessons:    lessons,
		ChunkCount: len(chunks),
	}
	s.mu.Unlock()

	s.logger.Debug("indexed course", "title", doc.Title, "lessons", len(lessons), "chunks", len(chunks))
	return nil
}

// ResolveCourseName maps a partial or fuzzy course name to the exact title
// of the best-matching catalog entry. The match is purely semantic; there
// is no similarity floor, the top entry wins.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty course name", ErrNoCourseMatch)
	}
	if s.catalog.Count() == 0 {
		return "", fmt.Errorf("%w: no courses indexed", ErrNoCourseMatch)
	}

	results, err := s.catalog.Query(ctx, name, 1, nil, nil)
	if err != nil {
		return "", fmt.Errorf("%w: resolve %q: %v", ErrIndex, name, err)
	}
	if len(results) == 0 {
		return "", fmt.Errorf("%w: %q", ErrNoCourseMatch, name)
	}
	return results[0].ID, nil
}

// Search runs semantic retrieval over the content collection. A non-empty
// courseName is resolved against the catalog first and failure to resolve
// aborts the search with ErrNoCourseMatch before any content query runs.
// lessonNumber further narrows the match when non-nil.
func (s *Store) Search(ctx context.Context, query, courseName string, lessonNumber *int) ([]SearchResult, error) {
	where := map[string]string{}
	if courseName != "" {
		resolved, err := s.ResolveCourseName(ctx, courseName)
		if err != nil {
			return nil, err
		}
		where[metaCourseTitle] = resolved
	}
	if lessonNumber != nil {
		where[metaLessonNumber] = strconv.Itoa(*lessonNumber)
	}

	// chromem rejects nResults above the matching document count, so cap
	// the request by what the filters can possibly return.
	n := s.maxResults
	if bound := s.matchBound(where); bound < n {
		n = bound
	}
	if n == 0 {
		return nil, nil
	}

	results, err := s.content.Query(ctx, query, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrIndex, err)
	}

	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		lesson, _ := strconv.Atoi(r.Metadata[metaLessonNumber])
		out = append(out, SearchResult{
			Text:         r.Content,
			CourseTitle:  r.Metadata[metaCourseTitle],
			LessonNumber: lesson,
			LessonLink:   s.lessonLink(r.Metadata[metaCourseTitle], lesson),
			Similarity:   r.Similarity,
		})
	}
	return out, nil
}

// CourseOutline resolves name against the catalog and returns the matched
// course's metadata, including the full lesson list.
func (s *Store) CourseOutline(ctx context.Context, name string) (*CourseMeta, error) {
	title, err := s.ResolveCourseName(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.courses[title]
	if !ok {
		return nil, fmt.Errorf("%w: catalog entry %q has no metadata", ErrIndex, title)
	}
	out := meta
	out.Lessons = append([]LessonMeta(nil), meta.Lessons...)
	return &out, nil
}

// HasCourse reports whether a course with the exact title is indexed.
func (s *Store) HasCourse(title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.courses[title]
	return ok
}

// CourseTitles returns the indexed course titles in sorted order.
func (s *Store) CourseTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	titles := make([]string, 0, len(s.courses))
	for title := range s.courses {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// CourseCount returns the number of indexed courses.
func (s *Store) CourseCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}

// Stats summarizes the indexed corpus.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalCourses: len(s.courses),
		CourseTitles: make([]string, 0, len(s.courses)),
	}
	for title, meta := range s.courses {
		st.CourseTitles = append(st.CourseTitles, title)
		st.TotalChunks += meta.ChunkCount
	}
	sort.Strings(st.CourseTitles)
	return st
}

// matchBound returns an upper bound on how many content documents can
// match the metadata filter, derived from the catalog bookkeeping.
func (s *Store) matchBound(where map[string]string) int {
	title, byCourse := where[metaCourseTitle]
	lessonStr, byLesson := where[metaLessonNumber]
	lesson, _ := strconv.Atoi(lessonStr)

	s.mu.RLock()
	defer s.mu.RUnlock()

	bound := 0
	for _, meta := range s.courses {
		if byCourse && meta.Title != title {
			continue
		}
		if !byLesson {
			bound += meta.ChunkCount
			continue
		}
		for _, l := range meta.Lessons {
			if l.Number == lesson {
				bound += l.ChunkCount
			}
		}
	}
	return bound
}

func (s *Store) lessonLink(title string, lesson int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.courses[title]
	if !ok {
		return ""
	}
	for _, l := range meta.Lessons {
		if l.Number == lesson {
			return l.Link
		}
	}
	return ""
}
