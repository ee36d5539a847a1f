package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/lectern-ai/lectern/internal/vectorstore"
)

// SearchToolName is the Genkit tool name for course content search.
const SearchToolName = "search_course_content"

// Searcher is the slice of the vector index the search tool needs.
type Searcher interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int) ([]vectorstore.SearchResult, error)
}

// SearchInput defines the arguments of search_course_content.
type SearchInput struct {
	Query        string `json:"query" jsonschema_description:"What to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema_description:"Course title to search within; partial names are matched to the closest course"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema_description:"Specific lesson number to search within"`
}

// SearchTool retrieves course content chunks by semantic similarity, with
// optional course and lesson narrowing.
type SearchTool struct {
	store  Searcher
	logger *slog.Logger
}

// NewSearchTool creates the content search tool.
func NewSearchTool(store Searcher, logger *slog.Logger) (*SearchTool, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchTool{store: store, logger: logger}, nil
}

func (t *SearchTool) Name() string { return SearchToolName }

func (t *SearchTool) Description() string {
	return "Search course materials for specific content. " +
		"Supports fuzzy course name matching and optional lesson filtering. " +
		"Use this for questions about specific topics covered in the courses."
}

// Define registers the tool with Genkit so the model sees its schema.
func (t *SearchTool) Define(g *genkit.Genkit) ai.Tool {
	return genkit.DefineTool(g, t.Name(), t.Description(),
		func(ctx *ai.ToolContext, input SearchInput) (string, error) {
			inv, err := t.run(ctx, input)
			if err != nil {
				return "", err
			}
			return inv.Text, nil
		})
}

// Execute runs the search from raw tool request arguments.
func (t *SearchTool) Execute(ctx context.Context, raw json.RawMessage) (*Invocation, error) {
	var input SearchInput
	if err := decodeInput(raw, &input); err != nil {
		return nil, err
	}
	return t.run(ctx, input)
}

func (t *SearchTool) run(ctx context.Context, input SearchInput) (*Invocation, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, errors.New("query is required")
	}
	t.logger.Info("search tool called",
		"query", input.Query, "course", input.CourseName, "lesson", input.LessonNumber)

	results, err := t.store.Search(ctx, input.Query, input.CourseName, input.LessonNumber)
	if err != nil {
		// An unresolvable course name is an answer for the model, not a
		// failure of the tool.
		if errors.Is(err, vectorstore.ErrNoCourseMatch) {
			return &Invocation{Text: fmt.Sprintf("No course found matching '%s'", input.CourseName)}, nil
		}
		return nil, err
	}

	if len(results) == 0 {
		return &Invocation{Text: emptyResultMessage(input)}, nil
	}

	var sb strings.Builder
	sources := make([]Source, 0, len(results))
	seen := make(map[string]bool, len(results))
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := fmt.Sprintf("%s - Lesson %d", r.CourseTitle, r.LessonNumber)
		fmt.Fprintf(&sb, "[%s]\n%s", label, r.Text)
		// One citation per course/lesson, however many chunks it contributed.
		if !seen[label] {
			seen[label] = true
			sources = append(sources, Source{Label: label, Link: r.LessonLink})
		}
	}

	return &Invocation{Text: sb.String(), Sources: sources}, nil
}

func emptyResultMessage(input SearchInput) string {
	var sb strings.Builder
	sb.WriteString("No relevant content found")
	if input.CourseName != "" {
		fmt.Fprintf(&sb, " in course '%s'", input.CourseName)
	}
	if input.LessonNumber != nil {
		fmt.Fprintf(&sb, " in lesson %d", *input.LessonNumber)
	}
	sb.WriteString(".")
	return sb.String()
}
