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

// OutlineToolName is the Genkit tool name for course outlines.
const OutlineToolName = "get_course_outline"

// Outliner is the slice of the vector index the outline tool needs.
type Outliner interface {
	CourseOutline(ctx context.Context, name string) (*vectorstore.CourseMeta, error)
}

// OutlineInput defines the arguments of get_course_outline.
type OutlineInput struct {
	CourseName string `json:"course_name" jsonschema_description:"Course title; partial names are matched to the closest course"`
}

// OutlineTool returns a course's full lesson list and metadata, for
// questions about course structure rather than content.
type OutlineTool struct {
	store  Outliner
	logger *slog.Logger
}

// NewOutlineTool creates the course outline tool.
func NewOutlineTool(store Outliner, logger *slog.Logger) (*OutlineTool, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutlineTool{store: store, logger: logger}, nil
}

func (t *OutlineTool) Name() string { return OutlineToolName }

func (t *OutlineTool) Description() string {
	return "Get a course's outline: title, link, instructor and the complete lesson list. " +
		"Use this for questions about what a course covers or how it is structured."
}

// Define registers the tool with Genkit so the model sees its schema.
func (t *OutlineTool) Define(g *genkit.Genkit) ai.Tool {
	return genkit.DefineTool(g, t.Name(), t.Description(),
		func(ctx *ai.ToolContext, input OutlineInput) (string, error) {
			inv, err := t.run(ctx, input)
			if err != nil {
				return "", err
			}
			return inv.Text, nil
		})
}

// Execute runs the lookup from raw tool request arguments.
func (t *OutlineTool) Execute(ctx context.Context, raw json.RawMessage) (*Invocation, error) {
	var input OutlineInput
	if err := decodeInput(raw, &input); err != nil {
		return nil, err
	}
	return t.run(ctx, input)
}

func (t *OutlineTool) run(ctx context.Context, input OutlineInput) (*Invocation, error) {
	if strings.TrimSpace(input.CourseName) == "" {
		return nil, errors.New("course_name is required")
	}
	t.logger.Info("outline tool called", "course", input.CourseName)

	meta, err := t.store.CourseOutline(ctx, input.CourseName)
	if err != nil {
		if errors.Is(err, vectorstore.ErrNoCourseMatch) {
			return &Invocation{Text: fmt.Sprintf("No course found matching '%s'", input.CourseName)}, nil
		}
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Course Title: %s\n", meta.Title)
	if meta.Link != "" {
		fmt.Fprintf(&sb, "Course Link: %s\n", meta.Link)
	}
	if meta.Instructor != "" {
		fmt.Fprintf(&sb, "Instructor: %s\n", meta.Instructor)
	}
	sb.WriteString("\nLessons:\n")
	for _, l := range meta.Lessons {
		fmt.Fprintf(&sb, "Lesson %d: %s\n", l.Number, l.Title)
	}

	return &Invocation{
		Text:    sb.String(),
		Sources: []Source{{Label: meta.Title, Link: meta.Link}},
	}, nil
}
