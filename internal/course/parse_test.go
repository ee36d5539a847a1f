package course

import (
	"errors"
	"strings"
	"testing"
)

const sampleDoc = `Course Title: Building RAG Systems
Course Link: https://example.com/courses/rag
Course Instructor: Ada Lovelace

Lesson 0: Introduction
Lesson Link: https://example.com/courses/rag/lesson/0
Welcome to the course. This lesson covers the big picture.

Lesson 1: Embeddings
Embeddings map text into vectors.
Similar texts land close together.
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(sampleDoc), "rag.txt")
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}

	if doc.Title != "Building RAG Systems" {
		t.Errorf("Title = %q, want %q", doc.Title, "Building RAG Systems")
	}
	if doc.Link != "https://example.com/courses/rag" {
		t.Errorf("Link = %q", doc.Link)
	}
	if doc.Instructor != "Ada Lovelace" {
		t.Errorf("Instructor = %q", doc.Instructor)
	}
	if len(doc.Lessons) != 2 {
		t.Fatalf("len(Lessons) = %d, want 2", len(doc.Lessons))
	}

	first := doc.Lessons[0]
	if first.Number != 0 || first.Title != "Introduction" {
		t.Errorf("lesson 0 = %d %q", first.Number, first.Title)
	}
	if first.Link != "https://example.com/courses/rag/lesson/0" {
		t.Errorf("lesson 0 link = %q", first.Link)
	}
	if !strings.HasPrefix(first.Body, "Welcome to the course.") {
		t.Errorf("lesson 0 body = %q", first.Body)
	}
	if strings.HasSuffix(first.Body, "\n") {
		t.Errorf("lesson body not trimmed: %q", first.Body)
	}

	second := doc.Lessons[1]
	if second.Number != 1 || second.Title != "Embeddings" {
		t.Errorf("lesson 1 = %d %q", second.Number, second.Title)
	}
	if second.Link != "" {
		t.Errorf("lesson 1 link = %q, want empty", second.Link)
	}
	if !strings.Contains(second.Body, "Similar texts land close together.") {
		t.Errorf("lesson 1 body = %q", second.Body)
	}
}

func TestParseDocumentMissingTitle(t *testing.T) {
	input := "Course Link: https://example.com\n\nLesson 0: Intro\nsome text\n"
	_, err := ParseDocument(strings.NewReader(input), "broken.txt")
	if !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("error = %v, want ErrMalformedDocument", err)
	}
	if !strings.Contains(err.Error(), "broken.txt") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestParseDocumentHeaderOnly(t *testing.T) {
	input := "Course Title: Lonely Course\nCourse Instructor: Nobody\n"
	doc, err := ParseDocument(strings.NewReader(input), "lonely.txt")
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if doc.Title != "Lonely Course" {
		t.Errorf("Title = %q", doc.Title)
	}
	if len(doc.Lessons) != 0 {
		t.Errorf("len(Lessons) = %d, want 0", len(doc.Lessons))
	}
}

func TestParseDocumentEmptyLessonBody(t *testing.T) {
	input := "Course Title: Sparse\n\nLesson 0: Placeholder\n\nLesson 1: Real\ncontent here\n"
	doc, err := ParseDocument(strings.NewReader(input), "sparse.txt")
	if err != nil {
		t.Fatalf("ParseDocument() error = %v", err)
	}
	if len(doc.Lessons) != 2 {
		t.Fatalf("len(Lessons) = %d, want 2", len(doc.Lessons))
	}
	if doc.Lessons[0].Body != "" {
		t.Errorf("lesson 0 body = %q, want empty", doc.Lessons[0].Body)
	}
	if doc.Lessons[1].Body != "content here" {
		t.Errorf("lesson 1 body = %q", doc.Lessons[1].Body)
	}
}
