package course

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedDocument indicates a course file whose header block is missing
// a required field. The error aborts ingestion of that single document only.
var ErrMalformedDocument = errors.New("malformed course document")

// Header keys of the plain-text course format.
const (
	headerTitle      = "Course Title:"
	headerLink       = "Course Link:"
	headerInstructor = "Course Instructor:"
	lessonLinkPrefix = "Lesson Link:"
)

// lessonHeaderRe matches lesson header lines such as "Lesson 3: Advanced Topics".
var lessonHeaderRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// ParseDocument reads one course file in the plain-text course format:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson <n>: <title>
//	Lesson Link: <url>
//	<body text...>
//
// The course title is required; link and instructor may be absent. Each
// lesson body runs until the next lesson header or end of input. name is
// used only for error messages.
func ParseDocument(r io.Reader, name string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &Document{}

	// Header block: scan until the first lesson header, picking up the
	// course fields in any order.
	var firstLessonLine string
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, headerTitle):
			doc.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, headerTitle))
		case strings.HasPrefix(trimmed, headerLink):
			doc.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, headerLink))
		case strings.HasPrefix(trimmed, headerInstructor):
			doc.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, headerInstructor))
		case lessonHeaderRe.MatchString(trimmed):
			firstLessonLine = trimmed
		}
		if firstLessonLine != "" {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if doc.Title == "" {
		return nil, fmt.Errorf("%w: %s: missing %q header", ErrMalformedDocument, name, headerTitle)
	}

	if firstLessonLine == "" {
		return doc, nil // header-only document, zero lessons
	}

	// Lesson blocks.
	current, err := newLesson(firstLessonLine)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, name, err)
	}
	var body strings.Builder
	bodyStarted := false

	flush := func() {
		current.Body = strings.TrimSpace(body.String())
		doc.Lessons = append(doc.Lessons, *current)
		body.Reset()
		bodyStarted = false
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if m := lessonHeaderRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			current, err = newLesson(trimmed)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, name, err)
			}
			continue
		}

		// An optional lesson link line directly follows the lesson header.
		if !bodyStarted && strings.HasPrefix(trimmed, lessonLinkPrefix) {
			current.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, lessonLinkPrefix))
			continue
		}

		if trimmed != "" {
			bodyStarted = true
		}
		if bodyStarted {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	flush()

	return doc, nil
}

// newLesson builds a Lesson from a matched lesson header line.
func newLesson(header string) (*Lesson, error) {
	m := lessonHeaderRe.FindStringSubmatch(header)
	if m == nil {
		return nil, fmt.Errorf("invalid lesson header %q", header)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("invalid lesson number in %q", header)
	}
	return &Lesson{Number: n, Title: strings.TrimSpace(m[2])}, nil
}
