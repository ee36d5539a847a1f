// Package course defines the course document model and turns raw course
// files into indexable chunks.
package course

// Document represents one ingested course. Immutable after parsing.
type Document struct {
	Title      string // unique identifier across the corpus
	Link       string
	Instructor string
	Lessons    []Lesson
}

// Lesson belongs to exactly one Document. Lesson numbers are non-negative
// and unique within their document, but not required to be contiguous.
type Lesson struct {
	Number int
	Title  string
	Link   string
	Body   string
}

// Chunk is a contiguous slice of a lesson's body text. Chunks are derived
// data: regenerable from the Document, never edited in place.
type Chunk struct {
	Text         string
	CourseTitle  string
	LessonNumber int
	Index        int // sequence index within the whole document
}
