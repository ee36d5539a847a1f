package course

import "unicode"

// Chunker splits lesson bodies into overlapping segments sized for the
// embedding model. Sizes are measured in runes.
type Chunker struct {
	// MaxSize is the maximum chunk length. Every chunk except the final
	// remainder of a lesson is at most MaxSize runes.
	MaxSize int

	// Overlap is how far each chunk rewinds into the tail of its
	// predecessor, anchored at a word boundary when one exists.
	Overlap int
}

// NewChunker returns a Chunker, falling back to the package defaults for
// non-positive sizes. Overlap is clamped below MaxSize so splitting always
// makes progress.
func NewChunker(maxSize, overlap int) Chunker {
	if maxSize <= 0 {
		maxSize = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize / 2
	}
	return Chunker{MaxSize: maxSize, Overlap: overlap}
}

// ChunkDocument splits every lesson body of doc into chunks. The chunk
// index is the sequence position across the whole document, so ids derived
// from (title, index) are stable for a given document content.
func (c Chunker) ChunkDocument(doc *Document) []Chunk {
	var chunks []Chunk
	index := 0
	for _, lesson := range doc.Lessons {
		for _, text := range c.Split(lesson.Body) {
			chunks = append(chunks, Chunk{
				Text:         text,
				CourseTitle:  doc.Title,
				LessonNumber: lesson.Number,
				Index:        index,
			})
			index++
		}
	}
	return chunks
}

// Split cuts text into segments of at most MaxSize runes. Cut points back
// off to the nearest preceding sentence end, then word boundary, so words
// are never split when the text contains any whitespace. Consecutive
// segments overlap by Overlap runes. An empty input yields no segments.
func (c Chunker) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var parts []string
	start := 0
	for {
		if n-start <= c.MaxSize {
			parts = append(parts, string(runes[start:]))
			return parts
		}

		end := start + c.MaxSize
		cut := sentenceCut(runes, start, end)
		if cut <= start {
			cut = wordCut(runes, start, end)
		}
		if cut <= start {
			cut = end // no boundary in the window, hard cut
		}
		parts = append(parts, string(runes[start:cut]))

		next := cut - c.Overlap
		if next <= start {
			next = start + 1 // guarantee forward progress
		}
		// Anchor the rewound position at the start of a word.
		if next > 0 && !unicode.IsSpace(runes[next-1]) {
			anchored := next
			for anchored < cut && !unicode.IsSpace(runes[anchored-1]) {
				anchored++
			}
			if anchored < cut {
				next = anchored
			}
		}
		start = next
	}
}

// sentenceCut returns the position just after the last sentence boundary
// (terminal punctuation followed by whitespace) in runes[start:end], or -1.
func sentenceCut(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		if unicode.IsSpace(runes[i]) && isSentenceEnd(runes[i-1]) {
			return i + 1
		}
	}
	return -1
}

// wordCut returns the position just after the last whitespace rune in
// runes[start:end], or -1 when the window holds a single unbroken word.
func wordCut(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return -1
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
