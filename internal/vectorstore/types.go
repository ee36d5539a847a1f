package vectorstore

// Collection names inside the chromem database.
const (
	catalogCollection = "course_catalog"
	contentCollection = "course_content"
)

// Metadata keys attached to content chunks.
const (
	metaCourseTitle  = "course_title"
	metaLessonNumber = "lesson_number"
	metaChunkIndex   = "chunk_index"
	metaInstructor   = "instructor"
	metaLink         = "link"
)

// CourseMeta is the catalog entry for one ingested course. It carries what
// semantic search alone cannot answer: the full outline and lesson links.
type CourseMeta struct {
	Title      string       `json:"title"`
	Link       string       `json:"link,omitempty"`
	Instructor string       `json:"instructor,omitempty"`
	Lessons    []LessonMeta `json:"lessons"`
	ChunkCount int          `json:"chunk_count"`
}

// LessonMeta is one outline row of a course.
type LessonMeta struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	Link       string `json:"link,omitempty"`
	ChunkCount int    `json:"chunk_count"`
}

// SearchResult is one content chunk returned by semantic search.
type SearchResult struct {
	Text         string  `json:"text"`
	CourseTitle  string  `json:"course_title"`
	LessonNumber int     `json:"lesson_number"`
	LessonLink   string  `json:"lesson_link,omitempty"`
	Similarity   float32 `json:"similarity"`
}

// Stats summarizes the indexed corpus.
type Stats struct {
	TotalCourses int      `json:"total_courses"`
	TotalChunks  int      `json:"total_chunks"`
	CourseTitles []string `json:"course_titles"`
}
