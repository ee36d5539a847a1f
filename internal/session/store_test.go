package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/lectern-ai/lectern/internal/testutil"
)

func TestHistoryBound(t *testing.T) {
	store := NewStore(2, testutil.QuietLogger())
	id := store.Create()

	for i := 1; i <= 5; i++ {
		store.Append(id, fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	history := store.History(id)
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	if history[0].Question != "question 4" || history[1].Question != "question 5" {
		t.Errorf("retained %q and %q, want the two newest", history[0].Question, history[1].Question)
	}
}

func TestAppendCreatesSession(t *testing.T) {
	store := NewStore(2, testutil.QuietLogger())

	store.Append("client-chosen-id", "hello", "hi there")

	history := store.History("client-chosen-id")
	if len(history) != 1 {
		t.Fatalf("len(history) = %d, want 1", len(history))
	}
	if history[0].Answer != "hi there" {
		t.Errorf("Answer = %q", history[0].Answer)
	}
}

func TestFormatHistory(t *testing.T) {
	store := NewStore(2, testutil.QuietLogger())
	id := store.Create()

	if got := store.FormatHistory(id); got != "" {
		t.Errorf("FormatHistory(empty) = %q, want empty", got)
	}

	store.Append(id, "What is RAG?", "Retrieval-augmented generation.")
	store.Append(id, "And chunking?", "Splitting text into overlapping pieces.")

	got := store.FormatHistory(id)
	if !strings.Contains(got, "User: What is RAG?") {
		t.Errorf("missing first question:\n%s", got)
	}
	if !strings.Contains(got, "Assistant: Splitting text into overlapping pieces.") {
		t.Errorf("missing second answer:\n%s", got)
	}
	if strings.Index(got, "What is RAG?") > strings.Index(got, "And chunking?") {
		t.Errorf("history out of order:\n%s", got)
	}
}

func TestDelete(t *testing.T) {
	store := NewStore(2, testutil.QuietLogger())
	id := store.Create()
	store.Append(id, "q", "a")

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := store.History(id); len(got) != 0 {
		t.Errorf("history survived delete: %v", got)
	}
	if err := store.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestConcurrentSessions(t *testing.T) {
	store := NewStore(2, testutil.QuietLogger())

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		ids[i] = store.Create()
	}
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				store.Append(id, fmt.Sprintf("q-%d-%d", i, j), "a")
				store.History(id)
				store.FormatHistory(id)
			}
		}(i, id)
	}
	wg.Wait()

	if store.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", store.Len())
	}
	for i, id := range ids {
		history := store.History(id)
		if len(history) != 2 {
			t.Fatalf("session %d len(history) = %d, want 2", i, len(history))
		}
		if !strings.HasPrefix(history[1].Question, fmt.Sprintf("q-%d-", i)) {
			t.Errorf("session %d holds foreign exchange %q", i, history[1].Question)
		}
	}
}
