package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lectern-ai/lectern/internal/course"
	"github.com/lectern-ai/lectern/internal/generate"
	"github.com/lectern-ai/lectern/internal/rag"
	"github.com/lectern-ai/lectern/internal/session"
	"github.com/lectern-ai/lectern/internal/testutil"
	"github.com/lectern-ai/lectern/internal/tools"
	"github.com/lectern-ai/lectern/internal/vectorstore"
)

func newTestServer(t *testing.T) (*Server, *rag.System) {
	t.Helper()

	g := testutil.NewGenkit(t)
	mock := testutil.NewMockLLM("a generic answer")
	mock.RegisterModel(g)
	emb := testutil.NewMockEmbedder(8)

	store, err := vectorstore.New(vectorstore.Config{
		Embedder:   emb.RegisterEmbedder(g),
		MaxResults: 5,
		Logger:     testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("vectorstore.New() error = %v", err)
	}

	registry := tools.NewRegistry(g)
	search, _ := tools.NewSearchTool(store, testutil.QuietLogger())
	if err := registry.Register(search); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	gen, err := generate.New(generate.Config{
		Genkit:    g,
		ModelName: "mock/test-model",
		Registry:  registry,
		Logger:    testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("generate.New() error = %v", err)
	}

	system, err := rag.New(rag.Config{
		Store:     store,
		Chunker:   course.NewChunker(800, 100),
		Generator: gen,
		Sessions:  session.NewStore(2, testutil.QuietLogger()),
		Logger:    testutil.QuietLogger(),
	})
	if err != nil {
		t.Fatalf("rag.New() error = %v", err)
	}

	srv, err := NewServer(system, testutil.QuietLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return srv, system
}

func TestQueryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"query": "hello there"}`
	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var ans rag.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &ans); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if ans.Text != "a generic answer" {
		t.Errorf("answer = %q", ans.Text)
	}
	if ans.SessionID == "" {
		t.Error("no session id in response")
	}

	// Reusing the returned session id keeps the conversation.
	body = `{"query": "and again", "session_id": "` + ans.SessionID + `"}`
	req = httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var second rag.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if second.SessionID != ans.SessionID {
		t.Errorf("session id changed: %q -> %q", ans.SessionID, second.SessionID)
	}
}

func TestQueryEndpointValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	for name, body := range map[string]string{
		"empty query":  `{"query": "  "}`,
		"invalid json": `{not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestCoursesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp CoursesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.TotalCourses != 0 || len(resp.CourseTitles) != 0 {
		t.Errorf("fresh index reported %+v", resp)
	}
}

func TestDeleteSessionEndpoint(t *testing.T) {
	srv, system := newTestServer(t)

	ans, err := system.Query(context.Background(), "hello", "")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+ans.SessionID, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+ans.SessionID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete status = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
