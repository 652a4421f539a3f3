package genclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blogsmith/internal/blog"
)

func TestExtractEnvelope_OrderPreservingAssembly(t *testing.T) {
	fragments := []string{"[TITLE_START]A", "[TITLE_END][CONTENT_START]B", "C[CONTENT_END]"}
	full := strings.Join(fragments, "")
	title, content, err := ExtractEnvelope(full)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if title != "A" || content != "BC" {
		t.Fatalf("got title=%q content=%q want A/BC", title, content)
	}
}

func TestExtractEnvelope_MissingDelimiterIsFatal(t *testing.T) {
	_, _, err := ExtractEnvelope("[TITLE_START]A[TITLE_END][CONTENT_START]B")
	if !errors.Is(err, ErrEnvelopeMismatch) {
		t.Fatalf("error: got=%v want ErrEnvelopeMismatch", err)
	}
}

func TestGenerateArticle_AssemblesChunkedStream(t *testing.T) {
	chunks := []string{"[TITLE_START]스트리밍 제목", "[TITLE_END][CONTENT_START]첫 조각 ", "둘째 조각[CONTENT_END]"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["action"] != "generate_blog_post" {
			t.Errorf("action: got=%v", req["action"])
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fl := w.(http.Flusher)
		for _, c := range chunks {
			w.Write([]byte(c))
			fl.Flush()
			time.Sleep(5 * time.Millisecond)
		}
	}))
	defer srv.Close()

	var observed []string
	c := New(srv.URL)
	article, err := c.GenerateArticle(context.Background(), ArticleRequest{
		Topic:   "주제",
		OnChunk: func(chunk string) { observed = append(observed, chunk) },
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if article.Title != "스트리밍 제목" {
		t.Fatalf("title: got=%q", article.Title)
	}
	if article.MarkdownBody != "첫 조각 둘째 조각" {
		t.Fatalf("body: got=%q", article.MarkdownBody)
	}
	if article.ID == "" {
		t.Fatal("article id not assigned")
	}
	if strings.Join(observed, "") != strings.Join(chunks, "") {
		t.Fatalf("observed chunks lost or reordered: %q", observed)
	}
}

func TestGenerateArticle_EnvelopeMismatchProducesNoArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[TITLE_START]only a title[TITLE_END] and no content markers"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	article, err := c.GenerateArticle(context.Background(), ArticleRequest{Topic: "t"})
	if !errors.Is(err, ErrEnvelopeMismatch) {
		t.Fatalf("error: got=%v want ErrEnvelopeMismatch", err)
	}
	if article != nil {
		t.Fatalf("article must be nil on envelope mismatch, got %+v", article)
	}
}

func TestPost_BackendErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "Gemini API Error: quota exceeded"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Topics(context.Background(), "", "")
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("error type: got=%T", err)
	}
	if be.Status != http.StatusInternalServerError || be.Message != "Gemini API Error: quota exceeded" {
		t.Fatalf("backend error: got=%+v", be)
	}
}

func TestPost_BackendErrorFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Keywords(context.Background(), "topic")
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("error type: got=%T", err)
	}
	if be.Message == "" || strings.Contains(be.Message, "html") {
		t.Fatalf("fallback message: got=%q", be.Message)
	}
}

func TestSave_ForwardsCredentialsAndContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		if req["action"] != "save_post" || req["apiKey"] != "nk" || req["databaseId"] != "db" {
			t.Errorf("request: got=%v", req)
		}
		post := req["post"].(map[string]any)
		if post["markdownContent"] != "body" {
			t.Errorf("post: got=%v", post)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"pageId": "p-9"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.NotionAPIKey = "nk"
	c.NotionDatabaseID = "db"
	article := blog.NewArticle("t", "body")
	pageID, err := c.Save(context.Background(), article, SaveContext{Category: "tech"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if pageID != "p-9" {
		t.Fatalf("pageID: got=%q want=p-9", pageID)
	}
}
