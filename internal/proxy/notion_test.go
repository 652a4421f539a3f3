package proxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postNotion(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/notion", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleNotion(rec, req)
	return rec
}

func TestHandleNotion_MethodNotAllowed(t *testing.T) {
	s := testServer(nil, &fakeSaver{})
	req := httptest.NewRequest(http.MethodGet, "/api/notion", nil)
	rec := httptest.NewRecorder()
	s.handleNotion(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: got=%d want=405", rec.Code)
	}
}

func TestHandleNotion_MissingCredentials(t *testing.T) {
	t.Setenv("NOTION_API_KEY", "")
	t.Setenv("NOTION_DATABASE_ID", "")
	s := testServer(nil, &fakeSaver{})
	rec := postNotion(t, s, `{"action":"save_post","post":{"markdownContent":"x"}}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got=%d want=500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "configuration error") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestHandleNotion_MissingContentIsBadRequest(t *testing.T) {
	saver := &fakeSaver{}
	s := testServer(nil, saver)
	rec := postNotion(t, s, `{"action":"save_post","apiKey":"k","databaseId":"d","post":{"title":"t"}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d want=400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Post content is required.") {
		t.Fatalf("body: %s", rec.Body.String())
	}
	if saver.calls != 0 {
		t.Fatalf("saver must not be called, got %d", saver.calls)
	}
}

func TestHandleNotion_SaveCreated(t *testing.T) {
	saver := &fakeSaver{pageID: "page-7"}
	s := testServer(nil, saver)
	rec := postNotion(t, s, `{"action":"save_post","apiKey":"k","databaseId":"d","post":{"title":"t","markdownContent":"# hi"},"context":{"category":"tech","tags":["a"]}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got=%d want=201 body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		PageID string `json:"pageId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.PageID != "page-7" {
		t.Fatalf("pageId: got=%q", out.PageID)
	}
}

func TestHandleNotion_SaveFailurePassesMessage(t *testing.T) {
	saver := &fakeSaver{err: errors.New("parent database not found")}
	s := testServer(nil, saver)
	rec := postNotion(t, s, `{"action":"save_post","apiKey":"k","databaseId":"d","post":{"markdownContent":"x"}}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got=%d want=500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "parent database not found") {
		t.Fatalf("body: %s", rec.Body.String())
	}
}

func TestHandleNotion_UnknownAction(t *testing.T) {
	s := testServer(nil, &fakeSaver{})
	rec := postNotion(t, s, `{"action":"delete_post","apiKey":"k","databaseId":"d"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got=%d want=400", rec.Code)
	}
}
