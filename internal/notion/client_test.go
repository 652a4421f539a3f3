package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// manyBlocksMarkdown produces a body that maps to exactly n paragraph blocks.
func manyBlocksMarkdown(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "paragraph %d\n\n", i)
	}
	return sb.String()
}

func TestSavePost_BatchesBlocksOfOneHundred(t *testing.T) {
	type call struct {
		method string
		path   string
		count  int
		first  string
	}
	var calls []call

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Children []Block `json:"children"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		first := ""
		if len(body.Children) > 0 {
			first = body.Children[0].Paragraph.RichText[0].Text.Content
		}
		calls = append(calls, call{r.Method, r.URL.Path, len(body.Children), first})
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"id": "page-1"})
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient("secret", "db-1")
	c.SetBaseURL(srv.URL)

	pageID, err := c.SavePost(context.Background(), "t", manyBlocksMarkdown(250), SaveContext{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if pageID != "page-1" {
		t.Fatalf("pageID: got=%q want=page-1", pageID)
	}

	if len(calls) != 3 {
		t.Fatalf("calls: got=%d want=3", len(calls))
	}
	if calls[0].method != http.MethodPost || calls[0].path != "/pages" || calls[0].count != 100 || calls[0].first != "paragraph 0" {
		t.Fatalf("create call: got=%+v", calls[0])
	}
	if calls[1].method != http.MethodPatch || calls[1].path != "/blocks/page-1/children" || calls[1].count != 100 || calls[1].first != "paragraph 100" {
		t.Fatalf("first append: got=%+v", calls[1])
	}
	if calls[2].count != 50 || calls[2].first != "paragraph 200" {
		t.Fatalf("second append: got=%+v", calls[2])
	}
}

func TestSavePost_SmallBodySingleCall(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body struct {
			Properties map[string]json.RawMessage `json:"properties"`
			Parent     map[string]string          `json:"parent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Parent["database_id"] != "db-1" {
			t.Errorf("parent: got=%v", body.Parent)
		}
		for _, want := range []string{"Title", "Category", "Idea", "Tags"} {
			if _, ok := body.Properties[want]; !ok {
				t.Errorf("missing property %s", want)
			}
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "page-2"})
	}))
	defer srv.Close()

	c := NewClient("secret", "db-1")
	c.SetBaseURL(srv.URL)
	sc := SaveContext{Category: "tech", UserInputIdea: "idea", Tags: []string{"x"}}
	if _, err := c.SavePost(context.Background(), "t", "hello", sc); err != nil {
		t.Fatalf("save: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls: got=%d want=1", calls)
	}
}

func TestSavePost_SurfacesAPIMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"body failed validation"}`))
	}))
	defer srv.Close()

	c := NewClient("secret", "db-1")
	c.SetBaseURL(srv.URL)
	_, err := c.SavePost(context.Background(), "t", "hello", SaveContext{})
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type: got=%T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Message != "body failed validation" {
		t.Fatalf("api error: got=%+v", apiErr)
	}
}

func TestPageProperties_OmitsEmptyContext(t *testing.T) {
	props := pageProperties("only title", SaveContext{})
	if len(props) != 1 {
		t.Fatalf("properties: got=%d want=1 (%v)", len(props), props)
	}
	if _, ok := props["Title"]; !ok {
		t.Fatal("missing Title property")
	}
}
