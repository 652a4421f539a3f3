package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"blogsmith/internal/blog"
)

func TestHTML_ComputedOncePerArticle(t *testing.T) {
	calls := 0
	r := New(func(_ context.Context, markdown string) (string, error) {
		calls++
		return "<p>converted</p>", nil
	})
	a := blog.NewArticle("t", "body")

	first := r.HTML(context.Background(), a)
	second := r.HTML(context.Background(), a)
	if first != "<p>converted</p>" || second != first {
		t.Fatalf("html: got first=%q second=%q", first, second)
	}
	if calls != 1 {
		t.Fatalf("converter calls: got=%d want=1", calls)
	}
	if a.RenderedHTML() != first {
		t.Fatalf("article cache not set: %q", a.RenderedHTML())
	}
}

func TestHTML_FallsBackToLocalRenderer(t *testing.T) {
	r := New(func(_ context.Context, _ string) (string, error) {
		return "", errors.New("backend down")
	})
	a := blog.NewArticle("t", "# 제목\n\n- one\n- two")
	html := r.HTML(context.Background(), a)
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<li>one</li>") {
		t.Fatalf("local rendering: got=%q", html)
	}
}

func TestHTML_CacheSurvivesNewArticleValue(t *testing.T) {
	calls := 0
	r := New(func(_ context.Context, _ string) (string, error) {
		calls++
		return "<p>x</p>", nil
	})
	a := blog.NewArticle("t", "body")
	r.HTML(context.Background(), a)

	// A fresh Article value with the same id (e.g. reloaded state) hits
	// the renderer cache instead of the backend.
	clone := &blog.Article{ID: a.ID, Title: a.Title, MarkdownBody: a.MarkdownBody}
	r.HTML(context.Background(), clone)
	if calls != 1 {
		t.Fatalf("converter calls: got=%d want=1", calls)
	}
}
