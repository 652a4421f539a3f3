// Package render computes an article's HTML view lazily: once per
// article id, through the backend converter when it works, and through a
// local goldmark rendering when it does not.
package render

import (
	"bytes"
	"context"
	"log"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"blogsmith/internal/blog"
)

// Converter turns GFM markdown into HTML, typically via the proxy's
// convert_to_html action.
type Converter func(ctx context.Context, markdown string) (string, error)

const cacheSize = 64

type Renderer struct {
	convert Converter
	cache   *lru.Cache[string, string]
	local   goldmark.Markdown
}

func New(convert Converter) *Renderer {
	cache, _ := lru.New[string, string](cacheSize)
	return &Renderer{
		convert: convert,
		cache:   cache,
		local:   goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// HTML returns the rendering for article, computing and caching it on
// first use. A converter failure falls back to the local renderer rather
// than surfacing an error; the HTML view is a convenience, not a stage.
func (r *Renderer) HTML(ctx context.Context, article *blog.Article) string {
	if html := article.RenderedHTML(); html != "" {
		return html
	}
	if html, ok := r.cache.Get(article.ID); ok {
		article.SetRenderedHTML(html)
		return html
	}

	html := ""
	if r.convert != nil {
		converted, err := r.convert(ctx, article.MarkdownBody)
		if err != nil {
			log.Printf("render: backend conversion failed, using local renderer: %v", err)
		} else {
			html = converted
		}
	}
	if html == "" {
		html = r.localHTML(article.MarkdownBody)
	}

	r.cache.Add(article.ID, html)
	article.SetRenderedHTML(html)
	return html
}

func (r *Renderer) localHTML(markdown string) string {
	var buf bytes.Buffer
	if err := r.local.Convert([]byte(markdown), &buf); err != nil {
		log.Printf("render: local conversion failed: %v", err)
		return ""
	}
	return buf.String()
}
