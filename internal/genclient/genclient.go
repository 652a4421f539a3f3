// Package genclient is the pipeline's client of the proxy backend: the
// single-shot generation actions, the chunked article stream, and the
// persistence call. It performs no retries; a failed stage is re-invoked
// by the user.
package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"blogsmith/internal/blog"
	"blogsmith/internal/prompt"
	"blogsmith/internal/util/jsonutil"
)

// ErrEnvelopeMismatch reports streamed article text that lacks the title
// or content delimiter pair. Terminal for the stage; no partial recovery.
var ErrEnvelopeMismatch = errors.New("article response missing title/content envelope")

// BackendError is a non-success status from either proxy endpoint.
// Message carries the server-supplied error when present.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// Client issues requests to the proxy for one session.
type Client struct {
	baseURL string
	http    *http.Client

	// Optional per-user credentials forwarded with each request; the
	// proxy falls back to its own env when these are empty.
	GeminiAPIKey     string
	NotionAPIKey     string
	NotionDatabaseID string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client-side timeout: article streams run until the model
		// finishes; cancellation comes from ctx.
		http: &http.Client{},
	}
}

func (c *Client) Topics(ctx context.Context, category, userInput string) ([]string, error) {
	var out struct {
		Topics []string `json:"topics"`
	}
	req := map[string]any{"action": "generate_topics", "category": category, "userInput": userInput, "apiKey": c.GeminiAPIKey}
	if err := c.post(ctx, "/api/generate", req, &out); err != nil {
		return nil, err
	}
	return out.Topics, nil
}

func (c *Client) Keywords(ctx context.Context, topic string) ([]string, error) {
	var out struct {
		Keywords []string `json:"keywords"`
	}
	req := map[string]any{"action": "generate_keywords", "topic": topic, "apiKey": c.GeminiAPIKey}
	if err := c.post(ctx, "/api/generate", req, &out); err != nil {
		return nil, err
	}
	return out.Keywords, nil
}

func (c *Client) Tags(ctx context.Context, topic string) ([]string, error) {
	var out struct {
		Tags []string `json:"tags"`
	}
	req := map[string]any{"action": "generate_tags", "topic": topic, "apiKey": c.GeminiAPIKey}
	if err := c.post(ctx, "/api/generate", req, &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

func (c *Client) ConvertHTML(ctx context.Context, markdown string) (string, error) {
	var out struct {
		HTML string `json:"html"`
	}
	req := map[string]any{"action": "convert_to_html", "markdown": markdown, "apiKey": c.GeminiAPIKey}
	if err := c.post(ctx, "/api/generate", req, &out); err != nil {
		return "", err
	}
	return out.HTML, nil
}

// ArticleRequest is the full input of the article-generation stage.
type ArticleRequest struct {
	Topic          string
	Keywords       []string
	Tags           []string
	TargetAudience string
	AuthorInsight  string
	Length         blog.LengthClass
	Category       string

	// OnChunk, when set, observes each fragment as it arrives. Purely
	// informational; assembly does not depend on it.
	OnChunk func(chunk string)
}

var (
	titleRe   = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(prompt.TitleStart) + `(.*?)` + regexp.QuoteMeta(prompt.TitleEnd))
	contentRe = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(prompt.ContentStart) + `(.*?)` + regexp.QuoteMeta(prompt.ContentEnd))
)

// ExtractEnvelope runs the single post-stream extraction pass over the
// assembled text. Both delimiter pairs must be present.
func ExtractEnvelope(full string) (title, content string, err error) {
	tm := titleRe.FindStringSubmatch(full)
	cm := contentRe.FindStringSubmatch(full)
	if tm == nil || cm == nil {
		return "", "", ErrEnvelopeMismatch
	}
	return strings.TrimSpace(tm[1]), strings.TrimSpace(cm[1]), nil
}

// GenerateArticle issues the streaming generation request, concatenates
// the arriving fragments byte-faithfully in order, and extracts the
// title/content envelope once the stream has ended.
func (c *Client) GenerateArticle(ctx context.Context, req ArticleRequest) (*blog.Article, error) {
	body := map[string]any{
		"action":         "generate_blog_post",
		"topic":          req.Topic,
		"keywords":       req.Keywords,
		"tags":           req.Tags,
		"targetAudience": req.TargetAudience,
		"authorInsight":  req.AuthorInsight,
		"wordCount":      string(req.Length),
		"category":       req.Category,
		"apiKey":         c.GeminiAPIKey,
	}
	resp, err := c.do(ctx, "/api/generate", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeBackendError(resp, fmt.Sprintf("블로그 글 생성 중 서버 오류가 발생했습니다 (%d)", resp.StatusCode))
	}

	var full strings.Builder
	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			fragment := string(buf[:n])
			full.WriteString(fragment)
			if req.OnChunk != nil {
				req.OnChunk(fragment)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	title, content, err := ExtractEnvelope(full.String())
	if err != nil {
		return nil, err
	}
	return blog.NewArticle(title, content), nil
}

func (c *Client) Repurpose(ctx context.Context, title, content string, kind blog.RepurposeKind) (blog.Repurposed, error) {
	var out struct {
		Script string            `json:"script"`
		Ideas  []blog.ShortsIdea `json:"ideas"`
		Posts  []string          `json:"posts"`
	}
	req := map[string]any{"action": "repurpose_content", "title": title, "content": content, "type": string(kind), "apiKey": c.GeminiAPIKey}
	if err := c.post(ctx, "/api/generate", req, &out); err != nil {
		return blog.Repurposed{}, err
	}
	return blog.Repurposed{Kind: kind, Script: out.Script, Ideas: out.Ideas, Posts: out.Posts}, nil
}

func (c *Client) Translate(ctx context.Context, title, content string, lang blog.Language) (blog.Translation, error) {
	var out struct {
		TranslatedTitle   string `json:"translatedTitle"`
		TranslatedContent string `json:"translatedContent"`
	}
	req := map[string]any{"action": "translate_content", "title": title, "content": content, "language": string(lang), "apiKey": c.GeminiAPIKey}
	if err := c.post(ctx, "/api/generate", req, &out); err != nil {
		return blog.Translation{}, err
	}
	return blog.Translation{Title: out.TranslatedTitle, Content: out.TranslatedContent}, nil
}

// SaveContext carries the selection fields the destination store records
// as page properties alongside the article.
type SaveContext struct {
	Category      string
	UserInputIdea string
	Tags          []string
}

// Save persists the article through the proxy and returns the new page id.
func (c *Client) Save(ctx context.Context, article *blog.Article, sc SaveContext) (string, error) {
	var out struct {
		PageID string `json:"pageId"`
	}
	req := map[string]any{
		"action": "save_post",
		"post": map[string]any{
			"id":              article.ID,
			"title":           article.Title,
			"markdownContent": article.MarkdownBody,
		},
		"context": map[string]any{
			"category":      sc.Category,
			"userInputIdea": sc.UserInputIdea,
			"tags":          sc.Tags,
		},
		"apiKey":     c.NotionAPIKey,
		"databaseId": c.NotionDatabaseID,
	}
	if err := c.post(ctx, "/api/notion", req, &out); err != nil {
		return "", err
	}
	return out.PageID, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeBackendError(resp, "AI 연동 중 서버 오류가 발생했습니다. 환경 변수 설정을 확인하세요.")
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) do(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := jsonutil.MarshalNoEscape(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

func decodeBackendError(resp *http.Response, fallback string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	msg := fallback
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &BackendError{Status: resp.StatusCode, Message: msg}
}
