package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"blogsmith/internal/util/jsonutil"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	notionVersion  = "2022-06-28"

	// The pages endpoint accepts at most this many children per call;
	// overflow goes through follow-up append calls of the same size.
	maxBlocksPerCall = 100
)

// APIError is a non-success response from the Notion API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the Notion REST API for one credential pair.
type Client struct {
	apiKey     string
	databaseID string
	baseURL    string
	http       *http.Client
}

func NewClient(apiKey, databaseID string) *Client {
	return &Client{
		apiKey:     apiKey,
		databaseID: databaseID,
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
}

// SetBaseURL points the client at a different API root. Tests use this.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SaveContext carries the selection fields that become page properties.
type SaveContext struct {
	Category      string   `json:"category"`
	UserInputIdea string   `json:"userInputIdea"`
	Tags          []string `json:"tags"`
}

// pageProperties builds the database properties for a new page. Title is
// always present; the rest only when the originating context had them.
func pageProperties(title string, sc SaveContext) map[string]any {
	props := map[string]any{
		"Title": map[string]any{
			"title": []map[string]any{{"text": map[string]any{"content": title}}},
		},
	}
	if sc.Category != "" {
		props["Category"] = map[string]any{"select": map[string]any{"name": sc.Category}}
	}
	if sc.UserInputIdea != "" {
		props["Idea"] = map[string]any{
			"rich_text": []map[string]any{{"text": map[string]any{"content": sc.UserInputIdea}}},
		}
	}
	if len(sc.Tags) > 0 {
		multi := make([]map[string]any, len(sc.Tags))
		for i, tag := range sc.Tags {
			multi[i] = map[string]any{"name": tag}
		}
		props["Tags"] = map[string]any{"multi_select": multi}
	}
	return props
}

// SavePost converts the markdown body to blocks and creates one page.
// The first hundred blocks accompany page creation; the remainder is
// appended in order in fixed-size batches. A failed append leaves the
// page partially populated; there is no rollback.
func (c *Client) SavePost(ctx context.Context, title, markdown string, sc SaveContext) (string, error) {
	blocks := MarkdownToBlocks(markdown)

	first := blocks
	if len(first) > maxBlocksPerCall {
		first = blocks[:maxBlocksPerCall]
	}
	pageID, err := c.createPage(ctx, pageProperties(title, sc), first)
	if err != nil {
		return "", err
	}
	for i := maxBlocksPerCall; i < len(blocks); i += maxBlocksPerCall {
		end := i + maxBlocksPerCall
		if end > len(blocks) {
			end = len(blocks)
		}
		if err := c.appendChildren(ctx, pageID, blocks[i:end]); err != nil {
			return pageID, err
		}
	}
	return pageID, nil
}

func (c *Client) createPage(ctx context.Context, properties map[string]any, children []Block) (string, error) {
	body := map[string]any{
		"parent":     map[string]any{"database_id": c.databaseID},
		"properties": properties,
		"children":   children,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/pages", body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) appendChildren(ctx context.Context, pageID string, children []Block) error {
	body := map[string]any{"children": children}
	return c.call(ctx, http.MethodPatch, "/blocks/"+pageID+"/children", body, nil)
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	// Article bodies carry markdown links; keep URLs unescaped.
	payload, err := jsonutil.MarshalNoEscape(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		var apiBody struct {
			Message string `json:"message"`
		}
		msg := ""
		if err := json.Unmarshal(raw, &apiBody); err == nil {
			msg = apiBody.Message
		}
		if msg == "" {
			msg = string(raw)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
