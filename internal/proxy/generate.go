// Package proxy implements the two backend endpoints the pipeline talks
// to: /api/generate for every model action (including the chunked article
// stream and its websocket variant) and /api/notion for persistence.
// Credentials live here, never in the pipeline.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"blogsmith/internal/blog"
	"blogsmith/internal/llm"
	"blogsmith/internal/prompt"
	"blogsmith/internal/util/jsonutil"
)

// generateRequest is the union of every action's parameters.
type generateRequest struct {
	Action string `json:"action"`
	APIKey string `json:"apiKey"`

	Category  string `json:"category"`
	UserInput string `json:"userInput"`

	Topic    string `json:"topic"`
	Markdown string `json:"markdown"`

	Keywords       []string `json:"keywords"`
	Tags           []string `json:"tags"`
	TargetAudience string   `json:"targetAudience"`
	AuthorInsight  string   `json:"authorInsight"`
	WordCount      string   `json:"wordCount"`

	Title    string `json:"title"`
	Content  string `json:"content"`
	Type     string `json:"type"`
	Language string `json:"language"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// newClient resolves the effective credential (request key wins over the
// server env) and opens a provider connection for this one request.
func (s *Server) newClient(ctx context.Context, requestKey string) (llm.TextClient, error) {
	key := requestKey
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		return nil, errMissingCredential
	}
	return s.newLLM(ctx, key)
}

var errMissingCredential = fmt.Errorf("Server configuration error: Gemini API Key is missing. Please provide it in settings or server env.")

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	cli, err := s.newClient(r.Context(), req.APIKey)
	if err != nil {
		log.Printf("generate: credential resolution failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer cli.Close()

	if req.Action == "generate_blog_post" {
		s.streamArticle(w, r, cli, req)
		return
	}

	out, err := runAction(r.Context(), cli, req)
	if err != nil {
		log.Printf("generate: action %s failed: %v", req.Action, err)
		writeError(w, http.StatusInternalServerError, "Gemini API Error: "+err.Error())
		return
	}
	if out == nil {
		writeError(w, http.StatusBadRequest, "Unknown action: "+req.Action)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// runAction executes one single-shot action and returns the response
// object, or (nil, nil) for an unknown action.
func runAction(ctx context.Context, cli llm.TextClient, req generateRequest) (any, error) {
	switch req.Action {
	case "generate_topics":
		text, err := cli.GenerateText(ctx, prompt.TopicIdeas(req.Category, req.UserInput))
		if err != nil {
			return nil, err
		}
		var out struct {
			Topics []string `json:"topics"`
		}
		if err := jsonutil.Decode(text, &out, "Failed to parse topic ideas."); err != nil {
			return nil, err
		}
		if len(out.Topics) == 0 {
			return nil, &jsonutil.MalformedError{Msg: "Failed to parse topic ideas."}
		}
		return map[string]any{"topics": out.Topics}, nil

	case "generate_keywords":
		text, err := cli.GenerateText(ctx, prompt.Keywords(req.Topic))
		if err != nil {
			return nil, err
		}
		var out struct {
			Keywords []string `json:"keywords"`
		}
		if err := jsonutil.Decode(text, &out, "Failed to parse keywords."); err != nil {
			return nil, err
		}
		if len(out.Keywords) == 0 {
			return nil, &jsonutil.MalformedError{Msg: "Failed to parse keywords."}
		}
		return map[string]any{"keywords": out.Keywords}, nil

	case "generate_tags":
		text, err := cli.GenerateText(ctx, prompt.Tags(req.Topic))
		if err != nil {
			return nil, err
		}
		var out struct {
			Tags []string `json:"tags"`
		}
		if err := jsonutil.Decode(text, &out, "Failed to parse tags."); err != nil {
			return nil, err
		}
		if len(out.Tags) == 0 {
			return nil, &jsonutil.MalformedError{Msg: "Failed to parse tags."}
		}
		return map[string]any{"tags": out.Tags}, nil

	case "convert_to_html":
		text, err := cli.GenerateText(ctx, prompt.ConvertHTML(req.Markdown))
		if err != nil {
			return nil, err
		}
		return map[string]any{"html": strings.TrimSpace(text)}, nil

	case "repurpose_content":
		return runRepurpose(ctx, cli, req)

	case "translate_content":
		text, err := cli.GenerateText(ctx, prompt.Translate(req.Title, req.Content, blog.Language(req.Language)))
		if err != nil {
			return nil, err
		}
		var out struct {
			TranslatedTitle   string `json:"translatedTitle"`
			TranslatedContent string `json:"translatedContent"`
		}
		msg := fmt.Sprintf("Failed to parse %s translation.", req.Language)
		if err := jsonutil.Decode(text, &out, msg); err != nil {
			return nil, err
		}
		if out.TranslatedTitle == "" || out.TranslatedContent == "" {
			return nil, &jsonutil.MalformedError{Msg: msg}
		}
		return map[string]any{"translatedTitle": out.TranslatedTitle, "translatedContent": out.TranslatedContent}, nil
	}
	return nil, nil
}

func runRepurpose(ctx context.Context, cli llm.TextClient, req generateRequest) (any, error) {
	kind := blog.RepurposeKind(req.Type)
	if !kind.Valid() {
		return nil, fmt.Errorf("unsupported repurpose type %q", req.Type)
	}
	text, err := cli.GenerateText(ctx, prompt.Repurpose(req.Title, req.Content, kind))
	if err != nil {
		return nil, err
	}
	switch kind {
	case blog.RepurposeYoutubeScript:
		var out struct {
			Script string `json:"script"`
		}
		if err := jsonutil.Decode(text, &out, "Failed to parse script"); err != nil {
			return nil, err
		}
		if out.Script == "" {
			return nil, &jsonutil.MalformedError{Msg: "Failed to parse script"}
		}
		return map[string]any{"script": out.Script}, nil
	case blog.RepurposeShortsIdeas:
		var out struct {
			Ideas []blog.ShortsIdea `json:"ideas"`
		}
		if err := jsonutil.Decode(text, &out, "Failed to parse ideas"); err != nil {
			return nil, err
		}
		if len(out.Ideas) == 0 {
			return nil, &jsonutil.MalformedError{Msg: "Failed to parse ideas"}
		}
		return map[string]any{"ideas": out.Ideas}, nil
	default:
		var out struct {
			Posts []string `json:"posts"`
		}
		if err := jsonutil.Decode(text, &out, "Failed to parse posts"); err != nil {
			return nil, err
		}
		if len(out.Posts) == 0 {
			return nil, &jsonutil.MalformedError{Msg: "Failed to parse posts"}
		}
		return map[string]any{"posts": out.Posts}, nil
	}
}

func articlePrompt(req generateRequest) string {
	return prompt.Article(prompt.ArticleParams{
		Topic:          req.Topic,
		Keywords:       req.Keywords,
		Tags:           req.Tags,
		TargetAudience: req.TargetAudience,
		AuthorInsight:  req.AuthorInsight,
		Length:         blog.LengthClass(req.WordCount),
		Category:       req.Category,
	})
}

// streamArticle forwards model fragments to the response as they arrive.
// Once a fragment has been written the status is committed, so a
// mid-stream failure can only be logged; the connection ends short and
// the client's envelope check rejects the truncated text.
func (s *Server) streamArticle(w http.ResponseWriter, r *http.Request, cli llm.TextClient, req generateRequest) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)

	wrote := false
	err := cli.StreamText(r.Context(), articlePrompt(req), func(chunk string) error {
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		wrote = true
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		log.Printf("generate: article stream failed (wrote=%v): %v", wrote, err)
		if !wrote {
			writeError(w, http.StatusInternalServerError, "스트림 생성에 실패했습니다.")
		}
	}
}
