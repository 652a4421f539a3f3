package proxy

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"blogsmith/internal/notion"
)

type notionRequest struct {
	Action string `json:"action"`
	Post   struct {
		ID              string `json:"id"`
		Title           string `json:"title"`
		MarkdownContent string `json:"markdownContent"`
	} `json:"post"`
	Context    notion.SaveContext `json:"context"`
	APIKey     string             `json:"apiKey"`
	DatabaseID string             `json:"databaseId"`
}

func (s *Server) handleNotion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	var req notionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	apiKey := req.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("NOTION_API_KEY")
	}
	databaseID := req.DatabaseID
	if databaseID == "" {
		databaseID = os.Getenv("NOTION_DATABASE_ID")
	}
	if apiKey == "" || databaseID == "" {
		log.Printf("notion: credential or database id missing")
		writeError(w, http.StatusInternalServerError,
			"Server configuration error: Notion API Key or Database ID is missing. Please provide them in settings or server env.")
		return
	}

	switch req.Action {
	case "save_post":
		if req.Post.MarkdownContent == "" {
			writeError(w, http.StatusBadRequest, "Post content is required.")
			return
		}
		saver := s.newNotion(apiKey, databaseID)
		pageID, err := saver.SavePost(r.Context(), req.Post.Title, req.Post.MarkdownContent, req.Context)
		if err != nil {
			log.Printf("notion: save_post failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Notion API Error: "+err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"pageId": pageID})
	default:
		writeError(w, http.StatusBadRequest, "Unknown action: "+req.Action)
	}
}
