package proxy

import (
	"context"
	"net/http"
	"os"

	"blogsmith/internal/llm"
	"blogsmith/internal/notion"
)

// PostSaver is the slice of the Notion client the handler needs.
type PostSaver interface {
	SavePost(ctx context.Context, title, markdown string, sc notion.SaveContext) (string, error)
}

// Server wires the proxy handlers. The factory fields exist so tests can
// substitute fakes; production wiring comes from New.
type Server struct {
	newLLM    func(ctx context.Context, apiKey string) (llm.TextClient, error)
	newNotion func(apiKey, databaseID string) PostSaver
}

func New() *Server {
	return &Server{
		newLLM: func(ctx context.Context, apiKey string) (llm.TextClient, error) {
			return llm.New(ctx, os.Getenv("LLM_PROVIDER"), apiKey, os.Getenv("LLM_MODEL"))
		},
		newNotion: func(apiKey, databaseID string) PostSaver {
			return notion.NewClient(apiKey, databaseID)
		},
	}
}

// Routes returns the proxy mux.
func Routes(s *Server) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/generate/ws", s.handleGenerateWS)
	mux.HandleFunc("/api/notion", s.handleNotion)
	return mux
}
