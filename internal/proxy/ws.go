package proxy

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const generateWSWriteWait = 10 * time.Second

var generateWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type generateWSOutbound struct {
	Type    string `json:"type"`
	Chunk   string `json:"chunk,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleGenerateWS is the message-framed variant of the article stream:
// the client sends one generate_blog_post request as the first message
// and receives {type:"chunk"} frames in arrival order, terminated by
// {type:"done"} or {type:"error"}.
func (s *Server) handleGenerateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := generateWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	var req generateRequest
	if _, raw, err := conn.ReadMessage(); err != nil {
		return
	} else if err := json.Unmarshal(raw, &req); err != nil {
		writeWS(conn, generateWSOutbound{Type: "error", Message: "invalid json request"})
		return
	}
	if req.Action != "generate_blog_post" {
		writeWS(conn, generateWSOutbound{Type: "error", Message: "Unknown action: " + req.Action})
		return
	}

	cli, err := s.newClient(r.Context(), req.APIKey)
	if err != nil {
		writeWS(conn, generateWSOutbound{Type: "error", Message: err.Error()})
		return
	}
	defer cli.Close()

	err = cli.StreamText(r.Context(), articlePrompt(req), func(chunk string) error {
		return writeWS(conn, generateWSOutbound{Type: "chunk", Chunk: chunk})
	})
	if err != nil {
		log.Printf("generate ws: stream failed: %v", err)
		writeWS(conn, generateWSOutbound{Type: "error", Message: "스트림 생성에 실패했습니다."})
		return
	}
	writeWS(conn, generateWSOutbound{Type: "done"})
}

func writeWS(conn *websocket.Conn, out generateWSOutbound) error {
	if err := conn.SetWriteDeadline(time.Now().Add(generateWSWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(out)
}
