package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scalevision/scaleread/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering is deferred to the deployment's reverse proxy.
		return true
	},
}

// StreamRequest is one inference request over the WebSocket transport. Image
// carries the encoded image bytes (base64 in JSON).
type StreamRequest struct {
	Image     []byte `json:"image"`
	RequestID string `json:"request_id,omitempty"`
}

// StreamResponse is the per-request reply on the stream.
type StreamResponse struct {
	Status    string      `json:"status"` // "completed" or "error"
	Result    *ReadResult `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// streamHandler upgrades the connection and serves a read-per-message loop,
// for callers pointing a live camera at a scale.
func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()
	slog.Info("websocket connection established", "remote_addr", r.RemoteAddr)

	s.handleStreamConnection(conn)
}

func (s *Server) handleStreamConnection(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType == websocket.TextMessage {
			s.handleStreamMessage(conn, data)
		}
	}
}

func (s *Server) handleStreamMessage(conn *websocket.Conn, data []byte) {
	var req StreamRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendStreamError(conn, "", fmt.Sprintf("invalid request: %v", err))
		return
	}
	requestID := req.RequestID
	if requestID == "" {
		requestID = strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	if len(req.Image) == 0 {
		s.sendStreamError(conn, requestID, "no image data")
		return
	}

	img, _, err := utils.DecodeImageMax(bytes.NewReader(req.Image), s.maxImageSize)
	if err != nil {
		s.sendStreamError(conn, requestID, fmt.Sprintf("decode failed: %v", err))
		return
	}
	res, err := s.pipeline.Process(img)
	if err != nil {
		readRequestsTotal.WithLabelValues("websocket", "error").Inc()
		s.sendStreamError(conn, requestID, err.Error())
		return
	}

	result := resultFromInference(res, img.Width, img.Height)
	observeResult("websocket", result)
	s.sendStreamResponse(conn, StreamResponse{
		Status:    "completed",
		Result:    result,
		RequestID: requestID,
	})
}

func (s *Server) sendStreamError(conn *websocket.Conn, requestID, message string) {
	s.sendStreamResponse(conn, StreamResponse{
		Status:    "error",
		Error:     message,
		RequestID: requestID,
	})
}

func (s *Server) sendStreamResponse(conn *websocket.Conn, resp StreamResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		slog.Error("marshaling stream response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		slog.Error("writing stream response", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
