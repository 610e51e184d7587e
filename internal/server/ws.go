package server

import (
	"bytes"
	"encoding/base64"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/scrollsync"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type string `json:"type"` // "scroll", "resize" or "refresh"
	scrollRequest
	Image bool `json:"image,omitempty"` // attach the frame as a PNG data URI
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type  string         `json:"type"` // "frame" or "error"
	Frame *frameResponse `json:"frame,omitempty"`
	Image string         `json:"image,omitempty"`
	Code  string         `json:"code,omitempty"`
	Error string         `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "session", sess.id, "err", err)
		return
	}
	defer conn.Close()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", "session", sess.id, "err", err)
			}
			return
		}

		var ev scrollsync.Event
		switch req.Type {
		case "scroll", "resize":
			ev = req.event(sess)
		case "refresh":
			ev = scrollsync.Event{Kind: scrollsync.EventRefresh}
		default:
			s.sendWS(conn, errorMessage(errors.New(errors.ErrCodeInvalidInput, "unknown message type %q", req.Type)))
			continue
		}

		var img bytes.Buffer
		if req.Image {
			ev.After = func(res scrollsync.Result) {
				if res.Frame.Seq > 0 {
					_ = sess.window.EncodePNG(&img)
				}
			}
		}

		ctx, cancel := s.requestContext(r)
		fr, err := s.apply(ctx, sess, ev)
		cancel()
		if err != nil {
			s.sendWS(conn, errorMessage(err))
			if errors.Is(err, errors.ErrCodeSessionNotFound) {
				return
			}
			continue
		}

		resp := wsResponse{Type: "frame", Frame: &fr}
		if img.Len() > 0 {
			resp.Image = "data:image/png;base64," + base64.StdEncoding.EncodeToString(img.Bytes())
		}
		s.sendWS(conn, resp)
	}
}

func errorMessage(err error) wsResponse {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return wsResponse{Type: "error", Code: string(code), Error: errors.UserMessage(err)}
}

func (s *Server) sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		s.logger.Warn("websocket write", "err", err)
	}
}
