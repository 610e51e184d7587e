package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/papersync/pkg/buildinfo"
	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/scrollsync"
)

type ctxKey struct{}

// withSession resolves {id} and stores the session in the request context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := errors.ValidateSessionID(id); err != nil {
			writeError(w, err)
			return
		}
		sess, ok := s.sessions.get(id)
		if !ok {
			writeError(w, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session {
	return r.Context().Value(ctxKey{}).(*session)
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	}
	return context.WithCancel(r.Context())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"sessions":     s.sessions.len(),
		"pages":        s.set.Len(),
		"pages_loaded": s.set.Loaded(),
		"ready":        s.set.Ready(),
		"build":        buildinfo.Get(),
	})
}

type documentResponse struct {
	Title        string          `json:"title,omitempty"`
	HeaderHeight float64         `json:"header_height"`
	Pages        int             `json:"pages"`
	PagesLoaded  int             `json:"pages_loaded"`
	Ready        bool            `json:"ready"`
	Blocks       []blockResponse `json:"blocks"`
}

type blockResponse struct {
	ID     string  `json:"id,omitempty"`
	Kind   string  `json:"kind,omitempty"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Text   string  `json:"text,omitempty"`
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	resp := documentResponse{
		Title:        s.doc.Title,
		HeaderHeight: s.doc.HeaderHeight,
		Pages:        s.set.Len(),
		PagesLoaded:  s.set.Loaded(),
		Ready:        s.set.Ready(),
		Blocks:       make([]blockResponse, len(s.blocks)),
	}
	for i, b := range s.blocks {
		resp.Blocks[i] = blockResponse{ID: b.ID, Kind: string(b.Kind), Top: b.Top, Bottom: b.Bottom, Text: b.Text}
	}
	writeJSON(w, http.StatusOK, resp)
}

type sessionResponse struct {
	ID            string  `json:"id"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	TextHeight    float64 `json:"text_height"`
	PadTop        float64 `json:"pad_top"`
	ContentHeight float64 `json:"content_height"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var size sessionSize
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&size); err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode session request"))
			return
		}
	}
	sess, err := s.newSession(size)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("session created", "session", sess.id)

	size = s.withDefaults(size)
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:            sess.id,
		Width:         size.Width,
		Height:        size.Height,
		TextHeight:    size.TextHeight,
		PadTop:        size.TextHeight / 4,
		ContentHeight: sess.text.ContentHeight(),
	})
}

// scrollRequest moves or resizes a session's panes. ScrollTop is absolute;
// By is relative and applied after it. Any size field makes the event a
// resize.
type scrollRequest struct {
	ScrollTop *float64 `json:"scroll_top,omitempty"`
	By        float64  `json:"by,omitempty"`
	sessionSize
}

func (req scrollRequest) event(sess *session) scrollsync.Event {
	kind := scrollsync.EventScroll
	if req.Width > 0 || req.Height > 0 || req.TextHeight > 0 {
		kind = scrollsync.EventResize
	}
	return scrollsync.Event{
		Kind: kind,
		Update: func() {
			if kind == scrollsync.EventResize {
				cs := sess.window.ClientSize()
				w, h := int(cs.Width), int(cs.Height)
				if req.Width > 0 {
					w = req.Width
				}
				if req.Height > 0 {
					h = req.Height
				}
				sess.window.SetClientSize(w, h)
				if req.TextHeight > 0 {
					sess.text.Resize(req.TextHeight)
				}
			}
			if req.ScrollTop != nil {
				sess.text.ScrollTo(*req.ScrollTop)
			}
			if req.By != 0 {
				sess.text.ScrollBy(req.By)
			}
		},
	}
}

type frameResponse struct {
	Seq       uint64  `json:"seq"`
	Block     int     `json:"block"`
	Phase     string  `json:"phase"`
	Rate      float64 `json:"rate"`
	Zoom      float64 `json:"zoom"`
	PanX      float64 `json:"pan_x"`
	PanY      float64 `json:"pan_y"`
	Page      int     `json:"page"`
	EyeLevel  float64 `json:"eye_level"`
	ScrollTop float64 `json:"scroll_top"`
	Skipped   string  `json:"skipped,omitempty"`
}

func newFrameResponse(res scrollsync.Result, scrollTop float64) frameResponse {
	f := res.Frame
	fr := frameResponse{
		Seq:       f.Seq,
		Block:     f.Block,
		Phase:     f.Position.Phase.String(),
		Rate:      f.Position.Rate,
		Zoom:      f.Transform.Zoom,
		PanX:      f.Transform.PanX,
		PanY:      f.Transform.PanY,
		Page:      f.Page,
		EyeLevel:  f.EyeLevel,
		ScrollTop: scrollTop,
	}
	if res.Err != nil {
		fr.Skipped = errors.UserMessage(res.Err)
	}
	return fr
}

// apply posts an event and converts the result: skipped recomputes still
// answer with the last frame, as long as there is one.
func (s *Server) apply(ctx context.Context, sess *session, ev scrollsync.Event) (frameResponse, error) {
	var scrollTop float64
	after := ev.After
	ev.After = func(res scrollsync.Result) {
		scrollTop = sess.text.ScrollTop()
		if after != nil {
			after(res)
		}
	}
	res, err := sess.post(ctx, ev)
	if err != nil {
		return frameResponse{}, err
	}
	if res.Err != nil && (!errors.Skippable(res.Err) || res.Frame.Seq == 0) {
		return frameResponse{}, res.Err
	}
	return newFrameResponse(res, scrollTop), nil
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	var req scrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode scroll request"))
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	fr, err := s.apply(ctx, sess, req.event(sess))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fr)
}

func (s *Server) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	ctx, cancel := s.requestContext(r)
	defer cancel()

	var buf bytes.Buffer
	var encErr error
	_, err := s.apply(ctx, sess, scrollsync.Event{
		Kind: scrollsync.EventRefresh,
		After: func(res scrollsync.Result) {
			if res.Frame.Seq > 0 {
				encErr = sess.window.EncodePNG(&buf)
			}
		},
	})
	if err == nil {
		err = encErr
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.sessions.remove(sess.id)
	s.logger.Info("session closed", "session", sess.id)
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeParse:
		return http.StatusBadRequest
	case errors.ErrCodeSessionNotFound, errors.ErrCodeNotFound, errors.ErrCodePageNotFound:
		return http.StatusNotFound
	case errors.ErrCodeImagesNotLoaded, errors.ErrCodeNoMatch, errors.ErrCodeDegenerateRegion:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, status, errorResponse{Code: string(code), Error: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
