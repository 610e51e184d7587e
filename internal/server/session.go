package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/papersync/pkg/document"
	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/pane"
	"github.com/matzehuels/papersync/pkg/pane/raster"
	"github.com/matzehuels/papersync/pkg/scrollsync"
)

// session is one viewer. text and window belong to the engine goroutine.
type session struct {
	id     string
	text   *document.Pane
	window *raster.Window
	engine *scrollsync.Engine
	events chan scrollsync.Event
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	lastUsed time.Time
}

func (s *session) touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *session) close() {
	s.cancel()
	<-s.done
}

// post sends ev to the engine and waits for the result.
func (s *session) post(ctx context.Context, ev scrollsync.Event) (scrollsync.Result, error) {
	reply := make(chan scrollsync.Result, 1)
	ev.Reply = reply
	select {
	case s.events <- ev:
	case <-s.done:
		return scrollsync.Result{}, errors.New(errors.ErrCodeSessionNotFound, "session %s closed", s.id)
	case <-ctx.Done():
		return scrollsync.Result{}, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "post %s", ev.Kind)
	}
	select {
	case res := <-reply:
		s.touch()
		return res, nil
	case <-s.done:
		return scrollsync.Result{}, errors.New(errors.ErrCodeSessionNotFound, "session %s closed", s.id)
	case <-ctx.Done():
		return scrollsync.Result{}, errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "wait for %s", ev.Kind)
	}
}

// sessionSize is the requested pane geometry.
type sessionSize struct {
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	TextHeight float64 `json:"text_height,omitempty"`
}

func (s *Server) newSession(size sessionSize) (*session, error) {
	if s.cfg.MaxSessions > 0 && s.sessions.len() >= s.cfg.MaxSessions {
		return nil, errors.New(errors.ErrCodeInvalidInput, "session limit %d reached", s.cfg.MaxSessions)
	}
	size = s.withDefaults(size)
	if size.Width <= 0 || size.Height <= 0 || size.TextHeight <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid pane size %dx%d text %v", size.Width, size.Height, size.TextHeight)
	}

	id := uuid.NewString()
	window := raster.NewWindow(size.Width, size.Height)
	text := document.NewPane(s.blocks, size.TextHeight)
	renderer := pane.NewRenderer(window, window, s.set)
	opts := []scrollsync.Option{
		scrollsync.WithLogger(s.logger.With("session", id[:8])),
		scrollsync.WithHeaderHeight(s.doc.HeaderHeight),
		scrollsync.WithOverlay(s.cfg.Overlay),
	}
	if s.set.Ready() {
		opts = append(opts, scrollsync.WithImagesLoaded())
	}
	engine := scrollsync.NewEngine(text, s.set, renderer, opts...)

	ctx, cancel := context.WithCancel(s.ctx)
	sess := &session{
		id:       id,
		text:     text,
		window:   window,
		engine:   engine,
		events:   make(chan scrollsync.Event),
		cancel:   cancel,
		done:     make(chan struct{}),
		lastUsed: time.Now(),
	}
	go func() {
		defer close(sess.done)
		if err := engine.WaitAndRun(ctx, s.set, sess.events); err != nil && ctx.Err() == nil {
			s.logger.Error("session engine stopped", "session", id, "err", err)
		}
	}()
	s.sessions.add(sess)
	return sess, nil
}

func (s *Server) withDefaults(size sessionSize) sessionSize {
	if size.Width == 0 {
		size.Width = s.cfg.Width
	}
	if size.Height == 0 {
		size.Height = s.cfg.Height
	}
	if size.TextHeight == 0 {
		size.TextHeight = s.cfg.TextHeight
		if size.TextHeight == 0 {
			size.TextHeight = float64(size.Height)
		}
	}
	return size
}

// sessionStore indexes live sessions by id.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (st *sessionStore) add(s *session) {
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
}

func (st *sessionStore) get(id string) (*session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *sessionStore) remove(id string) (*session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.close()
	}
	return s, ok
}

func (st *sessionStore) len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// evictIdle closes sessions unused since cutoff and returns how many.
func (st *sessionStore) evictIdle(cutoff time.Time) int {
	st.mu.Lock()
	var stale []*session
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()
	for _, s := range stale {
		s.close()
	}
	return len(stale)
}

func (st *sessionStore) closeAll() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*session)
	st.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}
