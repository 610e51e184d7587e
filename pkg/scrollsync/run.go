package scrollsync

import (
	"context"
)

// EventKind identifies what triggered a recompute.
type EventKind int

const (
	// EventScroll follows a scroll of the text pane.
	EventScroll EventKind = iota
	// EventResize follows a change of either pane's size.
	EventResize
	// EventImagesLoaded signals that every page image has settled.
	EventImagesLoaded
	// EventRefresh redraws the current position.
	EventRefresh
)

func (k EventKind) String() string {
	switch k {
	case EventScroll:
		return "scroll"
	case EventResize:
		return "resize"
	case EventImagesLoaded:
		return "images-loaded"
	case EventRefresh:
		return "refresh"
	}
	return "unknown"
}

// Event asks the engine to recompute.
type Event struct {
	Kind EventKind

	// Update, if set, runs on the engine goroutine before the recompute.
	// Use it to scroll or resize the panes without racing the engine.
	Update func()

	// After, if set, runs on the engine goroutine once the recompute is
	// done, while the image pane still shows its result.
	After func(Result)

	// Reply, if set, receives the recompute result. It should be buffered;
	// the engine drops the result when nobody is ready to receive it and
	// the context ends.
	Reply chan<- Result
}

// Result is the outcome of the recompute triggered by an event.
type Result struct {
	Frame Frame
	Err   error
}

// Barrier is satisfied by pages.Set.
type Barrier interface {
	Done() <-chan struct{}
}

// Run processes events until ctx is done or events is closed. Queued
// events are coalesced: their updates run in order, followed by a single
// recompute whose result goes to every waiting reply channel. Before the
// images-loaded event, recomputes are deferred and replies carry an
// IMAGES_NOT_LOADED error.
func (e *Engine) Run(ctx context.Context, events <-chan Event) error {
	return e.run(ctx, nil, events)
}

// WaitAndRun is Run with the images-loaded event raised by b. Events that
// arrive while b is pending are handled as deferred.
func (e *Engine) WaitAndRun(ctx context.Context, b Barrier, events <-chan Event) error {
	return e.run(ctx, b.Done(), events)
}

func (e *Engine) run(ctx context.Context, loaded <-chan struct{}, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-loaded:
			loaded = nil
			e.handle(ctx, []Event{{Kind: EventImagesLoaded}})
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			batch, closed := drain(ev, events)
			e.handle(ctx, batch)
			if closed {
				return nil
			}
		}
	}
}

// drain collects ev and any events already queued behind it.
func drain(ev Event, events <-chan Event) ([]Event, bool) {
	batch := []Event{ev}
	for {
		select {
		case next, ok := <-events:
			if !ok {
				return batch, true
			}
			batch = append(batch, next)
		default:
			return batch, false
		}
	}
}

func (e *Engine) handle(ctx context.Context, batch []Event) {
	for _, ev := range batch {
		if ev.Update != nil {
			ev.Update()
		}
		if ev.Kind == EventImagesLoaded && !e.loaded {
			e.MarkLoaded()
			e.Logger.Debug("page images loaded", "pages", e.pages.Len())
		}
	}

	f, err := e.Recompute(ctx)
	res := Result{Frame: f, Err: err}
	for _, ev := range batch {
		if ev.After != nil {
			ev.After(res)
		}
	}
	for _, ev := range batch {
		if ev.Reply == nil {
			continue
		}
		select {
		case ev.Reply <- res:
		case <-ctx.Done():
		}
	}
}
