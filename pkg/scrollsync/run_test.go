package scrollsync

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/locate"
	"github.com/matzehuels/papersync/pkg/pane"
	"github.com/matzehuels/papersync/pkg/pane/panetest"
)

func unloadedEngine(text *fakeText) *Engine {
	pages := blankPages(1)
	rec := panetest.NewRecorder(500, 400)
	return NewEngine(text, pages, pane.NewRenderer(rec, rec, pages))
}

func send(t *testing.T, events chan<- Event, ev Event) Result {
	t.Helper()
	reply := make(chan Result, 1)
	ev.Reply = reply
	select {
	case events <- ev:
	case <-time.After(time.Second):
		t.Fatal("engine not receiving events")
	}
	select {
	case res := <-reply:
		return res
	case <-time.After(time.Second):
		t.Fatal("no reply from engine")
	}
	return Result{}
}

func TestRunDefersUntilLoaded(t *testing.T) {
	text := &fakeText{client: 900, rects: []locate.LayoutRect{rect{0, 900, "0,100,100,300,300"}}}
	e := unloadedEngine(text)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan Event)
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, events) }()

	res := send(t, events, Event{Kind: EventScroll})
	if !errors.Is(res.Err, errors.ErrCodeImagesNotLoaded) {
		t.Fatalf("scroll before load: err = %v", res.Err)
	}

	res = send(t, events, Event{Kind: EventImagesLoaded})
	if res.Err != nil || res.Frame.Seq != 1 {
		t.Fatalf("images loaded: %v, %v", res.Frame, res.Err)
	}

	res = send(t, events, Event{Kind: EventScroll, Update: func() { text.scroll = 100 }})
	if res.Err != nil || res.Frame.Seq != 2 {
		t.Fatalf("scroll after load: %v, %v", res.Frame, res.Err)
	}
	if !approx(res.Frame.Position.Rate, 400.0/900) {
		t.Errorf("rate = %v, want 4/9", res.Frame.Position.Rate)
	}

	var after Result
	res = send(t, events, Event{Kind: EventRefresh, After: func(r Result) { after = r }})
	if after.Frame != res.Frame || res.Frame.Seq != 3 {
		t.Errorf("After saw %v, reply %v", after.Frame, res.Frame)
	}

	close(events)
	if err := <-done; err != nil {
		t.Errorf("Run returned %v on close", err)
	}
}

func TestRunContextCancel(t *testing.T) {
	e := unloadedEngine(&fakeText{client: 900})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, make(chan Event)) }()
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

type chanBarrier chan struct{}

func (b chanBarrier) Done() <-chan struct{} { return b }

func TestWaitAndRun(t *testing.T) {
	text := &fakeText{client: 900, rects: []locate.LayoutRect{rect{0, 900, "0,100,100,300,300"}}}
	e := unloadedEngine(text)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	barrier := make(chanBarrier)
	events := make(chan Event)
	go e.WaitAndRun(ctx, barrier, events)

	res := send(t, events, Event{Kind: EventResize})
	if !errors.Is(res.Err, errors.ErrCodeImagesNotLoaded) {
		t.Fatalf("resize before load: err = %v", res.Err)
	}

	close(barrier)
	// The barrier and the next event may race; the engine must settle on
	// loaded within a few events.
	for k := 0; k < 50; k++ {
		res = send(t, events, Event{Kind: EventScroll})
		if res.Err == nil {
			break
		}
	}
	if res.Err != nil {
		t.Fatalf("engine never loaded: %v", res.Err)
	}
	if !e.Loaded() {
		t.Error("Loaded() = false")
	}
}

func TestDrainCoalesces(t *testing.T) {
	events := make(chan Event, 4)
	events <- Event{Kind: EventScroll}
	events <- Event{Kind: EventResize}
	batch, closed := drain(Event{Kind: EventScroll}, events)
	if len(batch) != 3 || closed {
		t.Fatalf("drain = %d events, closed %v", len(batch), closed)
	}
	if batch[2].Kind != EventResize {
		t.Errorf("order not kept: %v", batch[2].Kind)
	}

	close(events)
	if _, closed := drain(Event{}, events); !closed {
		t.Error("drain should report a closed channel")
	}
}

func TestEventKindString(t *testing.T) {
	for k, want := range map[EventKind]string{
		EventScroll:       "scroll",
		EventResize:       "resize",
		EventImagesLoaded: "images-loaded",
		EventRefresh:      "refresh",
		EventKind(9):      "unknown",
	} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(k), got, want)
		}
	}
}
