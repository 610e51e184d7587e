package pages

import (
	"context"
	stderrors "errors"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/papersync/pkg/errors"
	"github.com/matzehuels/papersync/pkg/observability"
)

// DefaultConcurrency bounds parallel page loads.
const DefaultConcurrency = 4

// future is one page load in flight.
type future struct {
	done chan struct{}
	img  image.Image
	err  error
}

// Set is a collection of page images that become available as they load.
// It is safe for concurrent use.
type Set struct {
	futures []*future
	done    chan struct{}
	loaded  atomic.Int32

	mu   sync.Mutex
	errs []error
}

// LoadOption configures Load.
type LoadOption func(*loadConfig)

type loadConfig struct {
	concurrency int
	onPage      func(i int, err error)
}

// WithConcurrency bounds the number of pages decoded at once.
func WithConcurrency(n int) LoadOption {
	return func(c *loadConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithProgress calls fn after each page settles, from the loading goroutine.
func WithProgress(fn func(i int, err error)) LoadOption {
	return func(c *loadConfig) { c.onPage = fn }
}

// Load starts loading every page of src and returns without blocking.
// Cancelling ctx abandons pages not yet started; they settle with ctx's
// error.
func Load(ctx context.Context, src Source, opts ...LoadOption) *Set {
	cfg := loadConfig{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&cfg)
	}

	n := src.Len()
	s := &Set{futures: make([]*future, n), done: make(chan struct{})}
	for i := range s.futures {
		s.futures[i] = &future{done: make(chan struct{})}
	}

	go func() {
		start := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.concurrency)
		for i := 0; i < n; i++ {
			i := i
			f := s.futures[i]
			g.Go(func() error {
				pageStart := time.Now()
				if err := gctx.Err(); err != nil {
					s.settle(i, f, nil, err)
				} else {
					img, err := src.Open(gctx, i)
					s.settle(i, f, img, err)
				}
				observability.Load().OnPageLoaded(ctx, i, time.Since(pageStart), f.err)
				if cfg.onPage != nil {
					cfg.onPage(i, f.err)
				}
				// Page failures are recorded per future, not propagated, so
				// one bad page never cancels its siblings.
				return nil
			})
		}
		_ = g.Wait()
		observability.Load().OnAllLoaded(ctx, n, len(s.Errs()), time.Since(start))
		close(s.done)
	}()
	return s
}

// NewSet returns an already loaded set over imgs. Nil entries are treated
// as failed pages.
func NewSet(imgs ...image.Image) *Set {
	s := &Set{futures: make([]*future, len(imgs)), done: make(chan struct{})}
	for i, img := range imgs {
		f := &future{done: make(chan struct{})}
		s.futures[i] = f
		if img == nil {
			s.settle(i, f, nil, errors.New(errors.ErrCodeNotFound, "page %d missing", i))
		} else {
			s.settle(i, f, img, nil)
		}
	}
	close(s.done)
	return s
}

func (s *Set) settle(i int, f *future, img image.Image, err error) {
	if err != nil {
		f.err = errors.Wrap(errors.ErrCodeImagesNotLoaded, err, "page %d", i)
		s.mu.Lock()
		s.errs = append(s.errs, f.err)
		s.mu.Unlock()
	} else {
		f.img = img
		s.loaded.Add(1)
	}
	close(f.done)
}

// Len returns the number of pages, loaded or not.
func (s *Set) Len() int { return len(s.futures) }

// Page returns page i if it has loaded successfully.
func (s *Set) Page(i int) (image.Image, bool) {
	if i < 0 || i >= len(s.futures) {
		return nil, false
	}
	f := s.futures[i]
	select {
	case <-f.done:
		return f.img, f.err == nil
	default:
		return nil, false
	}
}

// Wait blocks until every page has settled. It only fails when ctx is
// done first; failed pages are reported by Errs.
func (s *Set) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once every page has settled.
func (s *Set) Done() <-chan struct{} { return s.done }

// Ready reports whether every page has settled.
func (s *Set) Ready() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Loaded returns the number of pages decoded successfully so far.
func (s *Set) Loaded() int { return int(s.loaded.Load()) }

// Errs returns the load failures seen so far.
func (s *Set) Errs() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

// Err joins all load failures, or returns nil.
func (s *Set) Err() error {
	return stderrors.Join(s.Errs()...)
}
