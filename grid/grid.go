package grid

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"shopify-product-grid/structs"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the state of the grid after the last accepted transition.
// While loading, Products still holds the previous list. A failed outcome
// carries Err and no products.
type Outcome struct {
	Status   Status
	Handle   string
	Products []structs.Product
	Err      error
}

// Policy decides what happens to a fetch when the handle changes while it
// is still in flight.
type Policy int

const (
	// LatestRequest cancels the older fetch and drops any response that
	// is not for the most recent handle.
	LatestRequest Policy = iota
	// ArrivalOrder lets every fetch finish and applies responses in the
	// order they arrive, so a slow older fetch can overwrite a newer one.
	ArrivalOrder
)

type Option func(*Grid)

// WithPolicy sets how a handle change treats fetches still in flight.
// The default is LatestRequest.
func WithPolicy(p Policy) Option {
	return func(g *Grid) { g.policy = p }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(g *Grid) { g.logger = l }
}

// Grid owns the product list for one collection handle at a time. It runs
// the fetch pipeline whenever the handle changes.
type Grid struct {
	src    Source
	policy Policy
	logger *zap.Logger

	// base is the parent of every fetch context; Close cancels it
	base       context.Context
	baseCancel context.CancelFunc

	mu        sync.Mutex
	handle    string
	started   bool
	seq       uint64
	cancel    context.CancelFunc
	outcome   Outcome
	version   uint64
	listeners []func(Outcome)
	closed    bool

	// publishing is serialized so listeners never see an older outcome
	// after a newer one
	notifyMu  sync.Mutex
	published uint64

	wg sync.WaitGroup
}

// New returns an idle Grid with an empty product list.
func New(src Source, opts ...Option) *Grid {
	g := &Grid{
		src:    src,
		policy: LatestRequest,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.base, g.baseCancel = context.WithCancel(context.Background())
	return g
}

// OnChange registers fn to be called with every accepted outcome, in order.
// fn runs in the goroutine that produced the outcome and must not call back
// into SetHandle.
func (g *Grid) OnChange(fn func(Outcome)) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

// Outcome returns the current state.
func (g *Grid) Outcome() Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.outcome
}

// SetHandle points the grid at handle and starts a fetch. It is a no-op if
// handle is the one last set or the grid is closed. The fetch stops when
// either ctx or the grid is done.
func (g *Grid) SetHandle(ctx context.Context, handle string) {
	g.mu.Lock()
	if g.closed || (g.started && g.handle == handle) {
		g.mu.Unlock()
		return
	}
	g.started = true
	g.handle = handle

	g.seq++
	seq := g.seq

	fetchCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(g.base, cancel)
	if g.policy == LatestRequest {
		if g.cancel != nil {
			g.cancel()
		}
		g.cancel = cancel
	}

	// the previous list stays visible until this fetch resolves
	loading := Outcome{Status: StatusLoading, Handle: handle, Products: g.outcome.Products}
	g.outcome = loading
	g.version++
	version := g.version
	listeners := g.snapshotListeners()
	g.wg.Add(1)
	g.mu.Unlock()

	g.logger.Debug("grid handle changed", zap.String("handle", handle), zap.Uint64("seq", seq))
	g.publish(version, listeners, loading)

	go g.run(fetchCtx, seq, handle, func() {
		stop()
		cancel()
	})
}

func (g *Grid) run(ctx context.Context, seq uint64, handle string, release func()) {
	defer g.wg.Done()
	defer release()

	products, err := g.src.Products(ctx, handle)

	next := Outcome{Status: StatusLoaded, Handle: handle, Products: products}
	if err != nil {
		next = Outcome{Status: StatusFailed, Handle: handle, Err: err}
	}

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	if g.policy == LatestRequest && seq != g.seq {
		g.mu.Unlock()
		g.logger.Debug("discarding stale response",
			zap.String("handle", handle),
			zap.Uint64("seq", seq),
		)
		return
	}
	g.outcome = next
	g.version++
	version := g.version
	listeners := g.snapshotListeners()
	g.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		g.logger.Warn("grid fetch failed", zap.String("handle", handle), zap.Error(err))
	} else if err == nil {
		g.logger.Debug("grid loaded", zap.String("handle", handle), zap.Int("products", len(products)))
	}
	g.publish(version, listeners, next)
}

// Wait blocks until every started fetch has finished.
func (g *Grid) Wait() {
	g.wg.Wait()
}

// Close cancels in-flight fetches, waits for them and discards the product
// list. A closed grid ignores SetHandle.
func (g *Grid) Close() {
	g.mu.Lock()
	g.closed = true
	g.baseCancel()
	g.cancel = nil
	g.outcome = Outcome{}
	g.listeners = nil
	g.mu.Unlock()

	g.wg.Wait()
}

// snapshotListeners must be called with g.mu held.
func (g *Grid) snapshotListeners() []func(Outcome) {
	out := make([]func(Outcome), len(g.listeners))
	copy(out, g.listeners)
	return out
}

// publish hands o to listeners unless a newer outcome already went out.
func (g *Grid) publish(version uint64, listeners []func(Outcome), o Outcome) {
	g.notifyMu.Lock()
	defer g.notifyMu.Unlock()

	if version <= g.published {
		return
	}
	g.published = version
	for _, fn := range listeners {
		fn(o)
	}
}
