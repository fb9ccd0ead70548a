package gate

import (
	"sync"

	"github.com/existflow/secureview/internal/clock"
	"github.com/existflow/secureview/internal/model"
	"github.com/existflow/secureview/internal/token"
)

// Error surface messages
const (
	MsgInvalidLink = "Invalid access link"
	MsgExpired     = "Access Expired"
)

// Surface is the view selected for a navigation
type Surface int

const (
	SurfaceBooting Surface = iota
	SurfaceAdmin
	SurfaceViewer
	SurfaceError
)

// String returns the string representation of the surface
func (s Surface) String() string {
	switch s {
	case SurfaceAdmin:
		return "admin"
	case SurfaceViewer:
		return "viewer"
	case SurfaceError:
		return "error"
	default:
		return "booting"
	}
}

// Decision is the outcome of classifying one navigation. Token is set for
// SurfaceViewer, Message for SurfaceError.
type Decision struct {
	Surface Surface
	Token   model.AccessToken
	Message string
	Result  token.Result
}

// Expired reports whether the decision rejected an expired link
func (d Decision) Expired() bool {
	return d.Surface == SurfaceError && d.Result.Kind == token.Expired
}

// Gate classifies fragments into surfaces
type Gate struct {
	clock clock.Clock
}

// New creates a gate
func New(c clock.Clock) *Gate {
	if c == nil {
		c = clock.System{}
	}
	return &Gate{clock: c}
}

// Classify decodes fragment and selects the surface for it. Expiry is
// checked here and only here.
func (g *Gate) Classify(fragment string) Decision {
	if !token.IsViewRoute(fragment) {
		return Decision{Surface: SurfaceAdmin}
	}

	res := token.Decode(fragment).At(g.clock.Now())
	switch res.Kind {
	case token.Valid:
		return Decision{Surface: SurfaceViewer, Token: res.Token, Result: res}
	case token.Expired:
		return Decision{Surface: SurfaceError, Message: MsgExpired, Result: res}
	default:
		return Decision{Surface: SurfaceError, Message: MsgInvalidLink, Result: res}
	}
}

// Router owns the application state. It starts in SurfaceBooting and moves
// on every Navigate; nothing is cached between navigations.
type Router struct {
	gate *Gate

	mu        sync.Mutex
	current   Decision
	nextID    int
	listeners map[int]func(Decision)
}

// NewRouter creates a router in the booting state
func NewRouter(g *Gate) *Router {
	return &Router{
		gate:      g,
		current:   Decision{Surface: SurfaceBooting},
		listeners: make(map[int]func(Decision)),
	}
}

// Current returns the last decision
func (r *Router) Current() Decision {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate classifies fragment, stores the decision and notifies listeners
func (r *Router) Navigate(fragment string) Decision {
	d := r.gate.Classify(fragment)

	r.mu.Lock()
	r.current = d
	listeners := make([]func(Decision), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(d)
	}
	return d
}

// OnChange registers fn to be called after every navigation. The returned
// func removes it.
func (r *Router) OnChange(fn func(Decision)) (remove func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}
