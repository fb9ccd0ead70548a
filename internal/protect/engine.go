// Package protect implements the viewer protection state machine: the
// visibility monitor, input suppression, watermark and countdown of an
// active viewing session.
//
// None of this is enforcement. A determined viewer can always capture the
// screen; the engine only deters casual copying and stamps every render so
// leaked captures can be traced.
package protect

import (
	"time"

	"github.com/existflow/secureview/internal/clock"
	"github.com/existflow/secureview/internal/model"
)

// Visibility of the viewer
type Visibility int

const (
	Visible Visibility = iota
	Hidden
)

// LoadStatus of the document in the rendering engine
type LoadStatus int

const (
	LoadPending LoadStatus = iota
	LoadLoaded
	LoadFailed
)

// DocumentLoad is Pending, Loaded(PageCount) or Failed(Message)
type DocumentLoad struct {
	Status    LoadStatus
	PageCount int
	Message   string
}

// State is a snapshot of the viewer session
type State struct {
	Visibility      Visibility
	RemainingMillis int64
	Load            DocumentLoad
	PageWidth       int
	Notice          string
}

// Frame is everything a front-end needs to draw one render. A covered frame
// carries no document data at all.
type Frame struct {
	Covered     bool
	Title       string
	MinutesLeft int64
	Watermark   Watermark
	Load        DocumentLoad
	PageWidth   int
	Notice      string
}

// Engine drives one viewer session. It is not safe for concurrent use; all
// calls are expected from the front-end's event loop.
type Engine struct {
	token  model.AccessToken
	clock  clock.Clock
	layout Layout

	visibility Visibility
	load       DocumentLoad
	pageWidth  int
	notice     string

	releases []func()
}

// New creates an engine for tok. The session starts visible with the
// document pending.
func New(tok model.AccessToken, c clock.Clock, layout Layout) *Engine {
	if c == nil {
		c = clock.System{}
	}
	return &Engine{
		token:     tok,
		clock:     c,
		layout:    layout,
		pageWidth: layout.MaxWidth,
	}
}

// Token returns the token the session was opened with
func (e *Engine) Token() model.AccessToken { return e.token }

// Mount subscribes the engine to src. Every subscription is released by
// Unmount; mounting twice releases the earlier subscriptions first.
func (e *Engine) Mount(src EventSource) {
	e.Unmount()
	e.releases = []func(){
		src.Subscribe(EventVisibility, e.onVisibility),
		src.Subscribe(EventKeyDown, e.onKeyDown),
		src.Subscribe(EventContextMenu, e.onContextMenu),
		src.Subscribe(EventResize, e.onResize),
	}
}

// Unmount releases all subscriptions. It is safe to call more than once.
func (e *Engine) Unmount() {
	for _, release := range e.releases {
		release()
	}
	e.releases = nil
}

// Mounted reports whether the engine currently holds subscriptions
func (e *Engine) Mounted() bool { return len(e.releases) > 0 }

func (e *Engine) onVisibility(ev Event) Verdict {
	if ev.Hidden {
		e.visibility = Hidden
	} else {
		e.visibility = Visible
	}
	return Verdict{}
}

func (e *Engine) onKeyDown(ev Event) Verdict {
	v := KeyVerdict(ev.Key)
	if v.Notice != "" {
		e.notice = v.Notice
	}
	return v
}

func (e *Engine) onContextMenu(Event) Verdict {
	return ContextMenuVerdict()
}

func (e *Engine) onResize(ev Event) Verdict {
	e.pageWidth = e.layout.PageWidth(ev.Width)
	return Verdict{}
}

// LoadSucceeded records the rendering engine's success callback
func (e *Engine) LoadSucceeded(pageCount int) {
	e.load = DocumentLoad{Status: LoadLoaded, PageCount: pageCount}
}

// LoadFailed records the rendering engine's error callback
func (e *Engine) LoadFailed(message string) {
	e.load = DocumentLoad{Status: LoadFailed, Message: message}
}

// DismissNotice clears the blocking notice
func (e *Engine) DismissNotice() { e.notice = "" }

// State returns the session state at the current clock reading
func (e *Engine) State() State {
	return State{
		Visibility:      e.visibility,
		RemainingMillis: RemainingMillis(e.token.ExpiresAt, e.clock.Now()),
		Load:            e.load,
		PageWidth:       e.pageWidth,
		Notice:          e.notice,
	}
}

// Render computes the frame for the current clock reading. Reaching zero
// remaining time does not lock the session: expiry is only checked when a
// link is opened.
func (e *Engine) Render() Frame {
	if e.visibility == Hidden {
		return Frame{Covered: true}
	}
	now := e.clock.Now()
	return Frame{
		Title:       e.token.DisplayName,
		MinutesLeft: MinutesLeft(e.token.ExpiresAt, now),
		Watermark:   NewWatermark(now),
		Load:        e.load,
		PageWidth:   e.pageWidth,
		Notice:      e.notice,
	}
}

// RefreshInterval is how often front-ends re-render to move the countdown
// and watermark timestamp along
const RefreshInterval = 30 * time.Second
