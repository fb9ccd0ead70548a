// Package tui is the terminal front-end of the protected viewer.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/existflow/secureview/internal/clock"
	"github.com/existflow/secureview/internal/logger"
	"github.com/existflow/secureview/internal/model"
	"github.com/existflow/secureview/internal/protect"
	"github.com/existflow/secureview/internal/render"
)

// terminalLayout bounds the page width in terminal cells
var terminalLayout = protect.Layout{Padding: 4, MaxWidth: 100}

// Loader loads the document behind a resource reference
type Loader interface {
	Load(ctx context.Context, ref model.ResourceRef) (*render.Document, error)
}

// Model is the viewer model. It owns one protection engine session.
type Model struct {
	engine *protect.Engine
	events *protect.Dispatcher
	loader Loader

	spinner spinner.Model

	width    int
	height   int
	showHelp bool
}

// NewModel creates a viewer for tok. The engine is mounted immediately and
// released when the program quits.
func NewModel(tok model.AccessToken, loader Loader, c clock.Clock) Model {
	logger.Info("Opening viewer", logger.F("name", tok.DisplayName))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StatusStyle

	events := protect.NewDispatcher()
	engine := protect.New(tok, c, terminalLayout)
	engine.Mount(events)

	return Model{
		engine:  engine,
		events:  events,
		loader:  loader,
		spinner: sp,
	}
}

// Engine returns the session's protection engine
func (m Model) Engine() *protect.Engine {
	return m.engine
}

// Close releases the engine's event subscriptions
func (m Model) Close() {
	m.engine.Unmount()
}
