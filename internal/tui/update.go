package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/secureview/internal/logger"
	"github.com/existflow/secureview/internal/protect"
	"github.com/existflow/secureview/internal/render"
)

// loadTimeout bounds a single document load
const loadTimeout = time.Minute

// tickMsg moves the countdown and the watermark timestamp along
type tickMsg time.Time

// loadedMsg is the rendering engine's success callback
type loadedMsg struct {
	doc *render.Document
}

// loadFailedMsg is the rendering engine's error callback
type loadFailedMsg struct {
	err error
}

// Init starts the document load and the refresh tick
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd(), m.loadCmd())
}

func tickCmd() tea.Cmd {
	return tea.Every(protect.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) loadCmd() tea.Cmd {
	ref := m.engine.Token().Resource
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		doc, err := m.loader.Load(ctx, ref)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return loadedMsg{doc: doc}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.FocusMsg:
		m.events.Dispatch(protect.Event{Kind: protect.EventVisibility, Hidden: false})
		return m, nil

	case tea.BlurMsg:
		m.events.Dispatch(protect.Event{Kind: protect.EventVisibility, Hidden: true})
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.events.Dispatch(protect.Event{Kind: protect.EventResize, Width: msg.Width})
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		if msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionPress {
			m.events.Dispatch(protect.Event{Kind: protect.EventContextMenu})
		}
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case loadedMsg:
		logger.Info("Document loaded", logger.F("pages", msg.doc.PageCount))
		m.engine.LoadSucceeded(msg.doc.PageCount)
		return m, nil

	case loadFailedMsg:
		logger.Warn("Document load failed", logger.F("error", msg.err))
		message := render.MsgLoadFailed
		var rerr *render.Error
		if errors.As(msg.err, &rerr) {
			message = rerr.Message()
		}
		m.engine.LoadFailed(message)
		return m, nil

	case spinner.TickMsg:
		if m.engine.State().Load.Status != protect.LoadPending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A pending notice blocks until dismissed
	if m.engine.State().Notice != "" {
		if key.Matches(msg, keys.Dismiss, keys.Quit) {
			m.engine.DismissNotice()
		}
		return m, nil
	}

	v := m.events.Dispatch(protect.Event{Kind: protect.EventKeyDown, Key: keyEvent(msg)})
	if v.Cancel {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// keyEvent translates a terminal key press. Terminals have no Cmd key, so
// only Ctrl is ever reported.
func keyEvent(msg tea.KeyMsg) protect.KeyEvent {
	s := msg.String()
	if rest, ok := strings.CutPrefix(s, "ctrl+"); ok {
		return protect.KeyEvent{Key: rest, Ctrl: true}
	}
	return protect.KeyEvent{Key: s}
}
