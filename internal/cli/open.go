package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/existflow/secureview/internal/clock"
	"github.com/existflow/secureview/internal/gate"
	"github.com/existflow/secureview/internal/logger"
	"github.com/existflow/secureview/internal/render"
	"github.com/existflow/secureview/internal/tui"
)

var openCmd = &cobra.Command{
	Use:   "open <link>",
	Short: "Open a link in the terminal viewer",
	Long: `Open a share link in the terminal viewer. The viewer covers itself when
the terminal loses focus and blocks print, save and copy shortcuts.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func runOpen(cmd *cobra.Command, args []string) error {
	origin, fragment := splitLink(args[0])

	router := gate.NewRouter(gate.New(clock.System{}))
	remove := router.OnChange(func(d gate.Decision) {
		logger.Info("Navigated", logger.F("surface", d.Surface.String()))
	})
	defer remove()

	d := router.Navigate(fragment)
	switch d.Surface {
	case gate.SurfaceViewer:
	case gate.SurfaceError:
		fmt.Printf("✗ %s\n", d.Message)
		return errors.New(d.Message)
	default:
		return errors.New("not a share link")
	}

	fetcher, err := render.NewFetcher(render.FetcherConfig{Origin: origin, RetryMax: 3})
	if err != nil {
		return err
	}

	m := tui.NewModel(d.Token, render.NewEngine(fetcher), clock.System{})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", logger.F("error", err))
		return fmt.Errorf("failed to run viewer: %w", err)
	}

	logger.Info("Viewer closed")
	return nil
}
