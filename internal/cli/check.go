package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/secureview/internal/clock"
	"github.com/existflow/secureview/internal/gate"
	"github.com/existflow/secureview/internal/protect"
	"github.com/existflow/secureview/internal/token"
)

var checkCmd = &cobra.Command{
	Use:   "check <link>",
	Short: "Show what a link would open to",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, fragment := splitLink(args[0])
	fmt.Print(describe(clock.System{}, fragment))
	return nil
}

// describe renders a gate decision for the terminal. The verdict and the
// minutes shown are taken from one clock reading.
func describe(c clock.Clock, fragment string) string {
	now := c.Now()
	d := gate.New(&clock.Fixed{T: now}).Classify(fragment)

	switch d.Surface {
	case gate.SurfaceViewer:
		return fmt.Sprintf("✓ Valid link\n  Document: %s\n  Source:   %s\n  Expires:  %s (in %dm)\n",
			d.Token.DisplayName,
			token.Locator(d.Token.Resource),
			d.Token.Expiry().Local().Format(time.RFC1123),
			protect.MinutesLeft(d.Token.ExpiresAt, now))
	case gate.SurfaceError:
		if d.Expired() {
			return fmt.Sprintf("✗ %s\n  Expired:  %s\n", d.Message,
				time.UnixMilli(d.Result.ExpiresAt).Local().Format(time.RFC1123))
		}
		return fmt.Sprintf("✗ %s\n  Reason:   %s\n", d.Message, d.Result.Reason)
	default:
		return "Not a share link\n"
	}
}
