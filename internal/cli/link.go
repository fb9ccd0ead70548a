package cli

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/existflow/secureview/internal/client"
	"github.com/existflow/secureview/internal/clock"
	"github.com/existflow/secureview/internal/issuer"
	"github.com/existflow/secureview/internal/logger"
)

var linkCmd = &cobra.Command{
	Use:   "link <document-url>",
	Short: "Issue a one-hour link for a hosted PDF",
	Long: `Issue a one-hour share link for a PDF hosted at an absolute URL.

Links are built locally on the configured base URL. Use --server to have the
configured server issue it instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runLink,
}

func init() {
	linkCmd.Flags().Bool("copy", false, "Copy the link to the clipboard")
	linkCmd.Flags().Bool("server", false, "Issue through the configured server")
	linkCmd.Flags().String("base-url", "", "Origin the link is built on (default from config)")
}

func runLink(cmd *cobra.Command, args []string) error {
	viaServer, _ := cmd.Flags().GetBool("server")

	var link *client.Link
	if viaServer {
		var err error
		link, err = client.New(cfg.ServerURL, cfg.AdminKey).CreateLink(cmd.Context(), args[0])
		if err != nil {
			return err
		}
	} else {
		base := cfg.BaseURL
		if v, _ := cmd.Flags().GetString("base-url"); v != "" {
			base = v
		}
		issued, err := issuer.New(clock.System{}, nil, base).IssueURL(args[0])
		if err != nil {
			return err
		}
		link = &client.Link{
			Link:      issued.URL,
			Name:      issued.Token.DisplayName,
			ExpiresAt: issued.Token.ExpiresAt,
		}
	}

	logger.Info("Link issued", logger.F("name", link.Name), logger.F("server", viaServer))
	return printLink(cmd, link)
}

// printLink shows an issued link and copies it when --copy is set
func printLink(cmd *cobra.Command, link *client.Link) error {
	fmt.Printf("🔗 %s\n", link.Link)
	fmt.Printf("   %s · expires %s\n", link.Name, link.Expiry().Local().Format(time.Kitchen))

	if copyLink, _ := cmd.Flags().GetBool("copy"); copyLink {
		if err := clipboard.WriteAll(link.Link); err != nil {
			return fmt.Errorf("failed to copy link: %w", err)
		}
		fmt.Println("✓ Copied to clipboard")
	}
	return nil
}
