package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/existflow/secureview/internal/client"
	"github.com/existflow/secureview/internal/issuer"
	"github.com/existflow/secureview/internal/logger"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file.pdf>",
	Short: "Upload a PDF to the server and issue a one-hour link",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().Bool("copy", false, "Copy the link to the clipboard")
}

func runUpload(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	// Reject locally before anything is sent
	if err := issuer.ValidateUpload(issuer.Upload{Filename: args[0], Data: data}); err != nil {
		return err
	}

	fmt.Printf("🔄 Uploading %s to %s...\n", args[0], cfg.ServerURL)
	link, err := client.New(cfg.ServerURL, cfg.AdminKey).Upload(cmd.Context(), args[0], data)
	if err != nil {
		logger.Error("Upload failed", logger.F("error", err))
		return err
	}

	logger.Info("Document uploaded", logger.F("name", link.Name), logger.F("size", len(data)))
	return printLink(cmd, link)
}
