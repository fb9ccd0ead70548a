package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key",
	Short: "Hash an admin key for the server config",
	Long: `Prompt for an admin key and print its bcrypt hash. Put the hash in
admin_key_hash to require the key for issuing links on the server.`,
	RunE: runHashKey,
}

func init() {
	hashKeyCmd.Flags().Bool("save", false, "Write the hash to the config file")
}

func runHashKey(cmd *cobra.Command, args []string) error {
	fmt.Print("Admin key: ")
	key, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return err
	}

	fmt.Print("Confirm: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return err
	}

	hash, err := hashAdminKey(key, confirm)
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		cfg.AdminKeyHash = hash
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "✓ Saved admin_key_hash to config")
		return nil
	}

	fmt.Println(hash)
	return nil
}

func hashAdminKey(key, confirm []byte) (string, error) {
	if len(key) < 8 {
		return "", errors.New("admin key must be at least 8 characters")
	}
	if string(key) != string(confirm) {
		return "", errors.New("keys do not match")
	}

	hash, err := bcrypt.GenerateFromPassword(key, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
