package auth

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crestapp/crest-go/cmd/crestctl/internal/config"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from Crest",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		crestClient, err := cfg.ClientProvider.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		// Clearing the local credential is authoritative; the backend
		// notification inside Logout is best-effort.
		if err := crestClient.Logout(cmd.Context()); err != nil {
			return err
		}

		pterm.Success.Println("Logged out successfully")
		return nil
	},
}
