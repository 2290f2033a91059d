package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crestapp/crest-go/cmd/crestctl/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		store, err := cfg.ClientProvider.CredentialStore()
		if err != nil {
			return fmt.Errorf("failed to create credential store: %w", err)
		}

		creds, err := store.LoadCredentials()
		if err != nil {
			return fmt.Errorf("failed to read credentials: %w", err)
		}
		if creds == nil {
			pterm.Info.Println("Not logged in")
			return nil
		}

		pterm.DefaultSection.Println("Authentication Status")
		if creds.Username != "" {
			pterm.Info.Printf("Logged in as: %s\n", creds.Username)
		} else {
			pterm.Info.Println("Logged in")
		}

		// Validate the credential against the server; a rejected or expired
		// token is reported, not treated as a hard failure.
		crestClient, err := cfg.ClientProvider.SDKClient(cmd.Context())
		if err != nil {
			return err
		}
		user, err := crestClient.CurrentUser(cmd.Context())
		if err != nil {
			pterm.Warning.Printf("Stored credential could not be validated: %v\n", err)
			return nil
		}
		if user == nil {
			pterm.Warning.Println("Credential is no longer stored")
			return nil
		}

		pterm.Info.Printf("Account tier: %s (%s)\n", user.Tier, user.Status)
		return nil
	},
}
