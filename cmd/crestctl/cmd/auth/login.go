package auth

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crestapp/crest-go/cmd/crestctl/internal/config"
	"github.com/crestapp/crest-go/pkg/sdk"
)

var (
	username string
	password string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Crest",
	Long: `Authenticates with the Crest server using a username and password.

The password can be passed with --password for non-interactive use; when
omitted, it is prompted for without echo.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		if username == "" {
			return fmt.Errorf("--username is required")
		}
		if password == "" {
			entered, err := pterm.DefaultInteractiveTextInput.
				WithMask("*").
				Show("Password")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = entered
		}

		store, err := cfg.ClientProvider.CredentialStore()
		if err != nil {
			return fmt.Errorf("failed to create credential store: %w", err)
		}

		crestClient := sdk.NewClient(cfg.ServerURL, sdk.WithCredentialStore(store))
		creds, err := crestClient.Login(cmd.Context(), sdk.LoginInput{
			Identifier: username,
			Password:   password,
		})
		if err != nil {
			return err
		}

		pterm.Success.Printf("Logged in as %s\n", creds.Username)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&username, "username", "", "Account username or email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
}
