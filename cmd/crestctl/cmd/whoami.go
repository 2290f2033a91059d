package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/crestapp/crest-go/cmd/crestctl/internal/config"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Display the currently authenticated account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())

		crestClient, err := cfg.ClientProvider.SDKClient(cmd.Context())
		if err != nil {
			return err
		}

		user, err := crestClient.CurrentUser(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to resolve current user: %w", err)
		}
		if user == nil {
			pterm.Info.Println("Not logged in. Run `crestctl auth login` first.")
			return nil
		}

		pterm.DefaultSection.Println("Account")
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Username\t%s\n", user.Username)
		if user.DisplayName != "" {
			fmt.Fprintf(w, "Display name\t%s\n", user.DisplayName)
		}
		if user.Email != "" {
			fmt.Fprintf(w, "Email\t%s\n", user.Email)
		}
		fmt.Fprintf(w, "Tier\t%s\n", user.Tier)
		if user.Subscription != "" {
			fmt.Fprintf(w, "Subscription\t%s\n", user.Subscription)
		}
		fmt.Fprintf(w, "Status\t%s\n", user.Status)
		if user.Country != "" {
			fmt.Fprintf(w, "Country\t%s\n", user.Country)
		}
		if user.Rank > 0 {
			fmt.Fprintf(w, "Rank\t%d\n", user.Rank)
		}
		w.Flush()

		return nil
	},
}
