package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/crestapp/crest-go/cmd/crestctl/cmd/auth"
	"github.com/crestapp/crest-go/cmd/crestctl/internal/client"
	"github.com/crestapp/crest-go/cmd/crestctl/internal/config"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "crestctl",
	Short: "Crest CLI - account and session client",
	Long: `crestctl is the command-line interface for the Crest backend.
Use it to log in, inspect the current account, and log out.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file is optional; flags and real env take precedence.
		_ = godotenv.Load()

		if !cmd.Flags().Changed("server") {
			if env := os.Getenv("CREST_SERVER_URL"); env != "" {
				serverURL = env
			}
		}

		cfg := &config.GlobalConfig{
			ServerURL:      serverURL,
			ClientProvider: client.NewProvider(serverURL),
		}
		cmd.SetContext(config.InjectConfig(cmd.Context(), cfg))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "https://api.crest.app", "Crest API server URL (also set via CREST_SERVER_URL)")
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(whoamiCmd)
}
