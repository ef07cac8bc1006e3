package command

// root.go defines the root command and the flags shared by every subcommand.

import (
	"context"
	"fmt"
	"os"
	"time"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	apiURL   string // API server URL
	token    string // access token (jwt); flag wins over the keychain
	page     int
	pageSize int
)

var rootCmd = &cobra.Command{
	Use:   "yamdb",
	Short: "yamdb - command line client for the yamdb review API",
	Long: `yamdb talks to a yamdb API server. Use it to:
- sign up and exchange a confirmation code for an access token
- browse titles, categories and genres
- post and read reviews and comments

Use "yamdb [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("YAMDB_API", "http://localhost:8080"), "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token (defaults to the one saved by 'auth token')")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(newSlugCmd("category", "categories"))
	rootCmd.AddCommand(newSlugCmd("genre", "genres"))
	rootCmd.AddCommand(titleCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(commentCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newClient builds an API client carrying the saved token when there is one.
func newClient() *client.HTTPClient {
	c := client.NewHTTPClient(apiURL)
	if token != "" {
		c.SetToken(token)
		return c
	}
	creds, err := authentication.GetTokens()
	if err != nil {
		color.New(color.FgYellow).Fprintf(os.Stderr, "could not read saved token: %v\n", err)
		return c
	}
	if creds != nil {
		c.SetToken(creds.AccessToken)
	}
	return c
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "items per page")
}

func success(format string, args ...interface{}) {
	color.New(color.FgGreen).Printf("✓ "+format+"\n", args...)
}

func printPage(p, pages, total int) {
	fmt.Printf("\npage %d/%d (%d total)\n", p, pages, total)
}
