package command

import (
	"fmt"

	"yamdb/cmd/cli/authentication"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Sign up with an email and username, then trade the emailed confirmation code for an access token.`,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Request a confirmation code by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		username, _ := cmd.Flags().GetString("username")

		ctx, cancel := commandContext()
		defer cancel()

		resp, err := newClient().Signup(ctx, email, username)
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}
		success("Confirmation code sent to %s", resp.Email)
		fmt.Printf("Run: yamdb auth token -u %s -c <code>\n", resp.Username)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange a confirmation code for an access token and save it",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		code, _ := cmd.Flags().GetString("code")
		printOnly, _ := cmd.Flags().GetBool("print")

		ctx, cancel := commandContext()
		defer cancel()

		jwt, err := newClient().Token(ctx, username, code)
		if err != nil {
			return fmt.Errorf("token request failed: %w", err)
		}
		if printOnly {
			fmt.Println(jwt)
			return nil
		}

		creds := &authentication.StoredCredentials{AccessToken: jwt, Username: username, APIURL: apiURL}
		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("could not save token: %w", err)
		}
		success("Logged in as %s", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return err
		}
		success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the profile behind the current token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		me, err := newClient().Me(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Username: %s\nEmail: %s\nRole: %s\n", me.Username, me.Email, me.Role)
		if me.Bio != "" {
			fmt.Printf("Bio: %s\n", me.Bio)
		}
		return nil
	},
}

func init() {
	authCmd.AddCommand(signupCmd, tokenCmd, logoutCmd, whoamiCmd)

	signupCmd.Flags().StringP("email", "e", "", "email address")
	signupCmd.Flags().StringP("username", "u", "", "username")
	signupCmd.MarkFlagRequired("email")
	signupCmd.MarkFlagRequired("username")

	tokenCmd.Flags().StringP("username", "u", "", "username")
	tokenCmd.Flags().StringP("code", "c", "", "confirmation code from the email")
	tokenCmd.Flags().Bool("print", false, "print the token instead of saving it")
	tokenCmd.MarkFlagRequired("username")
	tokenCmd.MarkFlagRequired("code")
}
