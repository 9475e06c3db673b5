package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// authCmd manages the login session.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long: `Log in, register, or end the session.

Available subcommands:
  login    - Log in with username and password
  register - Create a new account
  logout   - End the session (server notified best-effort)
  status   - Show who is logged in`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in with username and password",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthLogin,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register [username] [email]",
	Short: "Create a new account",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runAuthRegister,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE:  runAuthStatus,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	username, err := argOrPrompt(args, 0, "Username: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	if err := sess.Login(cmd.Context(), username, password); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", username)
	if u := sess.User(); u != nil && u.Email != "" {
		fmt.Printf("  email: %s\n", u.Email)
	}
	return nil
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	username, err := argOrPrompt(args, 0, "Username: ")
	if err != nil {
		return err
	}
	email, err := argOrPrompt(args, 1, "Email: ")
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := sess.Register(cmd.Context(), username, email, password); err != nil {
		return err
	}
	fmt.Printf("Registered and logged in as %s\n", username)
	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	if !sess.Authenticated() {
		fmt.Println("Not logged in.")
		return nil
	}
	if err := sess.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	if !sess.Authenticated() {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Println("Logged in.")
	if err := sess.FetchProfile(cmd.Context()); err != nil {
		fmt.Printf("  (profile unavailable: %v)\n", err)
		return nil
	}
	u := sess.User()
	fmt.Printf("  user:   %s <%s>\n", u.Username, u.Email)
	if u.DateJoined != "" {
		fmt.Printf("  joined: %s\n", u.DateJoined)
	}
	if s := sess.Settings(); s != nil {
		fmt.Printf("  model settings: temperature=%.2f max_tokens=%d\n", s.Temperature, s.MaxTokens)
	}
	if o := sess.OrgProfile(); o != nil && len(o.Jurisdictions) > 0 {
		fmt.Printf("  jurisdictions: %s\n", strings.Join(o.Jurisdictions, ", "))
	}
	return nil
}

// argOrPrompt returns args[i] when present, else prompts on stdin.
func argOrPrompt(args []string, i int, prompt string) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	value := strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("empty input")
	}
	return value, nil
}

// promptPassword reads a password without echo.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty password")
	}
	return string(raw), nil
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}
