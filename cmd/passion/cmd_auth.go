package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sebakara/early-passion-detection/internal/types"
)

var (
	loginEmail    string
	loginPassword string

	registerEmail    string
	registerPassword string
	registerName     string
)

// loginCmd signs a parent in and stores the session token
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Long: `Sign in with your parent account.

The session token is stored locally, so later commands and the
interactive assessment pick it up without asking again.`,
	RunE: runLogin,
}

// registerCmd creates a new parent account
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new parent account",
	RunE:  runRegister,
}

// logoutCmd ends the session locally and server-side
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard the stored token",
	RunE:  runLogout,
}

// whoamiCmd shows the signed-in account
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Account password (prompted when omitted)")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Your full name")
}

// promptLine reads one line from stdin when a flag was not given.
func promptLine(label string) (string, error) {
	fmt.Printf("%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}

	email := loginEmail
	if email == "" {
		if email, err = promptLine("Email"); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		if password, err = promptLine("Password"); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res := a.session.Login(ctx, email, password)
	if !res.OK {
		return fmt.Errorf("sign-in failed: %s", res.Message)
	}

	st := a.session.State()
	if st.User != nil {
		fmt.Printf("Signed in as %s\n", st.User.Email)
	} else {
		fmt.Println("Signed in.")
	}
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}

	email := registerEmail
	if email == "" {
		if email, err = promptLine("Email"); err != nil {
			return err
		}
	}
	password := registerPassword
	if password == "" {
		if password, err = promptLine("Password (min 8 characters)"); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res := a.session.Register(ctx, types.RegisterInput{
		Email:    email,
		Password: password,
		FullName: registerName,
		IsParent: true,
	})
	if !res.OK {
		return fmt.Errorf("registration failed: %s", res.Message)
	}

	fmt.Printf("Account created for %s\n", email)
	if !a.tokens.Exists() {
		fmt.Println("Run 'passion login' to sign in.")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a.session.Logout(ctx)
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}
	if !a.tokens.Exists() {
		return fmt.Errorf("not signed in; run 'passion login'")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	user, err := a.client.Whoami(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s", user.Email)
	if user.FullName != "" {
		fmt.Printf(" (%s)", user.FullName)
	}
	fmt.Println()
	return nil
}
