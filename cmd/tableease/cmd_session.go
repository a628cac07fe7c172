package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tableease/internal/client"
)

var (
	loginEmail    string
	loginPassword string

	registerName     string
	registerEmail    string
	registerPassword string
	registerRole     string

	profileName   string
	profilePhone  string
	profileAvatar string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session locally",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	Long: `Register a new account.

Registration does not log you in; run "tableease login" afterwards.`,
	RunE: runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the local session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active session",
	RunE:  runWhoami,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update profile fields on the active account",
	RunE:  runProfile,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password (min 8 chars)")
	registerCmd.Flags().StringVar(&registerRole, "role", "customer", "account role")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")

	profileCmd.Flags().StringVar(&profileName, "name", "", "new display name")
	profileCmd.Flags().StringVar(&profilePhone, "phone", "", "new phone number")
	profileCmd.Flags().StringVar(&profileAvatar, "avatar", "", "new avatar URL")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.session.Login(cmd.Context(), loginEmail, loginPassword)
	if err != nil {
		if errors.Is(err, client.ErrInvalidCredentials) {
			return fmt.Errorf("login failed: %w", err)
		}
		return err
	}

	fmt.Printf("Logged in as %s <%s> (%s)\n", u.Name, u.Email, u.Role)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.session.Register(cmd.Context(), registerName, registerEmail, registerPassword, registerRole)
	if err != nil {
		switch {
		case errors.Is(err, client.ErrDuplicateEmail):
			return fmt.Errorf("registration failed: %w", err)
		case errors.Is(err, client.ErrDuplicateName):
			return fmt.Errorf("registration failed: %w", err)
		}
		return err
	}

	fmt.Printf("Registered %s <%s>. Run \"tableease login\" to start a session.\n", u.Name, u.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	u := a.session.Current()
	if u == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s> role=%s id=%d\n", u.Name, u.Email, u.Role, u.ID)
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var fields client.ProfileFields
	if cmd.Flags().Changed("name") {
		fields.Name = &profileName
	}
	if cmd.Flags().Changed("phone") {
		fields.Phone = &profilePhone
	}
	if cmd.Flags().Changed("avatar") {
		fields.AvatarURL = &profileAvatar
	}
	if fields.Name == nil && fields.Phone == nil && fields.AvatarURL == nil {
		return fmt.Errorf("nothing to update: pass --name, --phone or --avatar")
	}

	u, err := a.session.UpdateProfile(cmd.Context(), fields)
	if err != nil {
		if errors.Is(err, client.ErrNotAuthenticated) {
			return fmt.Errorf("not logged in")
		}
		return err
	}

	fmt.Printf("Profile updated: %s phone=%s\n", u.Name, u.Phone)
	return nil
}
