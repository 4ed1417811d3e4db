package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"lab-notebook-client/internal/dto"
)

var (
	loginEmail    string
	loginPassword string

	registerUsername        string
	registerEmail           string
	registerPassword        string
	registerConfirmPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		req := dto.LoginRequest{Email: loginEmail, Password: loginPassword}
		if err := validate.Struct(req); err != nil {
			return err
		}

		if err := container.Session.Login(cmd.Context(), req.Email, req.Password); err != nil {
			color.Red("Login failed: %s", container.Session.State().Error)
			return err
		}

		state := container.Session.State()
		color.Green("Signed in as %s <%s>", state.User.Username, state.User.Email)
		return nil
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account and sign in",
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		// Password/confirmation equality is a form-level check; it is
		// enforced here, not in the session store.
		req := dto.RegisterRequest{
			Username:        registerUsername,
			Email:           registerEmail,
			Password:        registerPassword,
			ConfirmPassword: registerConfirmPassword,
		}
		if err := validate.Struct(req); err != nil {
			return err
		}

		err := container.Session.Register(cmd.Context(), req.Username, req.Email, req.Password, req.ConfirmPassword)
		if err != nil {
			color.Red("Registration failed: %s", container.Session.State().Error)
			return err
		}

		state := container.Session.State()
		color.Green("Registered and signed in as %s <%s>", state.User.Username, state.User.Email)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and drop the local session",
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		container.Session.Logout(cmd.Context())

		// Local identity is gone either way; a server-side failure is
		// worth mentioning but never blocks the sign-out.
		if errMsg := container.Session.State().Error; errMsg != "" {
			color.Yellow("Signed out locally (server said: %s)", errMsg)
			return nil
		}
		color.Green("Signed out")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the stored session cookie",
	RunE: withContainer(func(cmd *cobra.Command, args []string) error {
		if !container.Session.GetUser(cmd.Context()) {
			color.Yellow("Not signed in")
			return nil
		}

		state := container.Session.State()
		color.Green("%s <%s> (id %s)", state.User.Username, state.User.Email, state.User.Id)
		return nil
	}),
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVarP(&registerUsername, "username", "u", "", "display name")
	registerCmd.Flags().StringVarP(&registerEmail, "email", "e", "", "account email")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "account password")
	registerCmd.Flags().StringVar(&registerConfirmPassword, "confirm-password", "", "repeat the password")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("confirm-password")
}
