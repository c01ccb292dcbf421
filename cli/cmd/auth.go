package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"launchpd/cli/internal/prompt"
	"launchpd/internal/api"
	"launchpd/internal/credentials"
	"launchpd/internal/failfast"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with an API key",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credentials",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account in the browser",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		url := "https://" + a.cfg.Domain + "/register"
		a.log.Info("Create your account at %s", url)
		if err := openBrowser(url); err != nil {
			a.log.Debug("browser: %v", err)
		}
		a.log.Info("Then run 'launchpd login' with the API key from your dashboard")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	p := prompt.NewCLIPrompter(false)
	key, err := p.Secret("API key")
	if err != nil || key == "" {
		return failfast.New("An API key is required", err,
			"Copy it from your dashboard",
			"Or set LAUNCHPD_API_KEY")
	}
	secret, err := p.Secret("API secret (optional, Enter to skip)")
	if err != nil && !errors.Is(err, prompt.ErrNoInput) {
		return err
	}

	client := a.client.WithCredentials(key, secret)
	user, err := client.Me(ctx, "")
	if api.IsKind(err, api.KindTwoFactor) {
		code, perr := p.Input("Two-factor code")
		if perr != nil {
			return failfast.New("A two-factor code is required", perr)
		}
		user, err = client.Me(ctx, strings.TrimSpace(code))
	}
	if err != nil {
		if api.IsKind(err, api.KindAuth) || api.IsKind(err, api.KindTwoFactor) {
			return failfast.New("Invalid API key or code", err,
				"Check the key in your dashboard",
				"Run 'launchpd rotate-key' from a logged-in machine to issue a new one")
		}
		return apiFailure("verify the API key", err)
	}

	err = a.store.Save(&credentials.Credentials{
		APIKey:    key,
		APISecret: secret,
		UserID:    user.ID,
		Email:     user.Email,
		Tier:      user.Tier,
	})
	if err != nil {
		return failfast.New("Could not save credentials", err)
	}

	a.log.Success("Logged in as %s (%s)", user.Email, user.Tier)
	if !user.EmailVerified {
		a.log.Warn("Your email is not verified; run 'launchpd verify' to resend the link")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	if a.identity.Credentials == nil {
		a.log.Info("Not logged in")
		return nil
	}
	if err := a.client.Logout(ctx); err != nil {
		a.log.Warn("Could not end the server session: %v", err)
	}
	if err := a.store.Clear(); err != nil {
		return failfast.New("Could not remove credentials", err)
	}
	a.log.Success("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	if !a.identity.Authenticated {
		a.log.Info("Anonymous")
		return nil
	}
	user, err := a.client.Me(ctx, "")
	if err != nil {
		return apiFailure("fetch your account", err)
	}

	verified := "no"
	if user.EmailVerified {
		verified = "yes"
	}
	a.log.Table([]string{"FIELD", "VALUE"}, [][]string{
		{"Email", user.Email},
		{"Tier", user.Tier},
		{"Verified", verified},
		{"User ID", user.ID},
		{"2FA", fmt.Sprintf("%t", user.TwoFactorEnabled)},
	})
	return nil
}
