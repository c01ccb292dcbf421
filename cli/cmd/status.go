package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"launchpd/internal/projectlink"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show login state, project link and service health",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		switch {
		case a.identity.Credentials != nil && a.identity.APIKey == a.identity.Credentials.APIKey:
			a.log.Info("Logged in as %s (%s)", a.identity.Credentials.Email, a.identity.Credentials.Tier)
		case a.identity.Authenticated:
			a.log.Info("Using API key from LAUNCHPD_API_KEY")
		default:
			a.log.Info("Anonymous (run 'launchpd login' for custom subdomains)")
		}
		if a.identity.APISecret != "" {
			a.log.Info("Requests are signed")
		}

		if cwd, err := os.Getwd(); err == nil {
			if link, err := projectlink.Find(cwd); err != nil {
				a.log.Warn("Unreadable project link: %v", err)
			} else if link != nil {
				a.log.Info("Project linked to %s", a.cfg.SiteURL(link.Subdomain))
			} else {
				a.log.Info("No project link in %s", cwd)
			}
		}

		a.log.Start("Checking %s", a.client.BaseURL())
		health, err := a.client.Health(ctx)
		if err != nil {
			a.log.Fail("Service unreachable: %v", err)
			return nil
		}
		a.log.Succeed("Service is %s %s", health.Status, health.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
