package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"launchpd/internal/failfast"
	"launchpd/internal/projectlink"
	"launchpd/internal/subdomain"
)

var initName string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Link the current folder to a subdomain",
	Long: `Init writes a .launchpd.yml marker so later deploys from this folder,
or any folder below it, target the same subdomain without --name.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "Subdomain to link (generated when omitted)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	cwd, err := os.Getwd()
	if err != nil {
		return failfast.New("Could not determine the current folder", err)
	}

	existing, err := projectlink.Find(cwd)
	if err != nil {
		return failfast.New("Could not read the project link", err)
	}

	name := subdomain.Normalize(initName)
	switch {
	case name != "" && !a.identity.Authenticated:
		return failfast.New("Custom subdomains require an account", nil,
			"Run 'launchpd login'",
			"Run 'launchpd init' without --name for a generated subdomain")
	case name == "" && existing != nil:
		a.log.Info("Already linked to %s (%s)", existing.Subdomain, projectlink.Path(existing.Dir))
		return nil
	case name == "":
		name = subdomain.Generate()
	case !subdomain.Valid(name):
		return failfast.New("Invalid subdomain name: "+name, subdomain.ErrInvalidName,
			"Use lowercase letters, digits and hyphens (max 63 characters)")
	}

	r := &subdomain.Resolver{Client: a.client, Reporter: a.log, Authenticated: a.identity.Authenticated}
	avail, err := r.CheckAvailability(ctx, name)
	if err != nil {
		if errors.Is(err, subdomain.ErrSubdomainTaken) {
			return failfast.New("Subdomain "+name+" is already taken by another user", err,
				"Pick another name with --name")
		}
		return apiFailure("check "+name, err)
	}
	if a.identity.Authenticated && avail.Verified && !avail.Owned {
		if err := a.client.ReserveSubdomain(ctx, name); err != nil {
			return apiFailure("reserve "+name, err)
		}
		a.log.Success("Reserved %s", name)
	}

	link, err := projectlink.Save(cwd, name)
	if err != nil {
		return failfast.New("Could not write the project link", err)
	}
	a.log.Success("Linked %s to %s", cwd, link.Subdomain)
	a.log.Info("Deploy with: launchpd deploy . -m \"first deploy\"")
	return nil
}
