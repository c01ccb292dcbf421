package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"launchpd/internal/failfast"
	"launchpd/internal/versions"
)

var rollbackTo int

var rollbackCmd = &cobra.Command{
	Use:   "rollback <subdomain>",
	Short: "Point a site back at an earlier version",
	Long: `Rollback makes an earlier version active again. Without --to it picks
the version just before the active one. No files are copied; every version
stays available.`,
	Args: cobra.ExactArgs(1),
	RunE: runRollback,
}

func init() {
	rollbackCmd.Flags().IntVar(&rollbackTo, "to", 0, "Version to make active")
	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	if rollbackTo < 0 {
		return failfast.New("--to must be a positive version number", nil)
	}

	sub := args[0]
	a.log.Start("Rolling back %s", sub)
	res, err := a.versionManager(ctx).Rollback(ctx, sub, rollbackTo)
	if err != nil {
		a.log.Fail("Rollback failed")
		return rollbackFailure(sub, err)
	}

	if res.NoOp {
		a.log.Succeed("v%d is already active on %s", res.To, sub)
		return nil
	}
	a.log.Succeed("%s now serves v%d (was v%d)", sub, res.To, res.From)
	a.log.Info("%s", a.cfg.SiteURL(sub))
	return nil
}

func rollbackFailure(sub string, err error) error {
	var nf *versions.NotFoundError
	switch {
	case errors.As(err, &nf):
		return failfast.New(nf.Error(), err,
			"Run 'launchpd versions "+sub+"' to see every version")
	case errors.Is(err, versions.ErrCannotRollbackFurther):
		return failfast.New("Cannot rollback further: the active version is the oldest", err,
			"Pick a newer version with --to")
	case errors.Is(err, versions.ErrNoVersions):
		return failfast.New("No versions found for "+sub, err,
			"Check the subdomain with 'launchpd list'")
	default:
		return failfast.New("Could not roll back "+sub, err,
			"Re-run with --verbose for details")
	}
}
