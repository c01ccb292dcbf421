package cmd

import (
	"errors"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"launchpd/internal/failfast"
	"launchpd/internal/versions"
)

var versionsJSON bool

var versionsCmd = &cobra.Command{
	Use:   "versions <subdomain>",
	Short: "List the versions of a site",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersions,
}

func init() {
	versionsCmd.Flags().BoolVar(&versionsJSON, "json", false, "Print JSON")
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	sub := args[0]
	set, err := a.versionManager(ctx).List(ctx, sub)
	if errors.Is(err, versions.ErrNoVersions) {
		return failfast.New("No versions found for "+sub, err,
			"Check the subdomain with 'launchpd list'")
	}
	if err != nil {
		return failfast.New("Could not list versions of "+sub, err)
	}

	if versionsJSON {
		return a.log.JSON(set)
	}

	rows := make([][]string, 0, len(set.Versions))
	for _, v := range set.Versions {
		marker := ""
		if v.IsActive {
			marker = "active"
		}
		rows = append(rows, []string{
			"v" + strconv.Itoa(v.Version),
			marker,
			strconv.Itoa(v.FileCount),
			humanize.IBytes(uint64(v.TotalBytes)),
			humanize.Time(v.CreatedAt),
			truncate(v.Message, 50),
		})
	}
	a.log.Info("%s (%s)", a.cfg.SiteURL(sub), set.Source)
	a.log.Table([]string{"VERSION", "STATUS", "FILES", "SIZE", "CREATED", "MESSAGE"}, rows)
	return nil
}
