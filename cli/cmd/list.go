package cmd

import (
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"launchpd/internal/api"
	"launchpd/internal/failfast"
	"launchpd/internal/history"
	"launchpd/internal/metadata"
)

var (
	listJSON  bool
	listLocal bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your deployments",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON")
	listCmd.Flags().BoolVar(&listLocal, "local", false, "Only show deployments recorded on this machine")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	var deployments []api.Deployment
	remote := !listLocal && a.identity.Authenticated
	if remote {
		deployments, err = a.client.ListDeployments(ctx)
		if err != nil {
			a.log.Warn("Could not fetch deployments (%v); showing local history", err)
			remote = false
		}
	}
	if !remote {
		records, err := history.NewStore(a.cfg.Home).All()
		if err != nil {
			return failfast.New("Could not read local deployment history", err)
		}
		deployments, err = fromHistory(records, metadata.NewLocalStore(a.cfg.Home))
		if err != nil {
			return failfast.New("Could not read the local active versions", err)
		}
	}

	sort.SliceStable(deployments, func(i, j int) bool {
		return deployments[i].CreatedAt.After(deployments[j].CreatedAt)
	})

	if listJSON {
		return a.log.JSON(deployments)
	}
	if len(deployments) == 0 {
		a.log.Info("No deployments yet. Run 'launchpd deploy' to create one.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(deployments))
	for _, d := range deployments {
		active := ""
		if d.IsActive {
			active = "●"
		}
		expires := "-"
		if d.ExpiresAt != nil {
			expires = humanize.Time(*d.ExpiresAt)
			if now.After(*d.ExpiresAt) {
				expires = "expired"
			}
		}
		rows = append(rows, []string{
			d.Subdomain,
			"v" + strconv.Itoa(d.Version) + active,
			strconv.Itoa(d.FileCount),
			humanize.IBytes(uint64(d.TotalBytes)),
			humanize.Time(d.CreatedAt),
			expires,
			truncate(d.Message, 40),
		})
	}
	a.log.Table([]string{"SUBDOMAIN", "VERSION", "FILES", "SIZE", "DEPLOYED", "EXPIRES", "MESSAGE"}, rows)
	if verbose {
		for _, d := range deployments {
			a.log.Debug("%s -> %s", d.Subdomain, a.cfg.SiteURL(d.Subdomain))
		}
	}
	return nil
}

// activePointer is the local record of which version each subdomain serves.
type activePointer interface {
	Active(subdomain string) (int, bool, error)
}

// fromHistory converts local records. The version recorded in the active
// pointer is flagged; subdomains without a pointer flag their newest version.
func fromHistory(records []history.Record, pointer activePointer) ([]api.Deployment, error) {
	active := map[string]int{}
	for _, r := range records {
		if r.Version > active[r.Subdomain] {
			active[r.Subdomain] = r.Version
		}
	}
	for sub := range active {
		v, ok, err := pointer.Active(sub)
		if err != nil {
			return nil, err
		}
		if ok {
			active[sub] = v
		}
	}

	out := make([]api.Deployment, 0, len(records))
	for _, r := range records {
		out = append(out, api.Deployment{
			Subdomain:  r.Subdomain,
			Version:    r.Version,
			FolderName: r.FolderName,
			FileCount:  r.FileCount,
			TotalBytes: r.TotalBytes,
			Message:    r.Message,
			CreatedAt:  r.Timestamp,
			ExpiresAt:  r.ExpiresAt,
			IsActive:   active[r.Subdomain] == r.Version,
		})
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
