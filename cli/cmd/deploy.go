package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"launchpd/cli/internal/deploy"
	"launchpd/cli/internal/prompt"
	"launchpd/internal/history"
	"launchpd/internal/metadata"
	"launchpd/internal/quota"
	"launchpd/internal/subdomain"
	"launchpd/internal/upload"
)

var (
	deployName    string
	deployMessage string
	deployExpires string
	deployYes     bool
	deployForce   bool
	deployOpen    bool
	deployQR      bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy [folder]",
	Short: "Deploy a folder as a new version of a site",
	Long: `Deploy validates that the folder only holds static assets, picks the
target subdomain (explicit --name, the project link, or a generated name),
checks your quota, uploads every file and finalizes a new version.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVar(&deployName, "name", "", "Subdomain to deploy to (requires login)")
	deployCmd.Flags().StringVarP(&deployMessage, "message", "m", "", "Describe this deployment (required)")
	deployCmd.Flags().StringVar(&deployExpires, "expires", "", "Take the site down after a while, e.g. 30m, 2h, 7d")
	deployCmd.Flags().BoolVarP(&deployYes, "yes", "y", false, "Answer yes to every prompt")
	deployCmd.Flags().BoolVar(&deployForce, "force", false, "Deploy despite validation or quota problems")
	deployCmd.Flags().BoolVarP(&deployOpen, "open", "o", false, "Open the site in a browser")
	deployCmd.Flags().BoolVar(&deployQR, "qr", false, "Show a QR code of the site URL")

	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	folder := "."
	if len(args) == 1 {
		folder = args[0]
	}

	token := ""
	if !a.identity.Authenticated {
		token, err = a.store.ClientToken()
		if err != nil {
			a.log.Warn("Could not read the client token: %v", err)
		}
	}

	p := &deploy.Pipeline{
		Resolver: &subdomain.Resolver{
			Client:        a.client,
			Prompt:        prompt.NewCLIPrompter(deployYes),
			Reporter:      a.log,
			Authenticated: a.identity.Authenticated,
			AutoYes:       deployYes,
		},
		Quota:         quota.NewGate(a.client, a.identity.Authenticated, token),
		Versions:      a.versionManager(ctx),
		Uploader:      upload.NewEngine(a.client, a.cfg.UploadRPS),
		History:       history.NewStore(a.cfg.Home),
		Active:        metadata.NewLocalStore(a.cfg.Home),
		Reporter:      a.log,
		Authenticated: a.identity.Authenticated,
		SiteURL:       a.cfg.SiteURL,
		Open:          openBrowser,
		Out:           os.Stdout,
	}

	_, err = p.Run(ctx, deploy.Options{
		Folder:  folder,
		Name:    deployName,
		Message: deployMessage,
		Expires: deployExpires,
		Force:   deployForce,
		OpenURL: deployOpen,
		QR:      deployQR,
	})
	return err
}
