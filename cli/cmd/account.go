package cmd

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"launchpd/cli/internal/prompt"
	"launchpd/internal/api"
	"launchpd/internal/credentials"
	"launchpd/internal/failfast"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show usage against your limits",
	Args:  cobra.NoArgs,
	RunE:  runQuota,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Resend the email verification link",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

var infoCmd = &cobra.Command{
	Use:   "info <subdomain>",
	Short: "Show details of one site",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var rotateKeyCmd = &cobra.Command{
	Use:   "rotate-key",
	Short: "Revoke your API key and issue a new one",
	Args:  cobra.NoArgs,
	RunE:  runRotateKey,
}

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your account password",
	Args:  cobra.NoArgs,
	RunE:  runPassword,
}

func init() {
	rootCmd.AddCommand(quotaCmd, verifyCmd, infoCmd, rotateKeyCmd, passwordCmd)
}

func runQuota(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	var q *api.Quota
	if a.identity.Authenticated {
		q, err = a.client.GetQuota(ctx, false)
	} else {
		token, terr := a.store.ClientToken()
		if terr != nil {
			return failfast.New("Could not read the client token", terr)
		}
		q, err = a.client.GetAnonymousQuota(ctx, token, 0)
	}
	if err != nil {
		return apiFailure("fetch your quota", err)
	}

	limit := "unlimited"
	if l := q.Limits.StorageLimit(); l > 0 {
		limit = humanize.IBytes(uint64(l))
	}
	sites := "unlimited"
	if q.Limits.MaxSites > 0 {
		sites = strconv.Itoa(q.Limits.MaxSites)
	}
	rows := [][]string{
		{"Sites", strconv.Itoa(q.Usage.SiteCount), sites},
		{"Storage", humanize.IBytes(uint64(q.Usage.StorageUsed)), limit},
	}
	if q.Limits.MaxVersionsPerSite > 0 {
		rows = append(rows, []string{"Versions per site", "-", strconv.Itoa(q.Limits.MaxVersionsPerSite)})
	}
	if q.Limits.RetentionDays > 0 {
		rows = append(rows, []string{"Retention", "-", strconv.Itoa(q.Limits.RetentionDays) + " days"})
	}

	tier := q.Tier
	if tier == "" && !a.identity.Authenticated {
		tier = "anonymous"
	}
	a.log.Info("Tier: %s", tier)
	a.log.Table([]string{"RESOURCE", "USED", "LIMIT"}, rows)

	switch {
	case q.Blocked:
		a.log.Error("Deployments are blocked: %s", q.Message)
	case !q.DeployAllowed():
		a.log.Warn("You cannot deploy right now: %s", q.Message)
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	ack, err := a.client.ResendVerification(ctx)
	if err != nil {
		return apiFailure("resend the verification email", err)
	}
	msg := ack.Message
	if msg == "" {
		msg = "Verification email sent"
	}
	a.log.Success("%s", msg)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	site, err := a.client.GetDeployment(ctx, args[0])
	if err != nil {
		return apiFailure("fetch "+args[0], err)
	}

	url := site.URL
	if url == "" {
		url = a.cfg.SiteURL(site.Subdomain)
	}
	a.log.Info("%s  %s", site.Subdomain, url)
	a.log.Info("Active version: v%d", site.ActiveVersion)
	if !site.CreatedAt.IsZero() {
		a.log.Info("Created %s", humanize.Time(site.CreatedAt))
	}

	rows := make([][]string, 0, len(site.Deployments))
	for _, d := range site.Deployments {
		status := ""
		if d.IsActive || d.Version == site.ActiveVersion {
			status = "active"
		}
		rows = append(rows, []string{
			"v" + strconv.Itoa(d.Version),
			status,
			strconv.Itoa(d.FileCount),
			humanize.IBytes(uint64(d.TotalBytes)),
			humanize.Time(d.CreatedAt),
			truncate(d.Message, 50),
		})
	}
	if len(rows) > 0 {
		a.log.Table([]string{"VERSION", "STATUS", "FILES", "SIZE", "CREATED", "MESSAGE"}, rows)
	}
	return nil
}

func runRotateKey(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	ok, err := prompt.NewCLIPrompter(false).YesNo("Your current key stops working immediately. Continue?", false)
	if err != nil {
		return err
	}
	if !ok {
		a.log.Info("Key unchanged")
		return nil
	}

	pair, err := a.client.RegenerateAPIKey(ctx)
	if err != nil {
		return apiFailure("rotate the API key", err)
	}

	creds := &credentials.Credentials{APIKey: pair.APIKey, APISecret: pair.APISecret}
	if old := a.identity.Credentials; old != nil {
		creds.UserID, creds.Email, creds.Tier = old.UserID, old.Email, old.Tier
	}
	if err := a.store.Save(creds); err != nil {
		a.log.Warn("Could not store the new key: %v", err)
	}
	a.log.Success("New API key: %s", pair.APIKey)
	a.log.Warn("Update LAUNCHPD_API_KEY anywhere it is set")
	return nil
}

func runPassword(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()

	p := prompt.NewCLIPrompter(false)
	current, err := p.Secret("Current password")
	if err != nil {
		return failfast.New("Password input needs a terminal", err)
	}
	next, err := p.Secret("New password")
	if err != nil {
		return err
	}
	confirm, err := p.Secret("Repeat new password")
	if err != nil {
		return err
	}
	if next != confirm {
		return failfast.New("The new passwords do not match", nil, "Run 'launchpd password' again")
	}
	if len(next) < 8 {
		return failfast.New("The new password must be at least 8 characters", nil)
	}

	if _, err := a.client.ChangePassword(ctx, current, next); err != nil {
		return apiFailure("change the password", err)
	}
	a.log.Success("Password changed")
	return nil
}
