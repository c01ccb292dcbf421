// Package deploy runs the deploy command end to end: local checks, target
// resolution, quota, upload and finalize.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"launchpd/internal/api"
	"launchpd/internal/failfast"
	"launchpd/internal/history"
	"launchpd/internal/logging"
	"launchpd/internal/qrcode"
	"launchpd/internal/quota"
	"launchpd/internal/scan"
	"launchpd/internal/subdomain"
	"launchpd/internal/upload"
	"launchpd/internal/validator"
	"launchpd/shared"
)

// Anonymous tier limits shown after an anonymous deploy.
const (
	AnonymousMaxSites      = 3
	AnonymousMaxStorageMB  = 50
	AnonymousMaxVersions   = 1
	AnonymousRetentionDays = 7
)

// Resolver picks and checks the target subdomain.
type Resolver interface {
	Resolve(ctx context.Context, folder, explicit string) (*subdomain.Resolution, error)
	CheckAvailability(ctx context.Context, name string) (subdomain.Availability, error)
}

// QuotaChecker is the pre-flight quota gate.
type QuotaChecker interface {
	Check(ctx context.Context, subdomain string, estimatedBytes int64, opts quota.Options) quota.Result
}

// VersionSource hands out the next version number.
type VersionSource interface {
	NextVersion(ctx context.Context, subdomain string) int
}

// Uploader sends files and commits the version.
type Uploader interface {
	UploadFiles(ctx context.Context, files []scan.File, subdomain string, version int, onProgress func(upload.Progress)) (upload.Summary, error)
	Finalize(ctx context.Context, done api.Completion) (*api.CompletionResult, error)
}

// Recorder keeps the local deployment history.
type Recorder interface {
	Append(r history.Record) error
}

// ActivePointer records the locally known active version.
type ActivePointer interface {
	SetActive(subdomain string, version int) error
}

// Pipeline holds the collaborators of a deploy.
type Pipeline struct {
	Resolver      Resolver
	Quota         QuotaChecker
	Versions      VersionSource
	Uploader      Uploader
	History       Recorder
	Active        ActivePointer
	Reporter      shared.Reporter
	Authenticated bool
	// SiteURL builds the public URL of a subdomain.
	SiteURL func(subdomain string) string
	// Open launches a browser; nil disables --open.
	Open func(url string) error
	// Out receives the QR code.
	Out io.Writer
	Now func() time.Time
}

// Options are the deploy flags.
type Options struct {
	Folder  string
	Name    string
	Message string
	Expires string
	Force   bool
	OpenURL bool
	QR      bool
}

// Outcome describes a finished deployment.
type Outcome struct {
	Subdomain  string
	Version    int
	URL        string
	FileCount  int
	TotalBytes int64
	ExpiresAt  *time.Time
	IsNewSite  bool
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run deploys opts.Folder. Every hard failure is returned as a
// *failfast.Failure; nothing is uploaded before the local checks pass.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Outcome, error) {
	log := logging.Named("deploy")
	rep := p.Reporter

	var expiresAt *time.Time
	if opts.Expires != "" {
		at, err := ParseExpiration(opts.Expires, p.now())
		if err != nil {
			return nil, failfast.New("Invalid expiration: "+opts.Expires, err,
				"Use a number with m, h or d, e.g. 45m, 2h or 7d",
				"The minimum is 30 minutes")
		}
		expiresAt = &at
	}

	message := strings.TrimSpace(opts.Message)
	if message == "" {
		return nil, failfast.New("A deployment message is required", nil,
			`Describe the deploy with --message "what changed"`)
	}

	folder, err := filepath.Abs(opts.Folder)
	if err != nil {
		return nil, failfast.New("Invalid folder: "+opts.Folder, err)
	}
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, failfast.New("Folder not found: "+opts.Folder, err,
			"Check the path and try again")
	}

	rep.Start("Scanning %s", folder)
	files, err := scan.Files(folder)
	if err != nil {
		rep.Fail("Scan failed")
		return nil, failfast.New("Could not read "+opts.Folder, err)
	}
	if len(files) == 0 {
		rep.Fail("Nothing to deploy")
		return nil, failfast.New("No deployable files found in "+opts.Folder, nil,
			"Point launchpd at your site's output folder, e.g. dist/ or build/")
	}
	rep.Succeed("Found %d files", len(files))

	rep.Start("Validating static content")
	result, err := validator.Validate(folder)
	if err != nil {
		rep.Fail("Validation failed")
		return nil, failfast.New("Could not validate "+opts.Folder, err)
	}
	if !result.Success {
		if !opts.Force {
			rep.Fail("Folder contains non-static files")
			return nil, failfast.New(
				fmt.Sprintf("%d file(s) are not allowed on a static host", len(result.Violations)), nil,
				"Deploy your build output folder instead of the project root",
				"Use --force to deploy anyway",
			).WithDetails(violationDetails(result.Violations)...)
		}
		rep.Warn("Deploying despite %d non-static file(s) because of --force:", len(result.Violations))
		for _, v := range result.Violations {
			rep.Warn("  %s", v)
		}
	} else {
		rep.Succeed("Static content OK")
	}

	resolution, err := p.Resolver.Resolve(ctx, folder, opts.Name)
	if err != nil {
		if errors.Is(err, subdomain.ErrInvalidName) {
			return nil, failfast.New("Invalid subdomain name", err,
				"Use lowercase letters, digits and hyphens (max 63 characters)")
		}
		return nil, failfast.New("Could not resolve the target subdomain", err)
	}
	sub := resolution.Subdomain
	log.Debug("resolved subdomain", zap.String("subdomain", sub), zap.Bool("generated", resolution.Generated))

	rep.Start("Checking %s", sub)
	avail, err := p.Resolver.CheckAvailability(ctx, sub)
	if err != nil {
		rep.Fail("Subdomain unavailable")
		if errors.Is(err, subdomain.ErrSubdomainTaken) {
			return nil, failfast.New(fmt.Sprintf("Subdomain %q is already taken by another user", sub), err,
				"Pick another name with --name",
				"Omit --name to get a generated one")
		}
		return nil, failfast.New("Could not check subdomain "+sub, err)
	}
	rep.Succeed("Subdomain %s is ready", sub)

	size := scan.TotalSize(files)

	rep.Start("Checking quota for %s", humanize.IBytes(uint64(size)))
	q := p.Quota.Check(ctx, sub, size, quota.Options{IsUpdate: avail.Owned})
	for _, w := range q.Warnings {
		rep.Warn("%s", w)
	}
	if !q.Allowed {
		blocked := q.Quota != nil && q.Quota.Blocked
		if !opts.Force || blocked {
			rep.Fail("Quota check failed")
			return nil, failfast.New("Quota check failed: "+q.Reason, nil,
				"Run 'launchpd quota' to see your usage",
				"Remove unused sites or upgrade your plan")
		}
		rep.Warn("Quota check failed (%s); continuing because of --force", q.Reason)
	} else {
		rep.Succeed("Quota OK")
	}

	version := p.Versions.NextVersion(ctx, sub)
	log.Debug("next version", zap.String("subdomain", sub), zap.Int("version", version))

	rep.Start("Uploading %d files to %s (v%d)", len(files), sub, version)
	sum, err := p.Uploader.UploadFiles(ctx, files, sub, version, func(pr upload.Progress) {
		rep.Progress(pr.Done, pr.Total, pr.Path)
	})
	if err != nil {
		rep.Fail("Upload failed")
		return nil, uploadFailure("Upload", err)
	}

	rep.Start("Finalizing v%d", version)
	_, err = p.Uploader.Finalize(ctx, api.Completion{
		Subdomain:  sub,
		Version:    version,
		FileCount:  sum.Uploaded,
		TotalBytes: sum.TotalBytes,
		FolderName: filepath.Base(folder),
		ExpiresAt:  expiresAt,
		Message:    message,
	})
	if err != nil {
		rep.Fail("Finalize failed")
		return nil, uploadFailure("Finalize", err)
	}

	out := &Outcome{
		Subdomain:  sub,
		Version:    version,
		URL:        p.SiteURL(sub),
		FileCount:  sum.Uploaded,
		TotalBytes: sum.TotalBytes,
		ExpiresAt:  expiresAt,
		IsNewSite:  q.IsNewSite,
	}
	p.record(out, filepath.Base(folder), message)

	rep.Succeed("Deployed %s v%d (%d files, %s): %s",
		sub, version, out.FileCount, humanize.IBytes(uint64(out.TotalBytes)), out.URL)
	p.present(out, opts)
	return out, nil
}

// record writes the local history entry. The deployment already succeeded,
// so problems here are warnings.
func (p *Pipeline) record(out *Outcome, folderName, message string) {
	if p.History != nil {
		err := p.History.Append(history.Record{
			Subdomain:  out.Subdomain,
			Version:    out.Version,
			FolderName: folderName,
			FileCount:  out.FileCount,
			TotalBytes: out.TotalBytes,
			Timestamp:  p.now().UTC(),
			ExpiresAt:  out.ExpiresAt,
			Message:    message,
		})
		if err != nil {
			p.Reporter.Warn("Could not save local deployment record: %v", err)
		}
	}
	if p.Active != nil {
		if err := p.Active.SetActive(out.Subdomain, out.Version); err != nil {
			p.Reporter.Warn("Could not save local active version: %v", err)
		}
	}
}

func (p *Pipeline) present(out *Outcome, opts Options) {
	rep := p.Reporter

	if out.ExpiresAt != nil {
		rep.Info("Expires %s (%s)", humanize.Time(*out.ExpiresAt), out.ExpiresAt.Local().Format(time.RFC1123))
	}
	if opts.QR && p.Out != nil {
		if err := qrcode.Render(p.Out, out.URL); err != nil {
			rep.Warn("Could not render QR code: %v", err)
		}
	}
	if opts.OpenURL && p.Open != nil {
		if err := p.Open(out.URL); err != nil {
			rep.Warn("Could not open a browser: %v", err)
		}
	}
	if !p.Authenticated {
		rep.Info("Anonymous deploys are limited to %d sites, %d MB, %d version per site and %d days retention",
			AnonymousMaxSites, AnonymousMaxStorageMB, AnonymousMaxVersions, AnonymousRetentionDays)
		rep.Info("Run 'launchpd register' for custom names and more versions")
	}
}
