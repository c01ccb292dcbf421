// Package quota is the pre-flight check that asks the service whether a
// deployment of a given size may proceed.
package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"launchpd/internal/api"
	"launchpd/internal/credentials"
	"launchpd/internal/logging"
)

// WarnPercent is the projected storage usage that triggers a warning.
const WarnPercent = 80

// API is the part of the service client the gate uses.
type API interface {
	GetQuota(ctx context.Context, isUpdate bool) (*api.Quota, error)
	GetAnonymousQuota(ctx context.Context, clientToken string, estimatedBytes int64) (*api.Quota, error)
	ListSubdomains(ctx context.Context) ([]api.Subdomain, error)
}

// Options tune a check.
type Options struct {
	// IsUpdate asserts the subdomain already belongs to the caller.
	IsUpdate bool
}

// Result is the gate's decision.
type Result struct {
	Allowed   bool
	IsNewSite bool
	// Quota is nil when the snapshot could not be fetched.
	Quota    *api.Quota
	Warnings []string
	// Reason explains a denial.
	Reason string
}

// Gate checks quota for one identity.
type Gate struct {
	client        API
	authenticated bool
	clientToken   string
}

// NewGate returns a gate. clientToken is only used for anonymous identities.
func NewGate(client API, authenticated bool, clientToken string) *Gate {
	return &Gate{client: client, authenticated: authenticated, clientToken: clientToken}
}

// Check decides whether estimatedBytes may be deployed to subdomain. It
// allows the deployment when the quota cannot be fetched; the server still
// enforces limits on upload.
func (g *Gate) Check(ctx context.Context, subdomain string, estimatedBytes int64, opts Options) Result {
	log := logging.Named("quota")

	q, err := g.fetch(ctx, opts.IsUpdate, estimatedBytes)
	if err != nil {
		if api.IsKind(err, api.KindQuota) {
			return Result{Allowed: false, Reason: err.Error()}
		}
		log.Debug("quota fetch failed, allowing", zap.Error(err))
		return Result{
			Allowed:  true,
			Warnings: []string{fmt.Sprintf("Could not verify quota (%v); the server will enforce limits", err)},
		}
	}

	res := Result{Allowed: true, Quota: q, IsNewSite: g.isNewSite(ctx, subdomain, opts)}
	if q.Blocked {
		res.Allowed = false
		res.Reason = q.Message
		if res.Reason == "" {
			res.Reason = "Deployments are blocked for this account"
		}
		return res
	}

	if res.IsNewSite {
		maxSites := q.Limits.MaxSites
		if !q.NewSiteAllowed() || (maxSites > 0 && q.Usage.SiteCount >= maxSites) {
			res.deny(fmt.Sprintf("Site limit reached (%d/%d sites)", q.Usage.SiteCount, maxSites))
		}
	}

	if limit := q.Limits.StorageLimit(); limit > 0 {
		projected := q.Usage.StorageUsed + estimatedBytes
		if projected*100 >= limit*WarnPercent {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Storage usage will be at %d%% of your limit (%s of %s)",
				projected*100/limit, humanize.IBytes(uint64(projected)), humanize.IBytes(uint64(limit))))
		}
		if projected > limit {
			res.deny(fmt.Sprintf("Storage limit exceeded: %s used + %s upload > %s",
				humanize.IBytes(uint64(q.Usage.StorageUsed)), humanize.IBytes(uint64(estimatedBytes)), humanize.IBytes(uint64(limit))))
		}
	}

	if !q.DeployAllowed() {
		msg := q.Message
		if msg == "" {
			msg = "Your quota does not allow deploying right now"
		}
		res.deny(msg)
	}
	return res
}

func (r *Result) deny(reason string) {
	if r.Allowed {
		r.Allowed = false
		r.Reason = reason
	}
}

var errInvalidToken = errors.New("client token is malformed")

func (g *Gate) fetch(ctx context.Context, isUpdate bool, estimatedBytes int64) (*api.Quota, error) {
	if g.authenticated {
		return g.client.GetQuota(ctx, isUpdate)
	}
	if !credentials.ValidToken(g.clientToken) {
		return nil, errInvalidToken
	}
	return g.client.GetAnonymousQuota(ctx, g.clientToken, estimatedBytes)
}

// isNewSite treats the subdomain as new unless the caller asserted an
// update or it is in the caller's owned list.
func (g *Gate) isNewSite(ctx context.Context, subdomain string, opts Options) bool {
	if opts.IsUpdate {
		return false
	}
	if subdomain == "" {
		return true
	}
	owned, err := g.client.ListSubdomains(ctx)
	if err != nil {
		logging.Named("quota").Debug("owned subdomains unavailable", zap.Error(err))
		return true
	}
	for _, s := range owned {
		if s.Subdomain == subdomain {
			return false
		}
	}
	return true
}
