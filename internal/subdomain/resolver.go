// Package subdomain decides which subdomain a deployment targets and checks
// that the caller may use it.
package subdomain

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"launchpd/internal/api"
	"launchpd/internal/logging"
	"launchpd/internal/projectlink"
	"launchpd/shared"
)

var (
	// ErrInvalidName is returned for names that are not DNS labels.
	ErrInvalidName = errors.New("invalid subdomain name")
	// ErrSubdomainTaken is returned when another account owns the name.
	ErrSubdomainTaken = errors.New("subdomain already taken by another user")
)

// API is the part of the service client the resolver uses.
type API interface {
	CheckSubdomain(ctx context.Context, name string) (bool, error)
	ListSubdomains(ctx context.Context) ([]api.Subdomain, error)
}

// Confirmer asks yes/no questions.
type Confirmer interface {
	YesNo(question string, defaultYes bool) (bool, error)
}

// Resolver resolves subdomains for one identity.
type Resolver struct {
	Client        API
	Prompt        Confirmer
	Reporter      shared.Reporter
	Authenticated bool
	// AutoYes answers every prompt with yes.
	AutoYes bool
}

// Resolution is the resolved target.
type Resolution struct {
	Subdomain string
	Generated bool
	FromLink  bool
	// Link is the project link in effect after resolution, if any.
	Link *projectlink.Link
}

// Resolve picks the subdomain for a deploy of folder. An explicit name is
// honoured only for authenticated identities; otherwise the project link is
// used, and failing that a name is generated.
func (r *Resolver) Resolve(ctx context.Context, folder, explicit string) (*Resolution, error) {
	explicit = Normalize(explicit)

	link, err := projectlink.Find(folder)
	if err != nil {
		r.Reporter.Warn("Ignoring unreadable project link: %v", err)
		link = nil
	}

	res := &Resolution{Link: link}
	switch {
	case explicit != "" && !r.Authenticated:
		r.Reporter.Warn("Custom subdomains require an account; using a generated name instead of %q", explicit)
		explicit = ""
		res.Subdomain = Generate()
		res.Generated = true
	case explicit != "":
		if !Valid(explicit) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, explicit)
		}
		res.Subdomain = explicit
	case link != nil:
		res.Subdomain = link.Subdomain
		res.FromLink = true
	default:
		res.Subdomain = Generate()
		res.Generated = true
	}

	// A downgraded anonymous name leaves the link alone.
	if explicit != "" && link != nil && link.Subdomain != res.Subdomain {
		update, err := r.confirm(fmt.Sprintf("This project is linked to %q. Update the link to %q?", link.Subdomain, res.Subdomain), false)
		if err != nil {
			return nil, err
		}
		if update {
			saved, err := projectlink.Save(link.Dir, res.Subdomain)
			if err != nil {
				return nil, err
			}
			res.Link = saved
			r.Reporter.Info("Project link updated to %s", res.Subdomain)
		}
	}

	if link == nil && explicit != "" {
		create, err := r.confirm(fmt.Sprintf("Link this folder to %q for future deploys?", res.Subdomain), true)
		if err != nil {
			return nil, err
		}
		if create {
			dir, err := filepath.Abs(folder)
			if err != nil {
				return nil, err
			}
			saved, err := projectlink.Save(dir, res.Subdomain)
			if err != nil {
				return nil, err
			}
			res.Link = saved
			r.Reporter.Info("Linked %s to %s", dir, res.Subdomain)
		}
	}

	return res, nil
}

func (r *Resolver) confirm(question string, defaultYes bool) (bool, error) {
	if r.AutoYes {
		return true, nil
	}
	if r.Prompt == nil {
		return defaultYes, nil
	}
	return r.Prompt.YesNo(question, defaultYes)
}

// Availability is the outcome of the availability check.
type Availability struct {
	// Owned is set when the name is taken by the caller.
	Owned bool
	// Verified is false when the service could not be asked.
	Verified bool
}

// CheckAvailability verifies name is free or owned by the caller. Failure to
// ask the service is reported as a warning, not an error.
func (r *Resolver) CheckAvailability(ctx context.Context, name string) (Availability, error) {
	log := logging.Named("subdomain")

	available, err := r.Client.CheckSubdomain(ctx, name)
	if err != nil {
		log.Debug("availability check failed", zap.String("subdomain", name), zap.Error(err))
		r.Reporter.Warn("Could not verify availability of %s: %v", name, err)
		return Availability{}, nil
	}
	if available {
		return Availability{Verified: true}, nil
	}

	owned, err := r.Client.ListSubdomains(ctx)
	if err != nil {
		log.Debug("owned subdomains unavailable", zap.Error(err))
		r.Reporter.Warn("Could not verify ownership of %s: %v", name, err)
		return Availability{}, nil
	}
	for _, s := range owned {
		if s.Subdomain == name {
			return Availability{Owned: true, Verified: true}, nil
		}
	}
	return Availability{Verified: true}, fmt.Errorf("%w: %s", ErrSubdomainTaken, name)
}
