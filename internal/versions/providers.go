package versions

import (
	"context"
	"errors"
	"net/http"

	"launchpd/internal/api"
	"launchpd/internal/history"
	"launchpd/internal/metadata"
)

// VersionsAPI is the part of the service client the API provider needs.
type VersionsAPI interface {
	GetVersions(ctx context.Context, subdomain string) (*api.Versions, error)
	Rollback(ctx context.Context, subdomain string, version int) (*api.RollbackResult, error)
}

// APIProvider reads and repoints versions through the service.
type APIProvider struct {
	Client VersionsAPI
}

func (p *APIProvider) Name() string { return "api" }

func (p *APIProvider) Versions(ctx context.Context, subdomain string) (*Set, error) {
	res, err := p.Client.GetVersions(ctx, subdomain)
	if e, ok := api.AsError(err); ok && e.Kind == api.KindAPI && e.Status == http.StatusNotFound {
		// The service has never seen the subdomain.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(res.Versions) == 0 {
		return nil, nil
	}

	set := &Set{Active: res.ActiveVersion}
	for _, v := range res.Versions {
		set.Versions = append(set.Versions, Entry{
			Version:    v.Version,
			FolderName: v.FolderName,
			FileCount:  v.FileCount,
			TotalBytes: v.TotalBytes,
			Message:    v.Message,
			CreatedAt:  v.CreatedAt,
			ExpiresAt:  v.ExpiresAt,
		})
	}
	return set, nil
}

func (p *APIProvider) SetActive(ctx context.Context, subdomain string, version int) (bool, error) {
	res, err := p.Client.Rollback(ctx, subdomain, version)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

// LegacyStore is the object-storage metadata layout.
type LegacyStore interface {
	Versions(ctx context.Context, subdomain string) ([]metadata.VersionMeta, error)
	Active(ctx context.Context, subdomain string) (int, error)
	SetActive(ctx context.Context, subdomain string, version int) error
}

// LegacyProvider reads the legacy bucket.
type LegacyProvider struct {
	Store LegacyStore
}

func (p *LegacyProvider) Name() string { return "legacy" }

func (p *LegacyProvider) Versions(ctx context.Context, subdomain string) (*Set, error) {
	metas, err := p.Store.Versions(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, nil
	}

	set := &Set{}
	for _, m := range metas {
		set.Versions = append(set.Versions, Entry{
			Version:    m.Version,
			FolderName: m.FolderName,
			FileCount:  m.FileCount,
			TotalBytes: m.TotalBytes,
			Message:    m.Message,
			CreatedAt:  m.Timestamp,
			ExpiresAt:  m.ExpiresAt,
		})
	}

	active, err := p.Store.Active(ctx, subdomain)
	switch {
	case err == nil:
		set.Active = active
	case errors.Is(err, metadata.ErrNoActive):
	default:
		return nil, err
	}
	return set, nil
}

func (p *LegacyProvider) SetActive(ctx context.Context, subdomain string, version int) (bool, error) {
	if err := p.Store.SetActive(ctx, subdomain, version); err != nil {
		return false, err
	}
	return true, nil
}

// HistoryReader lists locally recorded deployments.
type HistoryReader interface {
	ForSubdomain(subdomain string) ([]history.Record, error)
}

// ActiveStore keeps a local active-version pointer.
type ActiveStore interface {
	Active(subdomain string) (int, bool, error)
	SetActive(subdomain string, version int) error
}

// LocalProvider derives versions from the local deployment history.
type LocalProvider struct {
	History HistoryReader
	Active  ActiveStore
}

func (p *LocalProvider) Name() string { return "local" }

func (p *LocalProvider) Versions(_ context.Context, subdomain string) (*Set, error) {
	records, err := p.History.ForSubdomain(subdomain)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	set := &Set{}
	for _, r := range records {
		set.Versions = append(set.Versions, Entry{
			Version:    r.Version,
			FolderName: r.FolderName,
			FileCount:  r.FileCount,
			TotalBytes: r.TotalBytes,
			Message:    r.Message,
			CreatedAt:  r.Timestamp,
			ExpiresAt:  r.ExpiresAt,
		})
	}

	active, ok, err := p.Active.Active(subdomain)
	if err != nil {
		return nil, err
	}
	if ok {
		set.Active = active
	}
	return set, nil
}

func (p *LocalProvider) SetActive(_ context.Context, subdomain string, version int) (bool, error) {
	if err := p.Active.SetActive(subdomain, version); err != nil {
		return false, err
	}
	return true, nil
}
