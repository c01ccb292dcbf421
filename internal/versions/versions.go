// Package versions lists the versions of a subdomain and moves its active
// pointer. Sources are tried in order: the service first, then whatever
// fallbacks are configured.
package versions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"launchpd/internal/logging"
	"launchpd/shared"
)

var (
	// ErrNoVersions means no source knows any version of the subdomain.
	ErrNoVersions = errors.New("no versions found")
	// ErrVersionNotFound means an explicit rollback target does not exist.
	ErrVersionNotFound = errors.New("version not found")
	// ErrCannotRollbackFurther means the active version is the oldest one.
	ErrCannotRollbackFurther = errors.New("cannot rollback further")
	// ErrRollbackFailed means no source accepted the new active pointer.
	ErrRollbackFailed = errors.New("rollback failed")
)

// Entry is one version.
type Entry struct {
	Version    int        `json:"version"`
	FolderName string     `json:"folderName,omitempty"`
	FileCount  int        `json:"fileCount"`
	TotalBytes int64      `json:"totalBytes"`
	Message    string     `json:"message,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	IsActive   bool       `json:"isActive"`
}

// Set is the version list of a subdomain as one source reports it.
type Set struct {
	Versions []Entry `json:"versions"`
	// Active is the active version, zero when the source does not know it.
	Active int `json:"activeVersion"`
	// Source names the provider that answered.
	Source string `json:"source"`
}

// Numbers returns the version numbers, newest first.
func (s *Set) Numbers() []int {
	nums := make([]int, 0, len(s.Versions))
	for _, v := range s.Versions {
		nums = append(nums, v.Version)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(nums)))
	return nums
}

// Provider is one source of version metadata. Versions returns nil when the
// source has nothing usable. SetActive returns false when the source refused.
type Provider interface {
	Name() string
	Versions(ctx context.Context, subdomain string) (*Set, error)
	SetActive(ctx context.Context, subdomain string, version int) (bool, error)
}

// Manager runs the provider chain.
type Manager struct {
	providers []Provider
	reporter  shared.Reporter
}

// NewManager returns a manager trying providers in order. reporter may be
// nil.
func NewManager(reporter shared.Reporter, providers ...Provider) *Manager {
	return &Manager{providers: providers, reporter: reporter}
}

func (m *Manager) warn(msg string, args ...interface{}) {
	if m.reporter != nil {
		m.reporter.Warn(msg, args...)
	}
}

// List returns the versions of subdomain newest first, with the active one
// flagged. Without an active pointer the newest version is active.
func (m *Manager) List(ctx context.Context, subdomain string) (*Set, error) {
	for i, p := range m.providers {
		set, err := p.Versions(ctx, subdomain)
		if err != nil {
			logging.Named("versions").Debug("provider failed",
				zap.String("provider", p.Name()), zap.String("subdomain", subdomain), zap.Error(err))
			if i < len(m.providers)-1 {
				m.warn("Could not read versions from %s (%v), trying %s", p.Name(), err, m.providers[i+1].Name())
			}
			continue
		}
		if set == nil || len(set.Versions) == 0 {
			continue
		}

		set.Source = p.Name()
		sort.SliceStable(set.Versions, func(a, b int) bool {
			return set.Versions[a].Version > set.Versions[b].Version
		})
		if set.Active == 0 {
			set.Active = set.Versions[0].Version
		}
		for j := range set.Versions {
			set.Versions[j].IsActive = set.Versions[j].Version == set.Active
		}
		return set, nil
	}
	return nil, ErrNoVersions
}

// NextVersion is one more than the highest known version, or 1.
func (m *Manager) NextVersion(ctx context.Context, subdomain string) int {
	set, err := m.List(ctx, subdomain)
	if err != nil {
		return 1
	}
	highest := 0
	for _, v := range set.Versions {
		if v.Version > highest {
			highest = v.Version
		}
	}
	return highest + 1
}

// Result describes a rollback.
type Result struct {
	Subdomain string
	From      int
	To        int
	// NoOp is set when the target was already active.
	NoOp bool
	// Source names the provider that accepted the change.
	Source string
}

// NotFoundError is returned for an explicit target that does not exist.
type NotFoundError struct {
	Version   int
	Available []int
}

func (e *NotFoundError) Error() string {
	avail := make([]string, len(e.Available))
	for i, v := range e.Available {
		avail[i] = strconv.Itoa(v)
	}
	return fmt.Sprintf("version %d not found (available: %s)", e.Version, strings.Join(avail, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrVersionNotFound
}

// Rollback moves the active pointer of subdomain. A zero target selects the
// version just older than the active one.
func (m *Manager) Rollback(ctx context.Context, subdomain string, target int) (*Result, error) {
	set, err := m.List(ctx, subdomain)
	if err != nil {
		return nil, err
	}
	nums := set.Numbers()
	res := &Result{Subdomain: subdomain, From: set.Active}

	if target != 0 {
		if !contains(nums, target) {
			return nil, &NotFoundError{Version: target, Available: nums}
		}
	} else {
		idx := indexOf(nums, set.Active)
		if idx < 0 {
			idx = 0
		}
		if idx+1 >= len(nums) {
			return nil, ErrCannotRollbackFurther
		}
		target = nums[idx+1]
	}
	res.To = target

	if target == set.Active {
		res.NoOp = true
		return res, nil
	}

	for _, p := range m.providers {
		ok, err := p.SetActive(ctx, subdomain, target)
		if err != nil {
			logging.Named("versions").Debug("set active failed",
				zap.String("provider", p.Name()), zap.Int("version", target), zap.Error(err))
			m.warn("Could not update the active version via %s: %v", p.Name(), err)
			continue
		}
		if ok {
			res.Source = p.Name()
			return res, nil
		}
		m.warn("%s did not accept the rollback", p.Name())
	}
	return nil, ErrRollbackFailed
}

func contains(nums []int, n int) bool {
	return indexOf(nums, n) >= 0
}

func indexOf(nums []int, n int) int {
	for i, v := range nums {
		if v == n {
			return i
		}
	}
	return -1
}
