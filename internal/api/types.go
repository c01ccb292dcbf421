package api

import "time"

// Health is the service health report.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Subdomain is a subdomain owned by the caller.
type Subdomain struct {
	Subdomain     string    `json:"subdomain"`
	ActiveVersion int       `json:"activeVersion,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

type availability struct {
	Available bool `json:"available"`
}

type ownedSubdomains struct {
	Subdomains []Subdomain `json:"subdomains"`
}

// Version is one version of a subdomain as the service reports it.
type Version struct {
	Version    int        `json:"version"`
	FolderName string     `json:"folderName,omitempty"`
	FileCount  int        `json:"fileCount"`
	TotalBytes int64      `json:"totalBytes"`
	Message    string     `json:"message,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// Versions is the version listing of a subdomain.
type Versions struct {
	Subdomain     string    `json:"subdomain"`
	ActiveVersion int       `json:"activeVersion"`
	Versions      []Version `json:"versions"`
}

type rollbackRequest struct {
	Version int `json:"version"`
}

// RollbackResult reports the outcome of a rollback call.
type RollbackResult struct {
	Success       bool `json:"success"`
	ActiveVersion int  `json:"activeVersion"`
}

// Upload is one file upload.
type Upload struct {
	Subdomain   string
	Version     int
	Path        string
	ContentType string
	Data        []byte
}

// Completion finalizes a version after its files are uploaded.
type Completion struct {
	Subdomain  string     `json:"subdomain"`
	Version    int        `json:"version"`
	FileCount  int        `json:"fileCount"`
	TotalBytes int64      `json:"totalBytes"`
	FolderName string     `json:"folderName"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	Message    string     `json:"message"`
}

// CompletionResult is returned by the finalize call.
type CompletionResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
}

// Deployment is a deployed version of a site.
type Deployment struct {
	Subdomain  string     `json:"subdomain"`
	Version    int        `json:"version"`
	FolderName string     `json:"folderName,omitempty"`
	FileCount  int        `json:"fileCount"`
	TotalBytes int64      `json:"totalBytes"`
	Message    string     `json:"message,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	IsActive   bool       `json:"isActive"`
}

type deployments struct {
	Deployments []Deployment `json:"deployments"`
}

// SiteDetail describes one site and its versions.
type SiteDetail struct {
	Subdomain     string       `json:"subdomain"`
	URL           string       `json:"url,omitempty"`
	ActiveVersion int          `json:"activeVersion"`
	CreatedAt     time.Time    `json:"createdAt,omitempty"`
	Deployments   []Deployment `json:"deployments"`
}

// QuotaUsage is what the caller currently consumes.
type QuotaUsage struct {
	SiteCount   int   `json:"siteCount"`
	StorageUsed int64 `json:"storageUsed"`
}

// QuotaLimits are the caller's tier limits.
type QuotaLimits struct {
	MaxSites           int   `json:"maxSites"`
	MaxStorageBytes    int64 `json:"maxStorageBytes,omitempty"`
	MaxStorageMB       int64 `json:"maxStorageMB,omitempty"`
	MaxVersionsPerSite int   `json:"maxVersionsPerSite,omitempty"`
	RetentionDays      int   `json:"retentionDays,omitempty"`
}

// StorageLimit is the storage limit in bytes, zero when unlimited.
func (l QuotaLimits) StorageLimit() int64 {
	if l.MaxStorageBytes > 0 {
		return l.MaxStorageBytes
	}
	return l.MaxStorageMB * 1024 * 1024
}

// Quota is a quota snapshot. Policy flags the service omits default to
// permissive.
type Quota struct {
	Tier             string      `json:"tier,omitempty"`
	Usage            QuotaUsage  `json:"usage"`
	Limits           QuotaLimits `json:"limits"`
	CanDeploy        *bool       `json:"canDeploy,omitempty"`
	CanCreateNewSite *bool       `json:"canCreateNewSite,omitempty"`
	Blocked          bool        `json:"blocked"`
	Message          string      `json:"message,omitempty"`
}

// DeployAllowed reports the canDeploy flag.
func (q *Quota) DeployAllowed() bool {
	return q.CanDeploy == nil || *q.CanDeploy
}

// NewSiteAllowed reports the canCreateNewSite flag.
func (q *Quota) NewSiteAllowed() bool {
	return q.CanCreateNewSite == nil || *q.CanCreateNewSite
}

type anonymousQuotaRequest struct {
	ClientToken    string `json:"clientToken"`
	EstimatedBytes int64  `json:"estimatedBytes"`
}

// User is the authenticated account.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Tier             string    `json:"tier"`
	EmailVerified    bool      `json:"emailVerified"`
	TwoFactorEnabled bool      `json:"twoFactorEnabled"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
}

// KeyPair is a freshly issued API key and signing secret.
type KeyPair struct {
	APIKey    string `json:"apiKey"`
	APISecret string `json:"apiSecret,omitempty"`
}

type passwordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Ack is the generic acknowledgement body.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
