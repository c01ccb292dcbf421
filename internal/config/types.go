package config

import "time"

const (
	// DefaultDomain is the hosting domain sites are published under.
	DefaultDomain = "launchpd.cloud"
	// PublicBetaKey identifies anonymous clients to the API.
	PublicBetaKey = "public-beta-key"
	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 60 * time.Second
	// DefaultUploadRPS paces per-file uploads.
	DefaultUploadRPS = 20.0
)

// Config is the resolved runtime configuration
type Config struct {
	Domain string
	// APIURL is the API base URL without trailing slash.
	APIURL string
	// APIKey and APISecret are environment overrides; stored credentials are
	// consulted only when they are empty.
	APIKey    string
	APISecret string
	// Home holds per-user state: credentials, client token, history.
	Home      string
	Debug     bool
	Timeout   time.Duration
	UploadRPS float64
	Legacy    LegacyConfig
}

// LegacyConfig points at the object-storage bucket that held version
// metadata before the API owned it.
type LegacyConfig struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether a legacy bucket was configured.
func (l LegacyConfig) Enabled() bool {
	return l.Bucket != ""
}

// SiteURL is the public URL of a subdomain.
func (c *Config) SiteURL(subdomain string) string {
	return "https://" + subdomain + "." + c.Domain
}
