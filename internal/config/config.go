package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "LAUNCHPD"

// Load reads configuration from a local .env file, the process environment
// and the optional config.yaml in the state directory, in increasing order
// of precedence for the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("domain", DefaultDomain)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("upload_rps", DefaultUploadRPS)
	v.SetDefault("legacy.region", "auto")
	if err := v.BindEnv("debug", EnvPrefix+"_DEBUG", "DEBUG"); err != nil {
		return nil, err
	}

	home := v.GetString("home")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locate home directory: %w", err)
		}
		home = filepath.Join(userHome, ".launchpd")
	}

	cfgFile := filepath.Join(home, "config.yaml")
	if _, err := os.Stat(cfgFile); err == nil {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", cfgFile, err)
		}
	}

	timeout, err := parseTimeout(v.GetString("timeout"))
	if err != nil {
		return nil, err
	}

	domain := strings.TrimSpace(v.GetString("domain"))
	apiURL := strings.TrimRight(v.GetString("api_url"), "/")
	if apiURL == "" {
		apiURL = "https://api." + domain
	}

	cfg := &Config{
		Domain:    domain,
		APIURL:    apiURL,
		APIKey:    v.GetString("api_key"),
		APISecret: v.GetString("api_secret"),
		Home:      home,
		Debug:     v.GetBool("debug"),
		Timeout:   timeout,
		UploadRPS: v.GetFloat64("upload_rps"),
		Legacy: LegacyConfig{
			Bucket:    v.GetString("legacy.bucket"),
			Endpoint:  v.GetString("legacy.endpoint"),
			Region:    v.GetString("legacy.region"),
			AccessKey: v.GetString("legacy.access_key"),
			SecretKey: v.GetString("legacy.secret_key"),
		},
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg, nil
}

// parseTimeout accepts a Go duration ("90s", "2m") or a bare number of
// seconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		secs, serr := strconv.ParseFloat(raw, 64)
		if serr != nil {
			return 0, fmt.Errorf("invalid timeout %q: use seconds or a duration such as 90s", raw)
		}
		d = time.Duration(secs * float64(time.Second))
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", raw)
	}
	return d, nil
}
