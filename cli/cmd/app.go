package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"

	"launchpd/internal/api"
	"launchpd/internal/config"
	"launchpd/internal/credentials"
	"launchpd/internal/failfast"
	"launchpd/internal/history"
	"launchpd/internal/logging"
	"launchpd/internal/metadata"
	"launchpd/internal/versions"
	"launchpd/shared"
)

// app is the wiring shared by every command.
type app struct {
	cfg      *config.Config
	store    *credentials.Store
	identity credentials.Identity
	client   *api.Client
	log      *shared.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, failfast.New("Could not load configuration", err)
	}
	if verbose {
		cfg.Debug = true
	}
	if err := logging.Init(cfg.Debug); err != nil {
		return nil, failfast.New("Could not initialise logging", err)
	}

	log := shared.DefaultLogger()
	if cfg.Debug {
		log.SetLevel(shared.LevelDebug)
	}

	store := credentials.NewStore(cfg.Home)
	id, err := store.Resolve(cfg.APIKey, cfg.APISecret, config.PublicBetaKey)
	if err != nil {
		return nil, failfast.New("Could not read stored credentials", err,
			"Run 'launchpd logout' and log in again")
	}

	client := api.New(api.Config{
		BaseURL:   cfg.APIURL,
		APIKey:    id.APIKey,
		APISecret: id.APISecret,
		Timeout:   cfg.Timeout,
	})

	return &app{cfg: cfg, store: store, identity: id, client: client, log: log}, nil
}

// versionManager builds the provider chain: service, legacy bucket when
// configured, local history.
func (a *app) versionManager(ctx context.Context) *versions.Manager {
	providers := []versions.Provider{&versions.APIProvider{Client: a.client}}
	if a.cfg.Legacy.Enabled() {
		legacy, err := metadata.OpenS3Store(ctx, a.cfg.Legacy)
		if err != nil {
			a.log.Warn("Legacy metadata unavailable: %v", err)
		} else {
			providers = append(providers, &versions.LegacyProvider{Store: legacy})
		}
	}
	providers = append(providers, &versions.LocalProvider{
		History: history.NewStore(a.cfg.Home),
		Active:  metadata.NewLocalStore(a.cfg.Home),
	})
	return versions.NewManager(a.log, providers...)
}

func (a *app) requireAuth() error {
	if a.identity.Authenticated {
		return nil
	}
	return failfast.New("You need to be logged in for this", nil,
		"Run 'launchpd login'",
		"Run 'launchpd register' to create an account")
}

// apiFailure turns a service error into a failure with kind-specific advice.
func apiFailure(action string, err error) error {
	if kind, ok := api.KindOf(err); ok {
		switch kind {
		case api.KindMaintenance:
			return failfast.New("The service is under maintenance", err, "Try again in a few minutes")
		case api.KindNetwork:
			return failfast.New("Could not connect to the service", err, "Check your internet connection")
		case api.KindAuth, api.KindTwoFactor:
			return failfast.New("Authentication failed", err, "Run 'launchpd login' again")
		case api.KindRateLimit:
			return failfast.New("Too many requests", err, "Wait a minute and try again")
		}
	}
	return failfast.New(fmt.Sprintf("Could not %s", action), err)
}

// commandContext is cancelled on Ctrl-C.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func openBrowser(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	return c.Start()
}
