// Package backoffice parses console command flags and launches the console
// HTTP server.
package backoffice

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/backoffice/internal/platform/cmd"
	"github.com/louisbranch/backoffice/internal/platform/config"
	"github.com/louisbranch/backoffice/internal/services/backoffice"
	"github.com/louisbranch/backoffice/internal/services/backoffice/listing"
)

const (
	defaultHTTPAddr       = "localhost:8095"
	defaultAPIBaseURL     = "http://localhost:8080/api"
	defaultLanguage       = "en"
	defaultDBPath         = "data/backoffice.db"
	defaultRequestTimeout = 15 * time.Second
)

// Config holds the console command configuration.
type Config struct {
	HTTPAddr   string `env:"BACKOFFICE_HTTP_ADDR" envDefault:"localhost:8095"`
	APIBaseURL string `env:"BACKOFFICE_API_BASE_URL" envDefault:"http://localhost:8080/api"`
	// CountriesURL and CitiesURL override the cascade helper endpoints.
	CountriesURL        string        `env:"BACKOFFICE_COUNTRIES_URL"`
	CitiesURL           string        `env:"BACKOFFICE_CITIES_URL"`
	RequestTimeout      time.Duration `env:"BACKOFFICE_REQUEST_TIMEOUT" envDefault:"15s"`
	SessionKey          string        `env:"BACKOFFICE_SESSION_KEY"`
	DefaultLanguage     string        `env:"BACKOFFICE_DEFAULT_LANG" envDefault:"en"`
	PerPage             int           `env:"BACKOFFICE_PER_PAGE" envDefault:"25"`
	DBPath              string        `env:"BACKOFFICE_DB_PATH" envDefault:"data/backoffice.db"`
	StringsDir          string        `env:"BACKOFFICE_STRINGS_DIR"`
	LoginURL            string        `env:"BACKOFFICE_LOGIN_URL"`
	TrustForwardedProto bool          `env:"BACKOFFICE_TRUST_FORWARDED_PROTO"`
}

// ParseConfig parses environment and flags into Config. Blank values fall
// back to the defaults.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return parseFlags(cfg, fs, args)
}

// ParseConfigWithEnv is ParseConfig over an explicit environment map.
func ParseConfigWithEnv(fs *flag.FlagSet, args []string, environment map[string]string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfigWithLookup(&cfg, environment); err != nil {
		return Config{}, err
	}
	return parseFlags(cfg, fs, args)
}

func parseFlags(cfg Config, fs *flag.FlagSet, args []string) (Config, error) {
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "Upstream API base URL")
	fs.StringVar(&cfg.CountriesURL, "countries-url", cfg.CountriesURL, "Countries helper endpoint")
	fs.StringVar(&cfg.CitiesURL, "cities-url", cfg.CitiesURL, "Cities helper endpoint")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "Upstream request timeout")
	fs.StringVar(&cfg.DefaultLanguage, "default-lang", cfg.DefaultLanguage, "Default console language")
	fs.IntVar(&cfg.PerPage, "per-page", cfg.PerPage, "List page size")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite path for lookup snapshots")
	fs.StringVar(&cfg.StringsDir, "strings-dir", cfg.StringsDir, "Directory overriding the embedded string tables")
	fs.StringVar(&cfg.LoginURL, "login-url", cfg.LoginURL, "Where operators without a session are sent")
	fs.BoolVar(&cfg.TrustForwardedProto, "trust-forwarded-proto", cfg.TrustForwardedProto, "Honour X-Forwarded-Proto")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	cfg.HTTPAddr = config.StringOr(cfg.HTTPAddr, defaultHTTPAddr)
	cfg.APIBaseURL = config.StringOr(cfg.APIBaseURL, defaultAPIBaseURL)
	cfg.DefaultLanguage = config.StringOr(cfg.DefaultLanguage, defaultLanguage)
	cfg.DBPath = config.StringOr(cfg.DBPath, defaultDBPath)
	cfg.PerPage = config.IntOr(cfg.PerPage, listing.DefaultPerPage)
	cfg.RequestTimeout = config.DurationOr(cfg.RequestTimeout, defaultRequestTimeout)
	return cfg, nil
}

// Run starts the console server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBackoffice, func(ctx context.Context) error {
		server, err := backoffice.NewServer(ctx, backoffice.Config{
			HTTPAddr:            cfg.HTTPAddr,
			APIBaseURL:          cfg.APIBaseURL,
			CountriesPath:       cfg.CountriesURL,
			CitiesPath:          cfg.CitiesURL,
			RequestTimeout:      cfg.RequestTimeout,
			SessionKey:          cfg.SessionKey,
			DefaultLanguage:     cfg.DefaultLanguage,
			PerPage:             cfg.PerPage,
			DBPath:              cfg.DBPath,
			StringsDir:          cfg.StringsDir,
			LoginURL:            cfg.LoginURL,
			TrustForwardedProto: cfg.TrustForwardedProto,
		})
		if err != nil {
			return fmt.Errorf("init backoffice server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve backoffice: %w", err)
		}
		return nil
	})
}
