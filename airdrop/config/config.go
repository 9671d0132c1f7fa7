// Package config loads run settings from the environment, a dotenv file and a TOML file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/screwyprof/airdrop/airdrop"
)

// Sentinel errors for configuration
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrConfigFile    = errors.New("failed to read configuration file")
)

// Keys naming the optional configuration files
const (
	EnvFileKey  = "AIRDROP_ENV_FILE"
	TOMLFileKey = "AIRDROP_CONFIG_FILE"

	DefaultEnvFile  = "data/.env"
	DefaultTOMLFile = "data/config.toml"
)

// Config holds all configuration loaded from environment variables
type Config struct {
	BatchSize   int `env:"BATCH_SIZE" envDefault:"100"`
	Parallelism int `env:"PARALLELISM" envDefault:"10"`

	SecretsFile      string `env:"SECRETS_FILE" envDefault:"data/secrets.txt"`
	ClaimSecretsFile string `env:"CLAIM_SECRETS_FILE" envDefault:"data/claim_secrets.txt"`
	ProxiesFile      string `env:"PROXIES_FILE" envDefault:"data/proxies.txt"`
	EligibleFile     string `env:"ELIGIBLE_FILE" envDefault:"data/eligible.txt"`
	FailedFile       string `env:"FAILED_FILE" envDefault:"data/failed.txt"`

	ProxyMode    string `env:"PROXY_MODE" envDefault:"round-robin"`
	SkipRecorded bool   `env:"SKIP_RECORDED" envDefault:"true"`

	HttpClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"30s"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND" envDefault:"0"`
	RequestBurst      int           `env:"REQUEST_BURST" envDefault:"1"`
	WebURL            string        `env:"WEB_URL" envDefault:"https://mefoundation.com"`
	APIURL            string        `env:"API_URL" envDefault:"https://api-mainnet.magiceden.io"`

	LinkMaxAttempts   int           `env:"LINK_MAX_ATTEMPTS" envDefault:"5"`
	LinkRetryDelay    time.Duration `env:"LINK_RETRY_DELAY" envDefault:"5s"`
	LinkRetryMaxDelay time.Duration `env:"LINK_RETRY_MAX_DELAY" envDefault:"1m"`

	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogHumanFriendly bool   `env:"LOG_HUMAN_FRIENDLY" envDefault:"false"`
}

// New loads all configuration; it panics when the configuration is unusable
func New() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load merges, from lowest to highest precedence, the TOML file, the dotenv
// file and the process environment, then validates the result. Either file
// may be absent unless its path was set explicitly.
func Load() (Config, error) {
	environ := env.ToMap(os.Environ())

	tomlVars, err := readOptional(environ, TOMLFileKey, DefaultTOMLFile, readTOML)
	if err != nil {
		return Config{}, err
	}
	dotenvVars, err := readOptional(environ, EnvFileKey, DefaultEnvFile, godotenv.Read)
	if err != nil {
		return Config{}, err
	}

	return FromEnvironment(merge(tomlVars, dotenvVars, environ))
}

// FromEnvironment parses and validates configuration from a variable map
func FromEnvironment(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the run cannot work with
func (c Config) Validate() error {
	var errs []error
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("PARALLELISM must be at least 1, got %d", c.Parallelism))
	}
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("BATCH_SIZE must be at least 1, got %d", c.BatchSize))
	}
	switch airdrop.ProxyMode(c.ProxyMode) {
	case airdrop.RoundRobin, airdrop.Rotate:
	default:
		errs = append(errs, fmt.Errorf("PROXY_MODE must be %q or %q, got %q", airdrop.RoundRobin, airdrop.Rotate, c.ProxyMode))
	}
	if c.LinkMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("LINK_MAX_ATTEMPTS must be at least 1, got %d", c.LinkMaxAttempts))
	}
	if c.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("REQUESTS_PER_SECOND must not be negative, got %g", c.RequestsPerSecond))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func readOptional(environ map[string]string, key, fallback string, read func(...string) (map[string]string, error)) (map[string]string, error) {
	path, explicit := environ[key]
	if !explicit {
		path = fallback
	}

	vars, err := read(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigFile, path, err)
	}
	return vars, nil
}

// readTOML flattens the top-level scalar keys of TOML files into variables,
// so BATCH_SIZE = 50 in the file reads like BATCH_SIZE=50 in the environment.
func readTOML(paths ...string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, path := range paths {
		var doc map[string]any
		if _, err := toml.DecodeFile(path, &doc); err != nil {
			return nil, err
		}
		for key, value := range doc {
			switch v := value.(type) {
			case string:
				vars[key] = v
			case int64, float64, bool:
				vars[key] = fmt.Sprint(v)
			}
		}
	}
	return vars, nil
}

// merge combines variable maps; later maps win
func merge(layers ...map[string]string) map[string]string {
	merged := make(map[string]string)
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}
