package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"present-delivery-service/internal/platform/httpx"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Call policy keys in the policy file.
const (
	PolicyGeocode    = "geocode"
	PolicyTour       = "tour"
	PolicyRouting    = "routing"
	PolicyExtraction = "extraction"
)

// Defaults used when the policy file leaves a capability (or field) out.
// Geocoding, sequencing and routing are single-attempt. The extraction
// attempt budget is handed to the AWS SDK's adaptive retryer, which also owns
// the backoff; its timeout and rate are applied by the extractor.
var DefaultPolicies = map[string]httpx.CallPolicy{
	PolicyGeocode:    {Timeout: 10 * time.Second, MaxAttempts: 1, RatePerSecond: 5},
	PolicyTour:       {Timeout: 60 * time.Second, MaxAttempts: 1},
	PolicyRouting:    {Timeout: 30 * time.Second, MaxAttempts: 1},
	PolicyExtraction: {Timeout: 120 * time.Second, MaxAttempts: 10},
}

// Config holds the settings shared by the process hosts.
type Config struct {
	Port        string
	LogLevel    string
	DatabaseURL string
	RedisURL    string
	GeocodeTTL  time.Duration

	GSIBaseURL    string
	TourBaseURL   string
	RouterBaseURL string

	AWSRegion      string
	S3Region       string
	BedrockRegion  string
	BedrockModelID string

	// Values, or SSM parameter names when UseSSM is set.
	AppAPIKey      string
	HereDevAPIKey  string
	HerePlatAPIKey string
	UseSSM         bool

	Policies map[string]httpx.CallPolicy
}

// Load reads .env (if present) and the environment.
func Load(logger *slog.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found (using environment variables)")
	}

	cfg := Config{
		Port:           Get("PORT", "8080"),
		LogLevel:       Get("LOG_LEVEL", "info"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		GSIBaseURL:     os.Getenv("GSI_BASE_URL"),
		TourBaseURL:    os.Getenv("HERE_TOUR_BASE_URL"),
		RouterBaseURL:  os.Getenv("HERE_ROUTER_BASE_URL"),
		AWSRegion:      os.Getenv("AWS_REGION"),
		S3Region:       Get("S3_REGION", os.Getenv("AWS_REGION")),
		BedrockRegion:  Get("BEDROCK_MODEL_REGION", os.Getenv("AWS_REGION")),
		BedrockModelID: os.Getenv("BEDROCK_MODEL_ID"),
		AppAPIKey:      os.Getenv("APP_API_KEY"),
		HereDevAPIKey:  os.Getenv("HERE_DEVELOPER_API_KEY"),
		HerePlatAPIKey: os.Getenv("HERE_PLATFORM_API_KEY"),
		UseSSM:         strings.EqualFold(os.Getenv("SECRETS_FROM_SSM"), "true"),
	}

	ttl, err := time.ParseDuration(Get("GEOCODE_CACHE_TTL", "720h"))
	if err != nil {
		return Config{}, fmt.Errorf("config: parse GEOCODE_CACHE_TTL: %w", err)
	}
	cfg.GeocodeTTL = ttl

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, errors.New("config: DATABASE_URL is required")
	}

	policies, err := LoadPolicies(os.Getenv("CALL_POLICY_FILE"))
	if err != nil {
		return Config{}, err
	}
	cfg.Policies = policies

	return cfg, nil
}

// Policy returns the call policy for a capability.
func (c Config) Policy(name string) httpx.CallPolicy {
	if p, ok := c.Policies[name]; ok {
		return p
	}
	return DefaultPolicies[name]
}

// Get returns the environment value for key or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type policyFile struct {
	Policies map[string]httpx.CallPolicy `yaml:"policies"`
}

// LoadPolicies reads per-capability call policies from a YAML file:
//
//	policies:
//	  routing:
//	    timeout: 45s
//	    max_attempts: 2
//
// An empty path yields the defaults. Missing fields fall back to the defaults.
func LoadPolicies(path string) (map[string]httpx.CallPolicy, error) {
	out := make(map[string]httpx.CallPolicy, len(DefaultPolicies))
	for k, v := range DefaultPolicies {
		out[k] = v
	}

	if strings.TrimSpace(path) == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read call policy file %q: %w", path, err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("config: parse call policy file %q: %w", path, err)
	}

	for name, p := range pf.Policies {
		def, ok := DefaultPolicies[name]
		if !ok {
			return nil, fmt.Errorf("config: unknown call policy %q", name)
		}
		out[name] = p.Merge(def)
	}

	return out, nil
}
