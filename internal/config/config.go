package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/go-yaml/yaml"
)

const sessionKeySize = 32

const (
	EnvAPIBaseURL       = "SUPERMARKETS_API"
	EnvOktaOrgURL       = "OKTA_ORG_URL"
	EnvOktaClientID     = "OKTA_CLIENT_ID"
	EnvOktaClientSecret = "OKTA_CLIENT_SECRET"
)

type Config struct {
	Web     Web     `yaml:"web"`
	API     API     `yaml:"api"`
	Okta    Okta    `yaml:"okta"`
	Session Session `yaml:"session"`
	Server  Server  `yaml:"server"`
}

type Web struct {
	Addr       string `yaml:"addr"`
	PublicURL  string `yaml:"publicURL"`
	APIBaseURL string `yaml:"apiBaseURL"`
}

type API struct {
	Addr        string   `yaml:"addr"`
	CorsOrigins []string `yaml:"corsOrigins"`
}

type Okta struct {
	OrgURL       string `yaml:"orgURL"`
	ClientID     string `yaml:"clientID"`
	ClientSecret string `yaml:"clientSecret"`
	Audience     string `yaml:"audience"`
}

type Session struct {
	Backend    string `yaml:"backend"` // memory, redis, memcached
	Secret     string `yaml:"secret"`  // hex encoded, exactly 32 bytes
	CookieName string `yaml:"cookieName"`
	TTLSeconds int    `yaml:"ttlSeconds"`
	Secure     bool   `yaml:"secure"`
}

type Server struct {
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	LogLevel      string `yaml:"logLevel"`
}

// Issuer is the Okta default authorization server.
func (o Okta) Issuer() string {
	return strings.TrimSuffix(o.OrgURL, "/") + "/oauth2/default"
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	applyEnvOverrides(&config)
	applyDefaults(&config)

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBaseURL)); v != "" {
		config.Web.APIBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOktaOrgURL)); v != "" {
		config.Okta.OrgURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOktaClientID)); v != "" {
		config.Okta.ClientID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOktaClientSecret)); v != "" {
		config.Okta.ClientSecret = v
	}
}

func applyDefaults(config *Config) {
	if config.Web.Addr == "" {
		config.Web.Addr = ":3000"
	}
	if config.Web.PublicURL == "" {
		config.Web.PublicURL = "http://localhost" + config.Web.Addr
	}
	if config.API.Addr == "" {
		config.API.Addr = ":8000"
	}
	if config.Okta.Audience == "" {
		config.Okta.Audience = "api://default"
	}
	if config.Session.Backend == "" {
		config.Session.Backend = "memory"
	}
	if config.Session.CookieName == "" {
		config.Session.CookieName = "supermarkets_session"
	}
	if config.Session.TTLSeconds == 0 {
		config.Session.TTLSeconds = 24 * 60 * 60
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
}

func ValidateWeb(config Config) error {
	if strings.TrimSpace(config.Web.APIBaseURL) == "" {
		return fmt.Errorf("web config missing apiBaseURL (or %s)", EnvAPIBaseURL)
	}
	if err := validateOkta(config.Okta); err != nil {
		return err
	}
	if strings.TrimSpace(config.Okta.ClientSecret) == "" {
		return fmt.Errorf("okta config missing clientSecret (or %s)", EnvOktaClientSecret)
	}
	switch config.Session.Backend {
	case "memory":
	case "redis":
		if strings.TrimSpace(config.Server.RedisAddr) == "" {
			return fmt.Errorf("session backend redis requires server.redisAddr")
		}
	case "memcached":
		if strings.TrimSpace(config.Server.MemcachedAddr) == "" {
			return fmt.Errorf("session backend memcached requires server.memcachedAddr")
		}
	default:
		return fmt.Errorf("unknown session backend %q", config.Session.Backend)
	}
	if config.Session.Backend != "memory" {
		if strings.TrimSpace(config.Session.Secret) == "" {
			return fmt.Errorf("session backend %s requires session.secret", config.Session.Backend)
		}
		if err := validateSecret(config.Session.Secret); err != nil {
			return err
		}
	}
	return nil
}

func ValidateAPI(config Config) error {
	if strings.TrimSpace(config.Server.PostgresDsn) == "" {
		return fmt.Errorf("api config missing server.postgresDsn")
	}
	if err := validateOkta(config.Okta); err != nil {
		return err
	}
	return nil
}

// validateSecret mirrors the session sealer's key requirement.
func validateSecret(secret string) error {
	raw, err := hex.DecodeString(secret)
	if err != nil {
		return fmt.Errorf("session.secret must be hex encoded: %v", err)
	}
	if len(raw) != sessionKeySize {
		return fmt.Errorf("session.secret must be %d bytes (%d hex characters), got %d bytes", sessionKeySize, sessionKeySize*2, len(raw))
	}
	return nil
}

func validateOkta(okta Okta) error {
	if strings.TrimSpace(okta.OrgURL) == "" {
		return fmt.Errorf("okta config missing orgURL (or %s)", EnvOktaOrgURL)
	}
	if strings.TrimSpace(okta.ClientID) == "" {
		return fmt.Errorf("okta config missing clientID (or %s)", EnvOktaClientID)
	}
	return nil
}
