package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
web:
  apiBaseURL: "http://localhost:8000"
okta:
  orgURL: "https://dev-1.okta.com/"
  clientID: "abc"
  clientSecret: "shh"
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":3000", conf.Web.Addr)
	assert.Equal(t, "http://localhost:3000", conf.Web.PublicURL)
	assert.Equal(t, ":8000", conf.API.Addr)
	assert.Equal(t, "memory", conf.Session.Backend)
	assert.Equal(t, "supermarkets_session", conf.Session.CookieName)
	assert.Equal(t, "api://default", conf.Okta.Audience)
	assert.Equal(t, "https://dev-1.okta.com/oauth2/default", conf.Okta.Issuer())
	assert.NoError(t, ValidateWeb(conf))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "https://api.example.com")
	t.Setenv(EnvOktaOrgURL, "https://org.okta.com")
	t.Setenv(EnvOktaClientID, "from-env")

	path := writeConfig(t, `
web:
  apiBaseURL: "http://localhost:8000"
okta:
  clientID: "from-file"
`)

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", conf.Web.APIBaseURL)
	assert.Equal(t, "https://org.okta.com", conf.Okta.OrgURL)
	assert.Equal(t, "from-env", conf.Okta.ClientID)
}

func TestValidateWeb(t *testing.T) {
	base := Config{
		Web:     Web{APIBaseURL: "http://api"},
		Okta:    Okta{OrgURL: "https://org", ClientID: "id", ClientSecret: "secret"},
		Session: Session{Backend: "memory"},
	}
	require.NoError(t, ValidateWeb(base))

	missingAPI := base
	missingAPI.Web.APIBaseURL = ""
	assert.ErrorContains(t, ValidateWeb(missingAPI), "apiBaseURL")

	redis := base
	redis.Session.Backend = "redis"
	assert.ErrorContains(t, ValidateWeb(redis), "redisAddr")
	redis.Server.RedisAddr = "localhost:6379"
	assert.ErrorContains(t, ValidateWeb(redis), "session.secret")
	redis.Session.Secret = "00"
	assert.ErrorContains(t, ValidateWeb(redis), "32 bytes")
	redis.Session.Secret = "not hex"
	assert.ErrorContains(t, ValidateWeb(redis), "hex encoded")
	redis.Session.Secret = strings.Repeat("ab", 32)
	assert.NoError(t, ValidateWeb(redis))

	unknown := base
	unknown.Session.Backend = "etcd"
	assert.ErrorContains(t, ValidateWeb(unknown), "unknown session backend")
}

func TestValidateAPI(t *testing.T) {
	conf := Config{Okta: Okta{OrgURL: "https://org", ClientID: "id"}}
	assert.ErrorContains(t, ValidateAPI(conf), "postgresDsn")
	conf.Server.PostgresDsn = "host=db"
	assert.NoError(t, ValidateAPI(conf))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "config load failed")
}
