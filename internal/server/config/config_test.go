package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	assert.Equal(t, EnvDev, c.Environment)
	assert.Equal(t, ":8000", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, 24*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, 10*time.Minute, c.OTPValidityDuration)
	assert.Equal(t, 5, c.RateLimitRequests)
	assert.Equal(t, time.Minute, c.RateLimitWindow)
	assert.Equal(t, HashBcrypt, c.PasswordHashAlgorithm)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Equal(t, []string{"*"}, c.CORSAllowedOrigins)
	assert.False(t, c.SMTPEnabled())
	assert.NoError(t, c.Validate())
}

func TestParseFlags(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name    string
		args    []string
		want    func(c *Config)
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9000", "-g", ":6000", "-d", "postgres://u@h/db", "-s", "secret",
				"-t", "15", "-o", "3", "-l", "20", "-w", "30s", "-v", "debug"},
			want: func(c *Config) {
				c.EndpointAddrHTTP = "127.0.0.1:9000"
				c.EndpointAddrGRPC = ":6000"
				c.DatabaseDSN = "postgres://u@h/db"
				c.SecretKey = "secret"
				c.AccessTokenValidityDuration = 15 * time.Minute
				c.OTPValidityDuration = 3 * time.Minute
				c.RateLimitRequests = 20
				c.RateLimitWindow = 30 * time.Second
				c.LogLevel = "debug"
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"-c", "conf.json", "-env-file", "x.env", "-a", ":1"},
			want: func(c *Config) { c.EndpointAddrHTTP = ":1" },
		},
		{
			name:    "bad value",
			args:    []string{"-l", "many"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base()
			err := parseFlags(got, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := base()
			tt.want(want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}

func TestParseJson(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"endpoint_addr_http": ":9100",
		"otp_validity_duration": "15m",
		"rate_limit_requests": 9,
		"trust_proxy_headers": true,
		"cors_allowed_origins": ["https://a.example"],
		"notify_queue_size": 128,
		"health_check_interval": "30s"
	}`), 0o600))

	c := &Config{}
	c.LoadDefaults()
	require.NoError(t, parseJson(c, []string{"-c", path}))

	assert.Equal(t, ":9100", c.EndpointAddrHTTP)
	assert.Equal(t, 15*time.Minute, c.OTPValidityDuration)
	assert.Equal(t, 9, c.RateLimitRequests)
	assert.True(t, c.TrustProxyHeaders)
	assert.Equal(t, []string{"https://a.example"}, c.CORSAllowedOrigins)
	assert.Equal(t, 128, c.NotifyQueueSize)
	assert.Equal(t, 30*time.Second, c.HealthCheckInterval)
	// untouched
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, time.Minute, c.RateLimitWindow)
}

func TestParseJson_Errors(t *testing.T) {
	c := &Config{}
	assert.NoError(t, parseJson(c, nil))
	assert.Error(t, parseJson(c, []string{"-config", filepath.Join(t.TempDir(), "missing.json")}))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	assert.Error(t, parseJson(c, []string{"-c", bad}))
}

func TestParseEnv(t *testing.T) {
	t.Setenv("AUTHKEEPER_HTTP_ADDR", ":7000")
	t.Setenv("AUTHKEEPER_OTP_TTL", "2m")
	t.Setenv("AUTHKEEPER_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("AUTHKEEPER_TRUST_PROXY_HEADERS", "true")

	c := &Config{}
	c.LoadDefaults()
	require.NoError(t, parseEnv(c, nil))

	assert.Equal(t, ":7000", c.EndpointAddrHTTP)
	assert.Equal(t, 2*time.Minute, c.OTPValidityDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSAllowedOrigins)
	assert.True(t, c.TrustProxyHeaders)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("AUTHKEEPER_SMTP_USERNAME=mailer\nAUTHKEEPER_SMTP_PASSWORD=pw\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("AUTHKEEPER_SMTP_USERNAME")
		os.Unsetenv("AUTHKEEPER_SMTP_PASSWORD")
	})

	c := &Config{}
	c.LoadDefaults()
	require.NoError(t, parseEnv(c, []string{"-env-file", path}))

	assert.Equal(t, "mailer", c.SMTPUsername)
	assert.True(t, c.SMTPEnabled())
}

func TestParseEnv_MissingExplicitFile(t *testing.T) {
	c := &Config{}
	assert.Error(t, parseEnv(c, []string{"-env-file", filepath.Join(t.TempDir(), "nope.env")}))
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"endpoint_addr_http": ":1111", "endpoint_addr_grpc": ":2222", "log_level": "warn"}`), 0o600))
	t.Setenv("AUTHKEEPER_HTTP_ADDR", ":3333")
	t.Setenv("AUTHKEEPER_GRPC_ADDR", ":4444")

	c, err := Load([]string{"-c", path, "-a", ":5555"})
	require.NoError(t, err)

	assert.Equal(t, ":5555", c.EndpointAddrHTTP)
	assert.Equal(t, ":4444", c.EndpointAddrGRPC)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty secret", func(c *Config) { c.SecretKey = "" }, false},
		{"short secret in prod", func(c *Config) { c.Environment = "prod" }, false},
		{"long secret in prod", func(c *Config) {
			c.Environment = "prod"
			c.SecretKey = "0123456789abcdef0123"
		}, true},
		{"bad dsn", func(c *Config) { c.DatabaseDSN = "postgres://%zz" }, false},
		{"zero otp ttl", func(c *Config) { c.OTPValidityDuration = 0 }, false},
		{"zero rate window", func(c *Config) { c.RateLimitWindow = 0 }, false},
		{"unknown hash", func(c *Config) { c.PasswordHashAlgorithm = "md5" }, false},
		{"argon2id", func(c *Config) { c.PasswordHashAlgorithm = HashArgon2id }, true},
		{"bcrypt cost too high", func(c *Config) { c.BcryptCost = 40 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.LoadDefaults()
			tt.mutate(c)
			if tt.ok {
				assert.NoError(t, c.Validate())
			} else {
				assert.Error(t, c.Validate())
			}
		})
	}
}
