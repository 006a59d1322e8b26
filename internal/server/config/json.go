package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// both "10m"-style strings and integer nanoseconds. Zero values mean "not
// set" and leave the current Config value in place.
type JsonConfig struct {
	Environment                 string         `json:"environment"`
	LogLevel                    string         `json:"log_level"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	PasswordHashAlgorithm       string         `json:"password_hash_algorithm"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	OTPValidityDuration         timex.Duration `json:"otp_validity_duration"`
	OTPPurgeInterval            timex.Duration `json:"otp_purge_interval"`
	RateLimitRequests           int            `json:"rate_limit_requests"`
	RateLimitWindow             timex.Duration `json:"rate_limit_window"`
	TrustProxyHeaders           *bool          `json:"trust_proxy_headers"`
	StoreTimeout                timex.Duration `json:"store_timeout"`
	NotifyTimeout               timex.Duration `json:"notify_timeout"`
	NotifyQueueSize             int            `json:"notify_queue_size"`
	HealthCheckInterval         timex.Duration `json:"health_check_interval"`
	CORSAllowedOrigins          []string       `json:"cors_allowed_origins"`
	SMTPHost                    string         `json:"smtp_host"`
	SMTPPort                    int            `json:"smtp_port"`
	SMTPUsername                string         `json:"smtp_username"`
	SMTPPassword                string         `json:"smtp_password"`
	SMTPFromEmail               string         `json:"smtp_from_email"`
	SMTPFromName                string         `json:"smtp_from_name"`
}

// parseJson overlays the JSON file named by -c/-config onto config.
// No flag means nothing to load.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setString(&config.PasswordHashAlgorithm, c.PasswordHashAlgorithm)
	setInt(&config.BcryptCost, c.BcryptCost)
	setDuration(&config.OTPValidityDuration, c.OTPValidityDuration)
	setDuration(&config.OTPPurgeInterval, c.OTPPurgeInterval)
	setInt(&config.RateLimitRequests, c.RateLimitRequests)
	setDuration(&config.RateLimitWindow, c.RateLimitWindow)
	if c.TrustProxyHeaders != nil {
		config.TrustProxyHeaders = *c.TrustProxyHeaders
	}
	setDuration(&config.StoreTimeout, c.StoreTimeout)
	setDuration(&config.NotifyTimeout, c.NotifyTimeout)
	setInt(&config.NotifyQueueSize, c.NotifyQueueSize)
	setDuration(&config.HealthCheckInterval, c.HealthCheckInterval)
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUsername, c.SMTPUsername)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFromEmail, c.SMTPFromEmail)
	setString(&config.SMTPFromName, c.SMTPFromName)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
