package config

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const minSecretLen = 16

// Validate rejects configurations that would start a broken or unsafe
// server. The DSN goes through pgx's parser so malformed connection strings
// fail here instead of at first query.
func (c *Config) Validate() error {
	var errs []error

	if c.EndpointAddrHTTP == "" {
		errs = append(errs, errors.New("http address is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	} else if c.Environment != EnvDev && len(c.SecretKey) < minSecretLen {
		errs = append(errs, fmt.Errorf("secret key must be at least %d bytes outside %q", minSecretLen, EnvDev))
	}
	if _, err := pgx.ParseConfig(c.DatabaseDSN); err != nil {
		errs = append(errs, fmt.Errorf("database dsn: %w", err))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if c.OTPValidityDuration <= 0 {
		errs = append(errs, errors.New("otp validity must be positive"))
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("rate limit requests and window must be positive"))
	}
	if c.StoreTimeout <= 0 || c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("store and notify timeouts must be positive"))
	}
	switch c.PasswordHashAlgorithm {
	case HashBcrypt:
		if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
			errs = append(errs, fmt.Errorf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
		}
	case HashArgon2id:
	default:
		errs = append(errs, fmt.Errorf("unknown password hash algorithm %q", c.PasswordHashAlgorithm))
	}

	return errors.Join(errs...)
}
