// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvJSONOverride holds a JSON document merged over the file configuration.
	EnvJSONOverride = "GO_BLOG_ADMIN_CONFIG_JSON"

	// EnvPrefix is the prefix for single value overrides, e.g. GO_BLOG_ADMIN_TOKEN_SECRET.
	EnvPrefix = "GO_BLOG_ADMIN"

	// MinSecretLength is the minimum accepted token signing key length in bytes.
	MinSecretLength = 32

	defaultTokenTTL     = 24 * time.Hour
	defaultShutDownTime = 5
	defaultUploadDir    = "uploads"
	defaultUploadSize   = 5 << 20
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvJSONOverride)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config override from env")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	t := toml.NewEncoder(&buffer)
	t.SetIndentTables(true)

	if err := t.Encode(c.redacted()); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c.redacted()); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// redacted returns a copy without secrets, suitable for printing.
func (c *Config) redacted() Config {
	out := *c

	const mask = "********"

	if out.Token.Secret != "" {
		out.Token.Secret = mask
	}

	if out.DB.Password != "" {
		out.DB.Password = mask
	}

	if out.Auth.LDAP.BindPassword != "" {
		out.Auth.LDAP.BindPassword = mask
	}

	if out.Auth.OIDC.ClientSecret != "" {
		out.Auth.OIDC.ClientSecret = mask
	}

	if out.Seed.AdminPassword != "" {
		out.Seed.AdminPassword = mask
	}

	return out
}

// validate the settings the service can not start without and fill defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	// validate access-control-allow-origin
	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Token.Secret == "" {
		return errors.Wrap(ErrEmptyTokenSecret, invalidErrMessage)
	}

	if len(c.Token.Secret) < MinSecretLength {
		return errors.Wrap(ErrTokenSecretTooShort, invalidErrMessage)
	}

	switch c.Storage.Engine {
	case "", StorageMemory, StorageMySQL, StoragePostgres:
	default:
		return errors.Wrapf(ErrUnsupportedStorage, "%s: %q", invalidErrMessage, c.Storage.Engine)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Token.TTL == 0 {
		c.Token.TTL = defaultTokenTTL
	}

	if c.Upload.Dir == "" {
		c.Upload.Dir = defaultUploadDir
	}

	if c.Upload.MaxSize == 0 {
		c.Upload.MaxSize = defaultUploadSize
	}

	if c.Storage.Engine == "" {
		c.Storage.Engine = StorageMemory
	}

	return nil
}
