package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrEmptyTokenSecret error if no token signing key is configured.
	ErrEmptyTokenSecret = errors.New("toml config token.secret can not be empty")

	// ErrTokenSecretTooShort error if the token signing key is shorter than MinSecretLength.
	ErrTokenSecretTooShort = errors.New("toml config token.secret is too short")

	// ErrUnsupportedStorage error if storage.engine names an unknown backend.
	ErrUnsupportedStorage = errors.New("toml config storage.engine is not supported")
)
