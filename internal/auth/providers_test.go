package auth

import (
	"context"
	"net/url"
	"testing"

	"github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
)

func TestNewLDAPProvider(t *testing.T) {
	_, err := NewLDAPProvider(config.LDAPAuth{}, nil)
	require.ErrorIs(t, err, ErrLDAPDisabled)

	p, err := NewLDAPProvider(config.LDAPAuth{Enabled: true, Host: "ldap.example.com", Port: 636, UseSSL: true, DefaultRole: "owner"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "(uid={username})", p.config.UserFilter)
	assert.Equal(t, "mail", p.config.EmailAttr)
	assert.Equal(t, "lead", p.config.DefaultRole)
	assert.Equal(t, "ldaps://ldap.example.com:636", p.url())

	p, err = NewLDAPProvider(config.LDAPAuth{Enabled: true, Host: "ldap", Port: 389, DefaultRole: "admin"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ldap://ldap:389", p.url())
	assert.Equal(t, "admin", p.config.DefaultRole)
}

func TestLDAPEmptyPassword(t *testing.T) {
	p, err := NewLDAPProvider(config.LDAPAuth{Enabled: true, Host: "ldap", Port: 389}, nil)
	require.NoError(t, err)

	_, err = p.Authenticate(context.Background(), "ann", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewOIDCProviderDisabled(t *testing.T) {
	_, err := NewOIDCProvider(context.Background(), config.OIDCAuth{}, memory.New(), nil, nil)
	require.ErrorIs(t, err, ErrOIDCDisabled)
}

func TestOIDCStateIsSingleUse(t *testing.T) {
	p := &OIDCProvider{
		oauth2: oauth2.Config{ClientID: "blog", Endpoint: oauth2.Endpoint{AuthURL: "https://idp.example.com/auth"}},
		states: memory.New(),
	}

	authURL, err := p.AuthURL()
	require.NoError(t, err)

	u, err := url.Parse(authURL)
	require.NoError(t, err)

	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "blog", u.Query().Get("client_id"))

	require.ErrorIs(t, p.consumeState("unknown"), ErrInvalidState)
	require.ErrorIs(t, p.consumeState(""), ErrInvalidState)
	require.NoError(t, p.consumeState(state))
	require.ErrorIs(t, p.consumeState(state), ErrInvalidState)

	_, err = p.HandleCallback(context.Background(), state, "code")
	require.ErrorIs(t, err, ErrInvalidState)
}
