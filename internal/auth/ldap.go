package auth

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

// ErrLDAPDisabled is returned when LDAP authentication is disabled via configuration.
var ErrLDAPDisabled = errors.New("ldap authentication is disabled")

// LDAPProvider authenticates users against a directory and links them to local accounts.
type LDAPProvider struct {
	config config.LDAPAuth
	local  *LocalProvider
}

// NewLDAPProvider creates a new LDAP provider.
func NewLDAPProvider(cfg config.LDAPAuth, local *LocalProvider) (*LDAPProvider, error) {
	if !cfg.Enabled {
		return nil, ErrLDAPDisabled
	}

	if cfg.UsernameAttr == "" {
		cfg.UsernameAttr = "uid"
	}

	if cfg.EmailAttr == "" {
		cfg.EmailAttr = "mail"
	}

	if cfg.NameAttr == "" {
		cfg.NameAttr = "cn"
	}

	if cfg.UserFilter == "" {
		cfg.UserFilter = "(" + cfg.UsernameAttr + "={username})"
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = 10
	}

	if _, err := rbac.ParseRole(cfg.DefaultRole); err != nil {
		cfg.DefaultRole = string(rbac.RoleLead)
	}

	return &LDAPProvider{
		config: cfg,
		local:  local,
	}, nil
}

func (p *LDAPProvider) url() string {
	hostPort := net.JoinHostPort(p.config.Host, strconv.Itoa(p.config.Port))

	if p.config.UseSSL {
		return "ldaps://" + hostPort
	}

	return "ldap://" + hostPort
}

// Connect establishes a connection to the LDAP server.
func (p *LDAPProvider) Connect() (*ldap.Conn, error) {
	var tlsConfig *tls.Config
	if p.config.UseSSL || p.config.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: p.config.SkipVerify, //nolint:gosec // skipping verifying tls is ok
			ServerName:         p.config.Host,
		}
	}

	conn, err := ldap.DialURL(p.url(), ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	if !p.config.UseSSL && p.config.UseTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			if errClose := conn.Close(); errClose != nil {
				log.Error().Err(errClose).Msg("failed to close LDAP connection")
			}

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	if p.config.Timeout > 0 {
		conn.SetTimeout(time.Duration(p.config.Timeout) * time.Second)
	}

	return conn, nil
}

// Authenticate binds as username and returns the linked local account.
// Directory users without an account are provisioned with the configured
// default role only when provisioning is enabled.
func (p *LDAPProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}

	conn, err := p.Connect()
	if err != nil {
		return nil, err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if p.config.BindDN != "" {
		if errBind := conn.Bind(p.config.BindDN, p.config.BindPassword); errBind != nil {
			return nil, fmt.Errorf("failed to bind with service account: %w", errBind)
		}
	}

	entry, err := p.searchUserEntry(conn, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, err
	}

	if errBind := conn.Bind(entry.DN, password); errBind != nil {
		log.Debug().Err(errBind).Str("dn", entry.DN).Msg("ldap user bind failed")
		return nil, ErrInvalidCredentials
	}

	email := entry.GetAttributeValue(p.config.EmailAttr)
	name := entry.GetAttributeValue(p.config.NameAttr)

	if name == "" {
		name = username
	}

	if !p.config.ProvisionRole {
		if _, errFind := p.local.FindExternal(ctx, models.AuthSourceLDAP, entry.DN); errFind != nil {
			return nil, errFind
		}
	}

	return p.local.UpsertExternal(ctx, models.AuthSourceLDAP, entry.DN, email, name, rbac.Role(p.config.DefaultRole))
}

func (p *LDAPProvider) searchUserEntry(conn *ldap.Conn, username string) (*ldap.Entry, error) {
	filter := strings.ReplaceAll(p.config.UserFilter, "{username}", ldap.EscapeFilter(username))
	searchRequest := ldap.NewSearchRequest(
		p.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		p.config.Timeout,
		false,
		filter,
		[]string{
			p.config.UsernameAttr,
			p.config.EmailAttr,
			p.config.NameAttr,
			"dn",
		},
		nil,
	)

	result, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for user: %w", err)
	}

	switch len(result.Entries) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return result.Entries[0], nil
	default:
		return nil, ErrMultipleUsersFound
	}
}

// TestConnection checks that the server is reachable and the service account can bind.
func (p *LDAPProvider) TestConnection() error {
	conn, err := p.Connect()
	if err != nil {
		return err
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if p.config.BindDN != "" {
		if err = conn.Bind(p.config.BindDN, p.config.BindPassword); err != nil {
			return fmt.Errorf("bind failed: %w", err)
		}
	}

	return nil
}
