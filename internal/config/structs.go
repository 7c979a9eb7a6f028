package config

import (
	"time"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/logger"
)

// Storage engines for sessions and the token denylist.
const (
	StorageMemory   = "memory"
	StorageMySQL    = "mysql"
	StoragePostgres = "postgres"
)

// Session settings of the browser client.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Token     Token
	Storage   Storage
	Upload    Upload
	Auth      Auth
	Seed      Seed
}

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	GormEngine string // mysql, postgres or sqlite
	Path       string // sqlite database file
	Debug      bool   // log every sql statement
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool    // enable static file browsing (for development purposes only)
	DisableRecover bool    // disable recover middleware
	Domain         string  // domain name for the webserver
	Port           int     // listening port for the webserver
	ShutDownTime   int     // wait time for shutdown
	URL            string  // base url for the webserver
	AllowOrigins   string  // CORS allowed origins, comma separated
	BodyLimit      int     // max request body size in bytes, 0 uses the fiber default
	Session        Session // session settings
}

// Token holds the signing settings of issued bearer tokens.
type Token struct {
	Secret     string        // HMAC signing key, at least MinSecretLength bytes
	TTL        time.Duration // token lifetime, defaults to 24h
	Issuer     string        // optional iss claim
	Revocation bool          // enable the logout denylist
}

// Storage selects the key value backend for client sessions and the token denylist.
type Storage struct {
	Engine     string        // memory, mysql or postgres
	Table      string        // table name for sql engines
	GCInterval time.Duration // expiry sweep interval
}

// Upload holds image upload settings.
type Upload struct {
	Dir     string // directory served under /uploads
	MaxSize int64  // max accepted file size in bytes
}

// Auth holds login and registration settings.
type Auth struct {
	AllowRoleOnRegister bool // honor a role field sent to /api/register
	LocalDB             LocalDBAuth
	LDAP                LDAPAuth
	OIDC                OIDCAuth
	OTP                 OTPAuth
}

// LocalDBAuth toggles email and password login against the database.
type LocalDBAuth struct {
	Enabled bool
}

// LDAPAuth holds LDAP/Active Directory login settings.
type LDAPAuth struct {
	Enabled       bool
	Host          string
	Port          int
	UseSSL        bool
	UseTLS        bool
	SkipVerify    bool
	BindDN        string
	BindPassword  string
	BaseDN        string
	UserFilter    string
	EmailAttr     string
	NameAttr      string
	UsernameAttr  string
	Timeout       int
	DefaultRole   string
	ProvisionRole bool // create unknown directory users on first login
}

// OIDCAuth holds OpenID Connect login settings.
type OIDCAuth struct {
	Enabled      bool
	ProviderURL  string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// OTPAuth holds TOTP second factor settings.
type OTPAuth struct {
	Enabled bool
	Issuer  string
}

// Seed describes the super_admin created on an empty user table.
type Seed struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}
