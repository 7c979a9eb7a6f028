package daemon

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/config"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

// seed creates the configured super_admin when the user table is empty.
func seed(ctx context.Context, cfg *config.Config, users *auth.LocalProvider) error {
	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		return nil
	}

	count, err := users.CountUsers(ctx)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if count > 0 {
		return nil
	}

	name := cfg.Seed.AdminName
	if name == "" {
		name = "Administrator"
	}

	u, err := users.Register(ctx, name, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, rbac.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	log.Warn().Str("email", u.Email).Msg("created initial super_admin, change its password")

	return nil
}
