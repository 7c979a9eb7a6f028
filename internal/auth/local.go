package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

const whereEmail = "email = ?"

// LocalProvider handles user accounts stored in the local database.
type LocalProvider struct {
	db *gorm.DB
}

// ProfileChanges holds the fields of a self service profile update. Nil fields are left unchanged.
type ProfileChanges struct {
	Name     *string
	Email    *string
	Password *string
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a local account with role.
func (p *LocalProvider) Register(ctx context.Context, name, email, password string, role rbac.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, &rbac.InvalidRoleError{Role: string(role)}
	}

	email = normalizeEmail(email)

	var count int64
	if err := p.db.WithContext(ctx).Model(&models.User{}).Where(whereEmail, email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if count > 0 {
		return nil, ErrEmailExists
	}

	user := models.User{
		Name:       strings.TrimSpace(name),
		Email:      email,
		Password:   models.HashPassword(password),
		Role:       role,
		AuthSource: models.AuthSourceLocal,
	}

	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// Authenticate checks email and password of a local account.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where("email = ? AND auth_source = ?", normalizeEmail(email), models.AuthSourceLocal).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (p *LocalProvider) GetUserByID(ctx context.Context, userID uint64) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read user %d: %w", userID, err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (p *LocalProvider) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where(whereEmail, normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}

	return &user, nil
}

// ListUsers returns all accounts ordered by id.
func (p *LocalProvider) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)

	if err := p.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateRole stores a new role for userID. Authorization is the caller's concern.
func (p *LocalProvider) UpdateRole(ctx context.Context, userID uint64, role rbac.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, &rbac.InvalidRoleError{Role: string(role)}
	}

	res := p.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update role of user %d: %w", userID, res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	return p.GetUserByID(ctx, userID)
}

// UpdateProfile changes name, email or password of userID. The role is never touched here.
func (p *LocalProvider) UpdateProfile(ctx context.Context, userID uint64, c ProfileChanges) (*models.User, error) {
	user, err := p.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}

	if c.Name != nil {
		updates["name"] = strings.TrimSpace(*c.Name)
	}

	if c.Email != nil {
		email := normalizeEmail(*c.Email)
		if email != user.Email {
			var count int64
			if err = p.db.WithContext(ctx).Model(&models.User{}).Where(whereEmail, email).Count(&count).Error; err != nil {
				return nil, fmt.Errorf("failed to check existing user: %w", err)
			}

			if count > 0 {
				return nil, ErrEmailExists
			}

			updates["email"] = email
		}
	}

	if c.Password != nil {
		updates["password"] = models.HashPassword(*c.Password)
	}

	if len(updates) > 0 {
		if err = p.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
		}
	}

	return p.GetUserByID(ctx, userID)
}

// DeleteUser removes an account.
func (p *LocalProvider) DeleteUser(ctx context.Context, userID uint64) error {
	res := p.db.WithContext(ctx).Delete(&models.User{}, userID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetOTPSecret enrols or, with an empty secret, removes the second factor of userID.
func (p *LocalProvider) SetOTPSecret(ctx context.Context, userID uint64, secret string) error {
	res := p.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("otp_secret", secret)
	if res.Error != nil {
		return fmt.Errorf("failed to set otp secret of user %d: %w", userID, res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// CountUsers returns the number of accounts.
func (p *LocalProvider) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := p.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// FindExternal returns the account linked to externalID of source.
func (p *LocalProvider) FindExternal(ctx context.Context, source models.AuthSource, externalID string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where("external_id = ? AND auth_source = ?", externalID, source).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// UpsertExternal creates or refreshes an account that authenticates against an
// external source. New accounts get defaultRole; the role of an existing
// account is left alone.
func (p *LocalProvider) UpsertExternal(
	ctx context.Context,
	source models.AuthSource,
	externalID, email, name string,
	defaultRole rbac.Role,
) (*models.User, error) {
	var user models.User

	email = normalizeEmail(email)

	err := p.db.WithContext(ctx).Where("external_id = ? AND auth_source = ?", externalID, source).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !defaultRole.Valid() {
			defaultRole = rbac.RoleLead
		}

		user = models.User{
			Name:       name,
			Email:      email,
			Role:       defaultRole,
			AuthSource: source,
			ExternalID: externalID,
		}

		if err = p.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	default:
		user.Email = email
		user.Name = name

		if err = p.db.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return &user, nil
}
