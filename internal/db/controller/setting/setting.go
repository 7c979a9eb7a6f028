// Package setting provides access to runtime site settings stored in the database.
package setting

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when a setting name is empty.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Store reads and writes settings.
type Store struct {
	db *gorm.DB
}

// New returns a settings store on db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) check(name string) error {
	if s == nil || s.db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	return nil
}

// Get retrieves a setting by its name.
func (s *Store) Get(ctx context.Context, name string) (*models.Setting, error) {
	if err := s.check(name); err != nil {
		return nil, err
	}

	var setting models.Setting

	err := s.db.WithContext(ctx).Where(nameQueryPattern, name).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSettingNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read setting %q: %w", name, err)
	}

	return &setting, nil
}

// GetString returns the value of name, or fallback when the setting is absent.
func (s *Store) GetString(ctx context.Context, name, fallback string) (string, error) {
	setting, err := s.Get(ctx, name)
	if errors.Is(err, ErrSettingNotFound) {
		return fallback, nil
	}

	if err != nil {
		return fallback, err
	}

	return string(setting.Value), nil
}

// All retrieves all settings ordered by name.
func (s *Store) All(ctx context.Context) ([]models.Setting, error) {
	if s == nil || s.db == nil {
		return nil, ErrDBNil
	}

	settings := make([]models.Setting, 0)
	if err := s.db.WithContext(ctx).Order("name").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	return settings, nil
}

// Set creates or updates a setting by name.
func (s *Store) Set(ctx context.Context, name string, value []byte) (*models.Setting, error) {
	if err := s.check(name); err != nil {
		return nil, err
	}

	setting := &models.Setting{Name: name, Value: value}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to write setting %q: %w", name, err)
	}

	return s.Get(ctx, name)
}

// Delete removes a setting by name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.check(name); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete setting %q: %w", name, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// DefaultRole returns the role given to self registered accounts.
// A missing or invalid setting falls back to lead, the least privileged role.
func (s *Store) DefaultRole(ctx context.Context) rbac.Role {
	value, err := s.GetString(ctx, models.SettingDefaultRole, string(rbac.RoleLead))
	if err != nil {
		return rbac.RoleLead
	}

	role, err := rbac.ParseRole(value)
	if err != nil {
		return rbac.RoleLead
	}

	return role
}

// SetDefaultRole stores the role given to self registered accounts.
func (s *Store) SetDefaultRole(ctx context.Context, value string) error {
	role, err := rbac.ParseRole(value)
	if err != nil {
		return err
	}

	_, err = s.Set(ctx, models.SettingDefaultRole, []byte(role))

	return err
}
