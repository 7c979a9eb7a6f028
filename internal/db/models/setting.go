// Package models contains database model definitions.
package models

// Well known setting names.
const (
	// SettingDefaultRole names the role assigned to self registered accounts.
	SettingDefaultRole = "registration.default_role"
)

// Setting represents a runtime site setting stored in the database.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"uniqueIndex;size:100;not null"`
	Value []byte
}

// TableName specifies the database table name for the Setting model.
func (Setting) TableName() string {
	return "settings"
}

// All returns every model managed by the schema migration.
func All() []any {
	return []any{
		&User{},
		&Blog{},
		&Setting{},
	}
}
