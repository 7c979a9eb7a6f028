package setting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/dbtest"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

func TestNilStore(t *testing.T) {
	ctx := context.Background()

	var s *Store

	_, err := s.Get(ctx, "x")
	require.ErrorIs(t, err, ErrDBNil)

	_, err = New(nil).All(ctx)
	require.ErrorIs(t, err, ErrDBNil)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s := New(dbtest.New(t))

	testCases := []struct {
		name          string
		settingName   string
		seed          []models.Setting
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "empty name",
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:          "successful get",
			settingName:   "site_name",
			seed:          []models.Setting{{Name: "site_name", Value: []byte("My Blog")}},
			expectedValue: []byte("My Blog"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s.db.Exec("DELETE FROM settings")

			for _, seed := range tc.seed {
				require.NoError(t, s.db.Create(&seed).Error)
			}

			setting, err := s.Get(ctx, tc.settingName)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.settingName, setting.Name)
			assert.Equal(t, tc.expectedValue, setting.Value)
		})
	}
}

func TestGetString(t *testing.T) {
	ctx := context.Background()
	s := New(dbtest.New(t))

	v, err := s.GetString(ctx, "missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", v)

	_, err = s.Set(ctx, "present", []byte("value"))
	require.NoError(t, err)

	v, err = s.GetString(ctx, "present", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestSetUpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New(dbtest.New(t))

	created, err := s.Set(ctx, "site_name", []byte("first"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	updated, err := s.Set(ctx, "site_name", []byte("second"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, []byte("second"), updated.Value)

	_, err = s.Set(ctx, "", []byte("x"))
	require.ErrorIs(t, err, ErrSettingNameEmpty)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.Delete(ctx, "site_name"))
	require.ErrorIs(t, s.Delete(ctx, "site_name"), ErrSettingNotFound)

	all, err = s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDefaultRole(t *testing.T) {
	ctx := context.Background()
	s := New(dbtest.New(t))

	assert.Equal(t, rbac.RoleLead, s.DefaultRole(ctx))

	require.NoError(t, s.SetDefaultRole(ctx, "admin"))
	assert.Equal(t, rbac.RoleAdmin, s.DefaultRole(ctx))

	require.ErrorIs(t, s.SetDefaultRole(ctx, "owner"), rbac.ErrInvalidRole)
	assert.Equal(t, rbac.RoleAdmin, s.DefaultRole(ctx))

	// a corrupted value never grants more than lead
	_, err := s.Set(ctx, models.SettingDefaultRole, []byte("root"))
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleLead, s.DefaultRole(ctx))
}
