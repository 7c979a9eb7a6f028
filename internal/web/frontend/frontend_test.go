package frontend

import (
	"bytes"
	"errors"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/client"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

func TestCan(t *testing.T) {
	can, ok := TemplateFuncs(false)["can"].(func(string, string) bool)
	require.True(t, ok)

	tests := []struct {
		role, permission string
		want             bool
	}{
		{"lead", "VIEW_BLOGS", true},
		{"lead", "EDIT_BLOGS", false},
		{"admin", "EDIT_BLOGS", true},
		{"admin", "DELETE_BLOGS", false},
		{"super_admin", "MANAGE_USERS", true},
		{"", "VIEW_BLOGS", false},
		{"owner", "VIEW_BLOGS", false},
		{"super_admin", "FLY", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.permission, func(t *testing.T) {
			assert.Equal(t, tt.want, can(tt.role, tt.permission))
		})
	}
}

func TestCanDevModeFailsRender(t *testing.T) {
	can, ok := TemplateFuncs(true)["can"].(func(string, string) bool)
	require.True(t, ok)

	assert.True(t, can("admin", "EDIT_BLOGS"))
	assert.PanicsWithError(t, `unknown permission: "FLY"`, func() { can("super_admin", "FLY") })

	tpl := template.Must(template.New("nav").Funcs(TemplateFuncs(true)).Parse(
		`{{if can .Role "DELETE_BLOG"}}delete{{end}}`))

	var out bytes.Buffer
	err := tpl.Execute(&out, map[string]string{"Role": "super_admin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DELETE_BLOG")
	assert.Empty(t, out.String())

	tpl = template.Must(template.New("nav").Funcs(TemplateFuncs(false)).Parse(
		`{{if can .Role "DELETE_BLOG"}}delete{{else}}hidden{{end}}`))

	out.Reset()
	require.NoError(t, tpl.Execute(&out, map[string]string{"Role": "super_admin"}))
	assert.Equal(t, "hidden", out.String())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "nope", errorMessage(&client.APIError{Status: 403, Message: "nope"}))
	assert.Equal(t, "the server could not be reached", errorMessage(errors.New("dial tcp: refused")))
}

func TestRequirePanicsOnUnknownPermission(t *testing.T) {
	s := &Service{}

	assert.Panics(t, func() { s.require(rbac.Permission("FLY")) })
	assert.NotPanics(t, func() { s.require(rbac.PermViewBlogs) })
}

func TestInitRejectsMissingDeps(t *testing.T) {
	s := &Service{}

	require.Error(t, s.Init(nil, &Deps{}))
	require.Error(t, s.Init(nil, nil))
}
