// Package navigation builds the menu and breadcrumbs of the browser client pages.
package navigation

import (
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

// Sections of the browser client.
const (
	SectionBlogs   = "blogs"
	SectionUsers   = "users"
	SectionAccount = "account"
)

// MenuItem is an entry of the top menu. Entries with a permission are only
// listed for roles holding it.
type MenuItem struct {
	Title      string
	URL        string
	Section    string
	Permission rbac.Permission
	Active     bool
}

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

//nolint:gochecknoglobals
var menu = []MenuItem{
	{Title: "Blogs", URL: "/", Section: SectionBlogs, Permission: rbac.PermViewBlogs},
	{Title: "Add Blog", URL: "/blog/new", Section: SectionBlogs, Permission: rbac.PermEditBlogs},
	{Title: "Users", URL: "/users", Section: SectionUsers, Permission: rbac.PermManageUsers},
	{Title: "Profile", URL: "/profile", Section: SectionAccount},
}

// Menu returns the entries visible to role, marking the one at activeURL.
func Menu(role rbac.Role, activeURL string) []MenuItem {
	out := make([]MenuItem, 0, len(menu))

	for _, item := range menu {
		if item.Permission != "" && !rbac.MustEvaluate(role, item.Permission) {
			continue
		}

		item.Active = item.URL == activeURL
		out = append(out, item)
	}

	return out
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
	Menu          []MenuItem
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// WithMenu fills the menu for role.
func (c *Context) WithMenu(role rbac.Role) *Context {
	c.Menu = Menu(role, c.ActivePage)
	return c
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}
