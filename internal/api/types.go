// Package api holds the JSON shapes exchanged between the REST backend and its clients.
package api

import (
	"time"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
)

// ErrorBody is the body of every failed request.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Message is the body of requests that return no resource.
type Message struct {
	Message string `json:"message"`
}

// User is the public view of an account. Secrets never leave the server.
type User struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	AuthSource string    `json:"authSource,omitempty"`
	OTPEnabled bool      `json:"otpEnabled"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewUser builds the public view of u.
func NewUser(u *models.User) User {
	return User{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		AuthSource: string(u.AuthSource),
		OTPEnabled: u.OTPEnabled(),
		CreatedAt:  u.CreatedAt,
	}
}

// NewUsers builds the public views of users.
func NewUsers(users []models.User) []User {
	out := make([]User, 0, len(users))
	for i := range users {
		out = append(out, NewUser(&users[i]))
	}

	return out
}

// Session is returned by registration, login and the OIDC callback.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// Author is the embedded author of a blog post.
type Author struct {
	Name string `json:"name"`
}

// Blog is the public view of a blog post.
type Blog struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     *string   `json:"image"`
	AuthorID  uint64    `json:"authorId"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBlog builds the public view of b.
func NewBlog(b *models.Blog) Blog {
	return Blog{
		ID:        b.ID,
		Title:     b.Title,
		Content:   b.Content,
		Image:     b.Image,
		AuthorID:  b.AuthorID,
		Author:    Author{Name: b.AuthorName()},
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// NewBlogs builds the public views of blogs.
func NewBlogs(blogs []models.Blog) []Blog {
	out := make([]Blog, 0, len(blogs))
	for i := range blogs {
		out = append(out, NewBlog(&blogs[i]))
	}

	return out
}

// RBAC is the read-only role and permission table.
type RBAC struct {
	Roles       []string            `json:"roles"`
	Permissions []string            `json:"permissions"`
	Table       map[string][]string `json:"table"`
}

// Setting is a runtime site setting.
type Setting struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SettingRequest is the body of PUT /api/settings/:name.
type SettingRequest struct {
	Value string `json:"value" form:"value" validate:"max=1024"`
}

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Name     string `json:"name" form:"name" validate:"required,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role,omitempty" form:"role"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,max=255"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
	OTP      string `json:"otp,omitempty" form:"otp" validate:"omitempty,numeric,len=6"`
	Source   string `json:"source,omitempty" form:"source" validate:"omitempty,oneof=local ldap"`
}

// RoleRequest is the body of PUT /api/users/:id/role.
type RoleRequest struct {
	Role string `json:"role" form:"role"`
}

// ProfileRequest is the body of PUT /api/users/me. Absent fields stay unchanged.
type ProfileRequest struct {
	Name     *string `json:"name,omitempty" form:"name" validate:"omitempty,min=1,max=100"`
	Email    *string `json:"email,omitempty" form:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password,omitempty" form:"password" validate:"omitempty,min=6,max=128"`
}
