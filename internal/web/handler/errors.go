package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/blog"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/setting"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/upload"
)

// Error categories of the JSON error body.
const (
	CategoryUnauthenticated = "unauthenticated"
	CategoryOTPRequired     = "otp_required"
	CategoryForbidden       = "forbidden"
	CategoryInvalidRole     = "invalid_role"
	CategoryInvalidUpload   = "invalid_upload"
	CategoryValidation      = "validation"
	CategoryNotFound        = "not_found"
	CategoryInternal        = "internal"
)

var (
	// ErrNotFound is returned when the addressed resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed request input.
	ErrValidation = errors.New("validation failed")
)

// Validationf returns a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Classify maps an error to its HTTP status and category.
func Classify(err error) (int, string) {
	var (
		fiberErr *fiber.Error
		valErrs  validator.ValidationErrors
	)

	switch {
	case errors.Is(err, rbac.ErrUnknownPermission):
		return fiber.StatusInternalServerError, CategoryInternal
	case errors.Is(err, auth.ErrOTPRequired):
		return fiber.StatusUnauthorized, CategoryOTPRequired
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidOTP),
		errors.Is(err, auth.ErrInvalidState):
		return fiber.StatusUnauthorized, CategoryUnauthenticated
	case errors.Is(err, auth.ErrForbidden):
		return fiber.StatusForbidden, CategoryForbidden
	case errors.Is(err, rbac.ErrInvalidRole):
		return fiber.StatusBadRequest, CategoryInvalidRole
	case errors.Is(err, upload.ErrInvalidUpload):
		return fiber.StatusBadRequest, CategoryInvalidUpload
	case errors.Is(err, ErrValidation), errors.As(err, &valErrs), errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, setting.ErrSettingNameEmpty):
		return fiber.StatusBadRequest, CategoryValidation
	case errors.Is(err, ErrNotFound), errors.Is(err, auth.ErrUserNotFound), errors.Is(err, blog.ErrBlogNotFound),
		errors.Is(err, setting.ErrSettingNotFound):
		return fiber.StatusNotFound, CategoryNotFound
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberCategory(fiberErr.Code)
	default:
		return fiber.StatusInternalServerError, CategoryInternal
	}
}

func fiberCategory(code int) string {
	switch {
	case code == fiber.StatusNotFound:
		return CategoryNotFound
	case code == fiber.StatusUnauthorized:
		return CategoryUnauthenticated
	case code == fiber.StatusForbidden:
		return CategoryForbidden
	case code < fiber.StatusInternalServerError:
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

func message(err error, status int) string {
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		fields := make([]string, 0, len(valErrs))
		for _, fe := range valErrs {
			fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
		}

		return strings.Join(fields, ", ")
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Message
	}

	if status == fiber.StatusInternalServerError {
		return "internal server error"
	}

	return err.Error()
}

// SendError writes err as a JSON error body with its mapped status.
func SendError(c *fiber.Ctx, err error) error {
	status, category := Classify(err)

	switch {
	case errors.Is(err, rbac.ErrUnknownPermission):
		log.Error().Err(err).Str("condition", "unknown_permission").Str("path", c.Path()).
			Msg("request checked against an unknown permission")
	case status >= fiber.StatusInternalServerError:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	if status == fiber.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="api"`)
	}

	return c.Status(status).JSON(api.ErrorBody{Error: category, Message: message(err, status)})
}

// ErrorHandler is the fiber error handler of the REST backend.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return SendError(c, err)
}
