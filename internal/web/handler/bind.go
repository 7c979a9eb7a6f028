package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
)

// Bind parses the request body into dst and validates it.
func Bind(c *fiber.Ctx, deps *Deps, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return Validationf("invalid request body: %v", err)
	}

	if deps.Validate == nil {
		return nil
	}

	return deps.Validate.Struct(dst) //nolint:wrapcheck
}

// ParamID parses a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, Validationf("invalid %s", name)
	}

	return id, nil
}

// Identity returns the verified identity of the request.
func Identity(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(LocalsIdentity).(auth.Identity)
	return id, ok
}

// FormValue returns a text field of a form or multipart body, or nil when
// the field was not sent.
func FormValue(c *fiber.Ctx, name string) *string {
	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil
		}

		if v, ok := form.Value[name]; ok && len(v) > 0 {
			return &v[0]
		}

		return nil
	}

	if c.Request().PostArgs().Has(name) {
		v := string(c.Request().PostArgs().Peek(name))
		return &v
	}

	return nil
}
