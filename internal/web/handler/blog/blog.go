// Package blog provides the REST handlers for blog posts.
package blog

import (
	"errors"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	blogstore "github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/blog"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/upload"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/handler"
	authmw "github.com/GoBlogAdmin/GoBlogAdmin/internal/web/middleware/auth"
)

const (
	// Path is the collection endpoint, relative to the API prefix.
	Path = handler.RootPath + "blogs"

	imageField = "image"
	maxTitle   = 200
)

// Service is the blog handler service.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Init registers the routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.deps = deps

	token := authmw.RequireToken(deps.Tokens, deps.Denylist)

	router.Route(Path, func(r fiber.Router) {
		r.Get(handler.RootPath, token, authmw.RequirePermission(rbac.PermViewBlogs), s.List)
		r.Get("/:id", token, authmw.RequirePermission(rbac.PermViewBlogs), s.Get)
		r.Post(handler.RootPath, token, authmw.RequirePermission(rbac.PermEditBlogs), s.Create)
		r.Put("/:id", token, authmw.RequirePermission(rbac.PermEditBlogs), s.Update)
		r.Delete("/:id", token, authmw.RequirePermission(rbac.PermDeleteBlogs), s.Delete)
	})

	return nil
}

// List returns all posts, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	blogs, err := s.deps.Blogs.List(c.UserContext())
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(api.NewBlogs(blogs))
}

// Get returns a single post.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	b, err := s.deps.Blogs.Get(c.UserContext(), id)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.JSON(api.NewBlog(b))
}

type fields struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// readFields reads title and content from a form, multipart or JSON body.
func readFields(c *fiber.Ctx) (fields, error) {
	ct := strings.ToLower(c.Get(fiber.HeaderContentType))
	if strings.HasPrefix(ct, fiber.MIMEApplicationJSON) {
		var f fields
		if err := c.BodyParser(&f); err != nil {
			return f, handler.Validationf("invalid request body: %v", err)
		}

		return f, nil
	}

	return fields{Title: handler.FormValue(c, "title"), Content: handler.FormValue(c, "content")}, nil
}

func validate(f fields, create bool) error {
	if f.Title != nil {
		t := strings.TrimSpace(*f.Title)
		f.Title = &t
	}

	switch {
	case create && (f.Title == nil || *f.Title == ""):
		return handler.Validationf("title is required")
	case create && (f.Content == nil || strings.TrimSpace(*f.Content) == ""):
		return handler.Validationf("content is required")
	case f.Title != nil && *f.Title == "":
		return handler.Validationf("title must not be empty")
	case f.Title != nil && utf8.RuneCountInString(*f.Title) > maxTitle:
		return handler.Validationf("title is longer than %d characters", maxTitle)
	case f.Content != nil && strings.TrimSpace(*f.Content) == "":
		return handler.Validationf("content must not be empty")
	}

	return nil
}

// saveImage stores the optional image of the request and returns its public path.
func (s *Service) saveImage(c *fiber.Ctx) (*string, error) {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return nil, nil //nolint:nilnil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, handler.Validationf("invalid multipart body: %v", err)
	}

	files := form.File[imageField]

	switch len(files) {
	case 0:
		return nil, nil //nolint:nilnil
	case 1:
		return s.store(files[0])
	default:
		return nil, handler.Validationf("only one image is allowed")
	}
}

func (s *Service) store(fh *multipart.FileHeader) (*string, error) {
	if fh.Size > s.deps.Uploads.MaxSize() {
		return nil, upload.ErrTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, handler.Validationf("invalid image: %v", err)
	}

	defer func() {
		if errClose := f.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close uploaded file")
		}
	}()

	p, err := s.deps.Uploads.Save(f, fh.Filename, fh.Header.Get(fiber.HeaderContentType))
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &p, nil
}

func (s *Service) discard(image *string) {
	if image == nil {
		return
	}

	if err := s.deps.Uploads.Remove(*image); err != nil {
		log.Warn().Err(err).Str("image", *image).Msg("failed to remove image")
	}
}

// Create stores a new post authored by the caller.
func (s *Service) Create(c *fiber.Ctx) error {
	id, _ := handler.Identity(c)

	f, err := readFields(c)
	if err != nil {
		return handler.SendError(c, err)
	}

	if err = validate(f, true); err != nil {
		return handler.SendError(c, err)
	}

	image, err := s.saveImage(c)
	if err != nil {
		return handler.SendError(c, err)
	}

	b := &models.Blog{
		Title:    strings.TrimSpace(*f.Title),
		Content:  *f.Content,
		Image:    image,
		AuthorID: id.UserID,
	}

	if err = s.deps.Blogs.Create(c.UserContext(), b); err != nil {
		s.discard(image)
		return handler.SendError(c, err)
	}

	created, err := s.deps.Blogs.Get(c.UserContext(), b.ID)
	if err != nil {
		return handler.SendError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(api.NewBlog(created))
}

// Update changes the sent fields of a post. A new image replaces and removes the old one.
func (s *Service) Update(c *fiber.Ctx) error {
	blogID, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	f, err := readFields(c)
	if err != nil {
		return handler.SendError(c, err)
	}

	if err = validate(f, false); err != nil {
		return handler.SendError(c, err)
	}

	if _, err = s.deps.Blogs.Get(c.UserContext(), blogID); err != nil {
		return handler.SendError(c, err)
	}

	image, err := s.saveImage(c)
	if err != nil {
		return handler.SendError(c, err)
	}

	if f.Title != nil {
		t := strings.TrimSpace(*f.Title)
		f.Title = &t
	}

	updated, replaced, err := s.deps.Blogs.Update(c.UserContext(), blogID, blogstore.Changes{
		Title:   f.Title,
		Content: f.Content,
		Image:   image,
	})
	if err != nil {
		s.discard(image)
		return handler.SendError(c, err)
	}

	s.discard(replaced)

	return c.JSON(api.NewBlog(updated))
}

// Delete removes a post and its image.
func (s *Service) Delete(c *fiber.Ctx) error {
	blogID, err := handler.ParamID(c, "id")
	if err != nil {
		return handler.SendError(c, err)
	}

	deleted, err := s.deps.Blogs.Delete(c.UserContext(), blogID)
	if err != nil {
		return handler.SendError(c, err)
	}

	s.discard(deleted.Image)

	return c.JSON(api.Message{Message: "Blog deleted successfully"})
}
