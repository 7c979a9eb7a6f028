package frontend

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/api"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/client"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/web/navigation"
)

// Blog pages.
const (
	BlogsPath      = "/"
	NewBlogPath    = "/blog/new"
	EditBlogPath   = "/blog/edit/:id"
	DeleteBlogPath = "/blog/:id/delete"

	templateBlogs      = "blog/list"
	templateBlogForm   = "blog/form"
	templateBlogDelete = "blog/delete"
)

func blogNav(title, page string) *navigation.Context {
	nav := navigation.NewContext(title, navigation.SectionBlogs, page).AddBreadcrumb("Blogs", BlogsPath, page == BlogsPath)
	if page != BlogsPath {
		nav.AddBreadcrumb(title, page, true)
	}

	return nav
}

func paramID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// Blogs lists all posts.
func (s *Service) Blogs(c *fiber.Ctx) error {
	blogs, err := s.deps.Client.Blogs(c.UserContext(), current(c).Token)
	if err != nil {
		return s.fail(c, err)
	}

	return s.render(c, templateBlogs, blogNav("Blogs", BlogsPath), fiber.Map{"Blogs": blogs})
}

type blogForm struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}

// input builds the request of a submitted form. The returned closer must be
// called once the request is sent.
func input(c *fiber.Ctx, f *blogForm) (client.BlogInput, func(), error) {
	in := client.BlogInput{Title: &f.Title, Content: &f.Content}

	fh, err := c.FormFile("image")
	if err != nil || fh == nil || fh.Size == 0 {
		return in, func() {}, nil
	}

	file, err := fh.Open()
	if err != nil {
		return in, func() {}, err //nolint:wrapcheck
	}

	in.Image = &client.Image{Name: fh.Filename, ContentType: fh.Header.Get(fiber.HeaderContentType), Data: file}

	return in, func() {
		if errClose := file.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close uploaded file")
		}
	}, nil
}

func (s *Service) formPage(c *fiber.Ctx, title string, blog api.Blog, errMsg string) error {
	return s.render(c, templateBlogForm, blogNav(title, c.Path()), fiber.Map{
		"Blog":   blog,
		"Action": c.Path(),
		"Error":  errMsg,
	})
}

// NewBlogForm shows the empty post form.
func (s *Service) NewBlogForm(c *fiber.Ctx) error {
	return s.formPage(c, "Add Blog", api.Blog{}, "")
}

// CreateBlog submits a new post.
func (s *Service) CreateBlog(c *fiber.Ctx) error {
	f := new(blogForm)
	if err := c.BodyParser(f); err != nil {
		return s.formPage(c.Status(fiber.StatusBadRequest), "Add Blog", api.Blog{}, "invalid form")
	}

	in, done, err := input(c, f)
	if err != nil {
		return s.formPage(c.Status(fiber.StatusBadRequest), "Add Blog", api.Blog{Title: f.Title, Content: f.Content}, err.Error())
	}
	defer done()

	if _, err = s.deps.Client.CreateBlog(c.UserContext(), current(c).Token, in); err != nil {
		if client.StatusOf(err) == fiber.StatusBadRequest {
			return s.formPage(c.Status(fiber.StatusBadRequest), "Add Blog",
				api.Blog{Title: f.Title, Content: f.Content}, errorMessage(err))
		}

		return s.fail(c, err)
	}

	return c.Redirect(BlogsPath)
}

// EditBlogForm shows a post in the form.
func (s *Service) EditBlogForm(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fiber.ErrNotFound
	}

	blog, err := s.deps.Client.Blog(c.UserContext(), current(c).Token, id)
	if err != nil {
		return s.fail(c, err)
	}

	return s.formPage(c, "Edit Blog", blog, "")
}

// UpdateBlog submits changes of a post.
func (s *Service) UpdateBlog(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fiber.ErrNotFound
	}

	f := new(blogForm)
	if err := c.BodyParser(f); err != nil {
		return s.formPage(c.Status(fiber.StatusBadRequest), "Edit Blog", api.Blog{ID: id}, "invalid form")
	}

	in, done, err := input(c, f)
	if err != nil {
		return s.formPage(c.Status(fiber.StatusBadRequest), "Edit Blog", api.Blog{ID: id, Title: f.Title, Content: f.Content}, err.Error())
	}
	defer done()

	if _, err = s.deps.Client.UpdateBlog(c.UserContext(), current(c).Token, id, in); err != nil {
		if client.StatusOf(err) == fiber.StatusBadRequest {
			return s.formPage(c.Status(fiber.StatusBadRequest), "Edit Blog",
				api.Blog{ID: id, Title: strings.TrimSpace(f.Title), Content: f.Content}, errorMessage(err))
		}

		return s.fail(c, err)
	}

	return c.Redirect(BlogsPath)
}

// DeleteBlogForm asks for confirmation.
func (s *Service) DeleteBlogForm(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fiber.ErrNotFound
	}

	blog, err := s.deps.Client.Blog(c.UserContext(), current(c).Token, id)
	if err != nil {
		return s.fail(c, err)
	}

	return s.render(c, templateBlogDelete, blogNav("Delete Blog", c.Path()), fiber.Map{"Blog": blog})
}

// DeleteBlog removes a post.
func (s *Service) DeleteBlog(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fiber.ErrNotFound
	}

	if err := s.deps.Client.DeleteBlog(c.UserContext(), current(c).Token, id); err != nil {
		return s.fail(c, err)
	}

	return c.Redirect(BlogsPath)
}
