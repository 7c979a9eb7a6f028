// Package blog provides persistence operations for blog posts.
package blog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
)

var (
	// ErrBlogNotFound is returned when a post does not exist.
	ErrBlogNotFound = errors.New("blog not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrMissingAuthor is returned when a post is created without an author.
	ErrMissingAuthor = errors.New("blog author is required")
)

// Changes holds the fields of an update. Nil fields are left unchanged.
type Changes struct {
	Title   *string
	Content *string
	Image   *string
}

// Store reads and writes blog posts.
type Store struct {
	db *gorm.DB
}

// New returns a blog store on db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) tx(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrDBNil
	}

	return s.db.WithContext(ctx), nil
}

// List returns all posts, newest first, with their author loaded.
func (s *Store) List(ctx context.Context) ([]models.Blog, error) {
	tx, err := s.tx(ctx)
	if err != nil {
		return nil, err
	}

	blogs := make([]models.Blog, 0)
	if err = tx.Preload("Author").Order("created_at DESC, id DESC").Find(&blogs).Error; err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}

	return blogs, nil
}

// Get returns a single post with its author loaded.
func (s *Store) Get(ctx context.Context, id uint64) (*models.Blog, error) {
	tx, err := s.tx(ctx)
	if err != nil {
		return nil, err
	}

	var b models.Blog

	err = tx.Preload("Author").First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlogNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read blog %d: %w", id, err)
	}

	return &b, nil
}

// Create stores a new post. The author must be set.
func (s *Store) Create(ctx context.Context, b *models.Blog) error {
	tx, err := s.tx(ctx)
	if err != nil {
		return err
	}

	if b.AuthorID == 0 {
		return ErrMissingAuthor
	}

	if err = tx.Omit("Author").Create(b).Error; err != nil {
		return fmt.Errorf("failed to create blog: %w", err)
	}

	return nil
}

// Update applies changes to the post and returns the updated post together
// with the image path it replaced, if any.
func (s *Store) Update(ctx context.Context, id uint64, c Changes) (*models.Blog, *string, error) {
	tx, err := s.tx(ctx)
	if err != nil {
		return nil, nil, err
	}

	var (
		updated  *models.Blog
		replaced *string
	)

	err = tx.Transaction(func(tx *gorm.DB) error {
		var b models.Blog

		errFirst := tx.First(&b, id).Error
		if errors.Is(errFirst, gorm.ErrRecordNotFound) {
			return ErrBlogNotFound
		}

		if errFirst != nil {
			return errFirst
		}

		updates := map[string]any{}

		if c.Title != nil {
			updates["title"] = *c.Title
		}

		if c.Content != nil {
			updates["content"] = *c.Content
		}

		if c.Image != nil {
			if b.Image != nil && *b.Image != *c.Image {
				replaced = b.Image
			}

			updates["image"] = *c.Image
		}

		if len(updates) > 0 {
			if errUpdate := tx.Model(&b).Updates(updates).Error; errUpdate != nil {
				return errUpdate
			}
		}

		if errReload := tx.Preload("Author").First(&b, id).Error; errReload != nil {
			return errReload
		}

		updated = &b

		return nil
	})
	if errors.Is(err, ErrBlogNotFound) {
		return nil, nil, ErrBlogNotFound
	}

	if err != nil {
		return nil, nil, fmt.Errorf("failed to update blog %d: %w", id, err)
	}

	return updated, replaced, nil
}

// Delete removes a post and returns it so callers can clean up its image.
func (s *Store) Delete(ctx context.Context, id uint64) (*models.Blog, error) {
	tx, err := s.tx(ctx)
	if err != nil {
		return nil, err
	}

	var b models.Blog

	err = tx.First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlogNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read blog %d: %w", id, err)
	}

	if err = tx.Delete(&b).Error; err != nil {
		return nil, fmt.Errorf("failed to delete blog %d: %w", id, err)
	}

	return &b, nil
}

// DeleteByAuthor removes all posts of a user and returns their image paths.
func (s *Store) DeleteByAuthor(ctx context.Context, authorID uint64) ([]string, error) {
	tx, err := s.tx(ctx)
	if err != nil {
		return nil, err
	}

	var images []string

	err = tx.Model(&models.Blog{}).
		Where("author_id = ? AND image IS NOT NULL", authorID).
		Pluck("image", &images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list images of author %d: %w", authorID, err)
	}

	if err = tx.Where("author_id = ?", authorID).Delete(&models.Blog{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete blogs of author %d: %w", authorID, err)
	}

	return images, nil
}
