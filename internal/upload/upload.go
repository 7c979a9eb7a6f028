// Package upload stores blog images on disk after checking their declared
// and actual type.
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultMaxSize is the largest accepted image.
	DefaultMaxSize int64 = 5 << 20

	// URLPrefix is the path under which stored images are served.
	URLPrefix = "/uploads/"
)

var (
	// ErrInvalidUpload is the category of every rejected upload.
	ErrInvalidUpload = errors.New("invalid upload")
	// ErrTooLarge is returned when an image exceeds the size limit.
	ErrTooLarge = fmt.Errorf("%w: file too large", ErrInvalidUpload)
	// ErrNotAnImage is returned when the name, declared type or content is not an accepted image.
	ErrNotAnImage = fmt.Errorf("%w: only images allowed", ErrInvalidUpload)
	// ErrUnsupportedFormat is returned when the content is an image of an unsupported format.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported image format", ErrInvalidUpload)
	// ErrEmpty is returned for an empty file.
	ErrEmpty = fmt.Errorf("%w: empty file", ErrInvalidUpload)
	// ErrTypeMismatch is returned when the content is not the format its name and declared type claim.
	ErrTypeMismatch = fmt.Errorf("%w: content does not match declared type", ErrInvalidUpload)
)

var (
	//nolint:gochecknoglobals
	allowedExt = map[string]string{
		".jpeg": "image/jpeg", ".jpg": "image/jpeg", ".png": "image/png", ".gif": "image/gif", ".webp": "image/webp",
	}

	// image/jpg is not registered but some clients send it.
	//nolint:gochecknoglobals
	mimeAlias = map[string]string{
		"image/jpg":   "image/jpeg",
		"image/pjpeg": "image/jpeg",
	}

	//nolint:gochecknoglobals
	allowedMIME = map[string]struct{}{
		"image/jpeg": {}, "image/png": {}, "image/gif": {}, "image/webp": {},
	}
)

// Store writes images into a directory.
type Store struct {
	dir     string
	maxSize int64
}

// New returns a store writing into dir, creating it when missing.
// A maxSize of zero selects DefaultMaxSize.
func New(dir string, maxSize int64) (*Store, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return &Store{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the directory images are written to.
func (s *Store) Dir() string { return s.dir }

// MaxSize returns the size limit in bytes.
func (s *Store) MaxSize() int64 { return s.maxSize }

// declaredType parses a Content-Type header value into an accepted image type.
func declaredType(contentType string) (string, bool) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}

	if alias, ok := mimeAlias[mt]; ok {
		mt = alias
	}

	_, ok := allowedMIME[mt]

	return mt, ok
}

// Save stores r under a random name and returns the public path of the file.
// originalName only contributes its extension. A rejected upload leaves no file behind.
func (s *Store) Save(r io.Reader, originalName, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))

	want, ok := allowedExt[ext]
	if !ok {
		return "", ErrNotAnImage
	}

	declared, ok := declaredType(contentType)
	if !ok || declared != want {
		return "", ErrNotAnImage
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	full := filepath.Join(s.dir, name)

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxSize+1))

	if errClose := f.Close(); err == nil {
		err = errClose
	}

	if err == nil {
		err = s.check(full, written, want)
	}

	if err != nil {
		if errRemove := os.Remove(full); errRemove != nil {
			log.Error().Err(errRemove).Str("file", full).Msg("failed to remove rejected upload")
		}

		return "", err
	}

	return URLPrefix + name, nil
}

func (s *Store) check(full string, written int64, want string) error {
	if written > s.maxSize {
		return ErrTooLarge
	}

	if written == 0 {
		return ErrEmpty
	}

	detected, err := mimetype.DetectFile(full)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	got := detected.String()
	if !strings.HasPrefix(got, "image/") {
		return ErrNotAnImage
	}

	if _, ok := allowedMIME[got]; !ok {
		return ErrUnsupportedFormat
	}

	if got != want {
		return ErrTypeMismatch
	}

	return nil
}

// Remove deletes a stored image by its public path. Paths outside the
// upload prefix and missing files are ignored.
func (s *Store) Remove(publicPath string) error {
	if !strings.HasPrefix(publicPath, URLPrefix) {
		return nil
	}

	name := path.Base(publicPath)
	if name == "." || name == "/" || name == ".." {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}

	return nil
}
