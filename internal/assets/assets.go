// Package assets manages the upload, replacement and deletion of binary
// files (logos, images, brochures) referenced by CRM records.
package assets

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/estatedesk/estatedesk/internal/random"
)

var (
	// ErrUnsupportedFormat is returned when the uploaded file extension is not allowed for the kind.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrFileTooLarge is returned when the uploaded file exceeds the kind's size limit.
	ErrFileTooLarge = errors.New("file too large")
)

const megabyte = 1 << 20

// Kind describes one category of stored asset: where it lives, what
// formats it accepts and how large it may be.
type Kind struct {
	// Dir is the subdirectory under the store root.
	Dir string
	// Suffix is a fixed filename suffix appended after the random token.
	Suffix string
	// Extensions is the lowercase allow-list of file extensions (without dot).
	Extensions []string
	// MaxBytes is the upload size limit.
	MaxBytes int64
}

var (
	// BuilderLogo holds builder company logos.
	BuilderLogo = Kind{Dir: "builders", Extensions: imageExtensions, MaxBytes: 2 * megabyte}
	// PropertyImage holds property listing images.
	PropertyImage = Kind{Dir: "properties", Suffix: "_property", Extensions: imageExtensions, MaxBytes: 2 * megabyte}
	// PropertyBrochure holds property brochure documents.
	PropertyBrochure = Kind{Dir: "brochures", Suffix: "_brochure", Extensions: []string{"pdf", "doc", "docx"}, MaxBytes: 5 * megabyte}
	// UserProfileImage holds user profile images.
	UserProfileImage = Kind{Dir: "users", Extensions: imageExtensions, MaxBytes: 2 * megabyte}
)

var imageExtensions = []string{"jpeg", "jpg", "png", "webp"}

// Store persists uploaded files below a single root directory.
// Each file is exclusively owned by the one record referencing it;
// there is no sharing and no reference counting.
type Store struct {
	root string
}

// NewStore creates a store rooted at root. Directories are created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the on-disk path for a stored filename of the given kind.
func (s *Store) Path(k Kind, name string) string {
	return filepath.Join(s.root, k.Dir, name)
}

// Save validates and persists an uploaded file, returning the generated
// filename to record on the owning entity. The destination directory is
// created on first use. Filenames are random tokens, so concurrent
// uploads can not collide.
func (s *Store) Save(fh *multipart.FileHeader, k Kind) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fh.Filename), "."))
	if !extAllowed(ext, k.Extensions) {
		return "", ErrUnsupportedFormat
	}

	if fh.Size > k.MaxBytes {
		return "", ErrFileTooLarge
	}

	dir := filepath.Join(s.root, k.Dir)
	if err := os.MkdirAll(dir, 0o777); err != nil { //nolint:gosec // web process must always be able to write
		return "", err
	}

	name := random.Token() + k.Suffix + "." + ext

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}

	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(filepath.Join(dir, name))

		return "", err
	}

	if err = dst.Close(); err != nil {
		return "", err
	}

	return name, nil
}

// Remove deletes a stored file. A missing file is not an error and other
// filesystem failures are logged and swallowed: asset cleanup is best
// effort and never fails the surrounding request.
func (s *Store) Remove(k Kind, name string) {
	if name == "" {
		return
	}

	p := s.Path(k, name)

	err := os.Remove(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", p).Msg("failed to remove asset file")
	}
}

// Exists reports whether a stored filename is present on disk.
func (s *Store) Exists(k Kind, name string) bool {
	if name == "" {
		return false
	}

	_, err := os.Stat(s.Path(k, name))

	return err == nil
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}

	return false
}
