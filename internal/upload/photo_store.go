package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// URLPrefix is the path prefix under which stored photos are served and
// which the stored reference starts with.
const URLPrefix = "uploads"

// ErrNotImage is returned for files that are not jpeg, png or gif images.
var ErrNotImage = errors.New("only images are allowed")

// TooLargeError is returned for files above the size ceiling.
type TooLargeError struct {
	Size, Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("image is %s, limit is %s",
		humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(e.Limit)))
}

// allowedTypes maps each accepted extension to the content type the file
// must sniff as.
var allowedTypes = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// PhotoStore keeps uploaded registration photos on the local filesystem.
type PhotoStore struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewPhotoStore(dir string, maxBytes int64) *PhotoStore {
	return &PhotoStore{dir: dir, maxBytes: maxBytes, now: time.Now}
}

// Dir is the directory photos are written to.
func (s *PhotoStore) Dir() string { return s.dir }

// MaxBytes is the largest accepted upload.
func (s *PhotoStore) MaxBytes() int64 { return s.maxBytes }

// Validate checks extension, size and that the sniffed content type
// matches the extension, without writing anything.
func (s *PhotoStore) Validate(fh *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	want, ok := allowedTypes[ext]
	if !ok {
		return ErrNotImage
	}
	if fh.Size > s.maxBytes {
		return &TooLargeError{Size: fh.Size, Limit: s.maxBytes}
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return errors.Wrap(err, "detect upload type")
	}
	if !mt.Is(want) {
		return ErrNotImage
	}
	return nil
}

// Save validates fh and writes it under a unique name built from the
// current time and a random suffix, keeping the original extension.
// It returns the reference to store on the record, e.g. "uploads/1700000000000-ab12cd34ef56.png".
func (s *PhotoStore) Save(fh *multipart.FileHeader) (string, error) {
	if err := s.Validate(fh); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create upload dir")
	}

	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer src.Close()

	name := s.fileName(fh.Filename)
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create photo file")
	}
	if _, err := io.Copy(dst, io.LimitReader(src, s.maxBytes)); err != nil {
		dst.Close()
		_ = os.Remove(dst.Name())
		return "", errors.Wrap(err, "write photo file")
	}
	if err := dst.Close(); err != nil {
		return "", errors.Wrap(err, "close photo file")
	}
	return path.Join(URLPrefix, name), nil
}

// Remove deletes a photo previously returned by Save. Missing files are ignored.
func (s *PhotoStore) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	name := path.Base(ref)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *PhotoStore) fileName(original string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), suffix, strings.ToLower(filepath.Ext(original)))
}
