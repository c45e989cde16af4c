package util

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Media folders under MEDIA_ROOT.
const (
	MediaCustomerAvatars = "avatars/customers"
	MediaSupplierAvatars = "avatars/suppliers"
	MediaPets            = "pets"
	MediaServices        = "services"
)

// MaxImageSize caps a decoded upload.
const MaxImageSize = 5 << 20

var (
	ErrImageEncoding = errors.New("image must be base64 encoded")
	ErrImageTooLarge = fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	ErrImageType     = errors.New("image must be png, jpeg, gif or webp")
)

var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaStore writes uploaded images below Root and builds their public URLs.
type MediaStore struct {
	Root string
	URL  string
}

// NewMediaStore returns a store rooted at root, served under url.
func NewMediaStore(root, url string) *MediaStore {
	if url == "" {
		url = "/media/"
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return &MediaStore{Root: root, URL: url}
}

// DecodeImage accepts "data:<mime>;base64,<payload>" or bare base64 and
// returns the bytes with the sniffed file extension.
func DecodeImage(encoded string) ([]byte, string, error) {
	payload := strings.TrimSpace(encoded)
	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 || !strings.Contains(payload[:comma], ";base64") {
			return nil, "", ErrImageEncoding
		}
		payload = payload[comma+1:]
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+3 {
		return nil, "", ErrImageTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, "", ErrImageEncoding
		}
	}
	if len(data) == 0 {
		return nil, "", ErrImageEncoding
	}
	if len(data) > MaxImageSize {
		return nil, "", ErrImageTooLarge
	}
	mime := mimetype.Detect(data)
	for m := mime; m != nil; m = m.Parent() {
		if ext, ok := allowedImageTypes[m.String()]; ok {
			return data, ext, nil
		}
	}
	return nil, "", ErrImageType
}

// SaveImage decodes encoded and writes it to Root/folder/<uuid>.<ext>.
// It returns the path relative to Root using forward slashes.
func (s *MediaStore) SaveImage(folder, encoded string) (string, error) {
	data, ext, err := DecodeImage(encoded)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(s.Root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	return path.Join(folder, name), nil
}

// Remove deletes a previously saved image. Missing files are ignored.
func (s *MediaStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	clean := path.Clean("/" + rel)[1:]
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// PublicURL maps a stored relative path to its URL.
func (s *MediaStore) PublicURL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.URL + strings.TrimPrefix(rel, "/")
}
