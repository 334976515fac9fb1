package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultMaxUploadBytes is the largest accepted upload (10MB).
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

// Upload is an image file handed to the application, either read from disk
// or sent inline by a client.
type Upload struct {
	// Name is the original file name. Only used to guess the MIME type.
	Name string

	// MIMEType is the declared content type. When empty it is derived from
	// the file extension or sniffed from the data.
	MIMEType string

	// Data holds the raw file bytes.
	Data []byte
}

// DecodedImage is a validated, decoded upload.
type DecodedImage struct {
	Image  image.Image
	Format string // "png", "jpeg" or "gif", as reported by the decoder
	Size   int64  // Size of the encoded upload in bytes
}

// ValidateUpload applies the cheap guard checks: the content type must be an
// image type and the file must not exceed maxBytes. A maxBytes of zero or
// less selects DefaultMaxUploadBytes.
func ValidateUpload(u Upload, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}

	if !strings.HasPrefix(detectMIMEType(u), "image/") {
		return &InvalidImageError{Reason: "File must be an image"}
	}

	if int64(len(u.Data)) > maxBytes {
		return &InvalidImageError{
			Reason: fmt.Sprintf("Image size must be less than %dMB", maxBytes/(1024*1024)),
		}
	}

	return nil
}

// DecodeUpload validates an upload and decodes it.
//
// Returns an *InvalidImageError (matching ErrInvalidImage) when the guard
// checks fail or the bytes are not a decodable PNG, JPEG or GIF image.
func DecodeUpload(u Upload, maxBytes int64) (*DecodedImage, error) {
	if err := ValidateUpload(u, maxBytes); err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(u.Data))
	if err != nil {
		return nil, &InvalidImageError{Reason: "Invalid image file", Err: err}
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &InvalidImageError{Reason: "Invalid image file"}
	}

	return &DecodedImage{Image: img, Format: format, Size: int64(len(u.Data))}, nil
}

// detectMIMEType returns the declared type, else the type implied by the
// file extension, else a sniffed type.
func detectMIMEType(u Upload) string {
	if t := strings.TrimSpace(u.MIMEType); t != "" {
		return strings.ToLower(t)
	}
	if ext := filepath.Ext(u.Name); ext != "" {
		if t := mime.TypeByExtension(strings.ToLower(ext)); t != "" {
			return t
		}
	}
	return http.DetectContentType(u.Data)
}

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// Images loaded through the cache go through the same validation as inline
// uploads, so a cached entry is always a valid image.
type ImageCache struct {
	mu       sync.RWMutex
	maxBytes int64
	images   map[string]*DecodedImage
}

// NewImageCache creates an empty cache that rejects files larger than
// maxBytes (zero selects DefaultMaxUploadBytes).
func NewImageCache(maxBytes int64) *ImageCache {
	return &ImageCache{
		maxBytes: maxBytes,
		images:   make(map[string]*DecodedImage),
	}
}

// Load retrieves an image from the cache or reads, validates and decodes it
// from disk.
//
// Read failures are reported as *InvalidImageError as well, because from
// the user's point of view the selected file could not be used.
func (c *ImageCache) Load(path string) (*DecodedImage, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InvalidImageError{Reason: "Failed to read image file", Err: err}
	}

	decoded, err := DecodeUpload(Upload{Name: filepath.Base(path), Data: data}, c.maxBytes)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = decoded
	c.mu.Unlock()

	return decoded, nil
}

// Evict removes a specific image from the cache by its path.
// After eviction, the next Load() call for this path will read from disk.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
