package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"quill/internal/config"
	"quill/internal/models"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultMediaDir         = "media"
	DefaultMaxUploadSizeMB  = 10
	postAttachmentSubdir    = "posts"
	maxAttachmentDimensions = 8192
)

type StoreAttachmentInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ImageService validates and stores post image attachments. Files land under
// MediaDir/posts/ with a random name; the returned path is relative to
// MediaDir and is what gets persisted on the post.
type ImageService struct {
	mediaDir           string
	maxUploadSizeBytes int64
}

// NewImageService returns a new ImageService.
func NewImageService(cfg *config.Config) *ImageService {
	mediaDir := DefaultMediaDir
	if cfg != nil && cfg.MediaDir != "" {
		mediaDir = cfg.MediaDir
	}
	return &ImageService{
		mediaDir:           mediaDir,
		maxUploadSizeBytes: DefaultMaxUploadSizeMB * 1024 * 1024,
	}
}

// Store validates the upload as a real image and writes it to disk. The
// content is decoded (header only) rather than trusting the extension or
// the client's content type.
func (s *ImageService) Store(in StoreAttachmentInput) (string, error) {
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detected := http.DetectContentType(in.Content)
	if !strings.HasPrefix(detected, "image/") {
		return "", models.NewValidationError("Upload a valid image. The file you uploaded was either not an image or a corrupted image")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewValidationError("Upload a valid image. The file you uploaded was either not an image or a corrupted image")
	}
	if !isAllowedImageFormat(format) {
		return "", models.NewValidationError("Unsupported image format")
	}
	if cfg.Width > maxAttachmentDimensions || cfg.Height > maxAttachmentDimensions {
		return "", models.NewValidationError("Image dimensions too large")
	}

	rel := filepath.ToSlash(filepath.Join(postAttachmentSubdir, uuid.New().String()+extensionFor(format)))
	abs := filepath.Join(s.mediaDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := os.WriteFile(abs, in.Content, 0o600); err != nil {
		return "", models.NewInternalError(err)
	}
	return rel, nil
}

// Resolve maps a stored relative path back to a file on disk, refusing
// anything that escapes the media directory.
func (s *ImageService) Resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", models.NewValidationError("Invalid media path")
	}
	abs := filepath.Join(s.mediaDir, clean)
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("Media", rel)
		}
		return "", models.NewInternalError(err)
	}
	return abs, nil
}

func isAllowedImageFormat(format string) bool {
	switch strings.ToLower(format) {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func extensionFor(format string) string {
	switch strings.ToLower(format) {
	case "jpeg":
		return ".jpg"
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	case "webp":
		return ".webp"
	default:
		return ".bin"
	}
}
