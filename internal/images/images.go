// package images handles local image intake: media type detection, size
// limits, dimension extraction, and the cached preview data URL.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/shared"
)

// DefaultPreviewMaxPx bounds the longest edge of the preview thumbnail.
const DefaultPreviewMaxPx = 480

// DetectImageType returns the media type for a file, preferring the
// extension's registered type and falling back to content sniffing.
func DetectImageType(filename string, data []byte) string {
	if ext := filepath.Ext(filename); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	return http.DetectContentType(data)
}

// DataURL encodes data as a base64 data URL with the given media type.
func DataURL(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

// ReadImage loads the file at path into a [models.PendingImage].
//
// Non-image media types are rejected before any decode attempt, matching
// the backend's check on the declared type. maxBytes <= 0 disables the
// size cap; previewMaxPx <= 0 uses [DefaultPreviewMaxPx].
func ReadImage(path string, maxBytes int64, previewMaxPx int) (*models.PendingImage, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrFileRead, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidInput, path)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", shared.ErrFileTooLarge, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrFileRead, path, err)
	}

	contentType := DetectImageType(path, data)
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, fmt.Errorf("%w: %s detected as %s", shared.ErrInvalidImageType, path, contentType)
	}

	pending := &models.PendingImage{
		Path:        path,
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
		Data:        data,
	}

	// Dimensions and thumbnail are best effort: an undecodable but declared
	// image still uploads, with the raw bytes as preview.
	if img, err := imaging.Decode(bytes.NewReader(data)); err == nil {
		bounds := img.Bounds()
		pending.Width = bounds.Dx()
		pending.Height = bounds.Dy()
		pending.PreviewDataURL = previewDataURL(img, previewMaxPx)
	}
	if pending.PreviewDataURL == "" {
		pending.PreviewDataURL = DataURL(contentType, data)
	}

	return pending, nil
}

// previewDataURL renders a bounded JPEG thumbnail of img as a data URL.
func previewDataURL(img image.Image, maxPx int) string {
	if maxPx <= 0 {
		maxPx = DefaultPreviewMaxPx
	}

	thumb := imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return ""
	}
	return DataURL("image/jpeg", buf.Bytes())
}

// ListImages returns the image files directly inside dir, sorted by name.
// Used by batch submission and the TUI file picker.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrFileRead, dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	return paths, nil
}
