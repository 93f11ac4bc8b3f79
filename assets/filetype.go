package assets

import (
	"fmt"
	"mime"
	"path"
	"sort"
	"strings"
)

// Logical folders accepted by Upload.
const (
	FolderModels = "models"
	FolderImages = "images"
	FolderVideos = "videos"
)

var allowedTypes = map[string][]string{
	FolderModels: {"model/gltf-binary", "model/gltf+json"},
	FolderImages: {"image/jpeg", "image/png", "image/gif", "image/webp"},
	FolderVideos: {"video/mp4", "video/webm"},
}

// Folders returns the upload folders in sorted order.
func Folders() []string {
	out := make([]string, 0, len(allowedTypes))
	for f := range allowedTypes {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// AllowedTypes returns the MIME types accepted for folder, or nil for an unknown folder.
func AllowedTypes(folder string) []string {
	types := allowedTypes[folder]
	if types == nil {
		return nil
	}
	return append([]string(nil), types...)
}

// ValidateFileType checks a declared content type against the folder allow-list.
func ValidateFileType(folder, contentType string) error {
	types, ok := allowedTypes[folder]
	if !ok {
		return fmt.Errorf("%w: unknown folder %q", ErrInvalidFileType, folder)
	}
	mt := normalizeContentType(contentType)
	for _, t := range types {
		if t == mt {
			return nil
		}
	}
	return fmt.Errorf("%w for %s folder: %q", ErrInvalidFileType, folder, contentType)
}

func normalizeContentType(ct string) string {
	ct = strings.TrimSpace(ct)
	if ct == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return mt
	}
	return strings.ToLower(ct)
}

// ObjectPath builds the storage key for an uploaded file, keeping only its base name.
func ObjectPath(folder, name string) (string, bool) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == ".." || base == "/" || base == "" {
		return "", false
	}
	return folder + "/" + base, true
}
