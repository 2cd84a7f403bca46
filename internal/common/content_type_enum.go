package common

import "strings"

// MediaFileType is the kind of file attached to a post.
type MediaFileType string

const (
	MediaFileTypeImage   MediaFileType = "image"
	MediaFileTypeUnknown MediaFileType = "unknown"
)

// raster formats a post image may use, with the extension it is stored under
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

func (mft MediaFileType) String() string {
	return string(mft)
}

// IsValid reports whether posts accept this kind of file.
func (mft MediaFileType) IsValid() bool {
	return mft == MediaFileTypeImage
}

// DetectFileType classifies a MIME type, ignoring case and parameters.
// SVG and other scriptable image/* types are unknown.
func DetectFileType(mimeType string) MediaFileType {
	if _, ok := imageExtensions[baseMIME(mimeType)]; ok {
		return MediaFileTypeImage
	}
	return MediaFileTypeUnknown
}

// ImageExtension returns the stored extension for an accepted image type, or "".
func ImageExtension(mimeType string) string {
	return imageExtensions[baseMIME(mimeType)]
}

func baseMIME(mimeType string) string {
	mt, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
