package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaFileType_IsValid(t *testing.T) {
	assert.Equal(t, "image", MediaFileTypeImage.String())
	assert.True(t, MediaFileTypeImage.IsValid())
	assert.False(t, MediaFileTypeUnknown.IsValid())
	assert.False(t, MediaFileType("video").IsValid())
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     MediaFileType
		ext      string
	}{
		{"image/jpeg", MediaFileTypeImage, ".jpg"},
		{"IMAGE/PNG", MediaFileTypeImage, ".png"},
		{"image/gif", MediaFileTypeImage, ".gif"},
		{"image/webp; q=1", MediaFileTypeImage, ".webp"},
		{" image/bmp ", MediaFileTypeImage, ".bmp"},
		{"image/svg+xml", MediaFileTypeUnknown, ""},
		{"video/mp4", MediaFileTypeUnknown, ""},
		{"application/pdf", MediaFileTypeUnknown, ""},
		{"text/plain; charset=utf-8", MediaFileTypeUnknown, ""},
		{"", MediaFileTypeUnknown, ""},
	}

	for _, tc := range tests {
		t.Run(tc.mimeType, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectFileType(tc.mimeType))
			assert.Equal(t, tc.ext, ImageExtension(tc.mimeType))
		})
	}
}
