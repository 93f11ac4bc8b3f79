package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFileType(t *testing.T) {
	tests := []struct {
		folder      string
		contentType string
		ok          bool
	}{
		{FolderModels, "model/gltf-binary", true},
		{FolderModels, "model/gltf+json", true},
		{FolderModels, "image/png", false},
		{FolderImages, "image/webp", true},
		{FolderImages, "IMAGE/JPEG", true},
		{FolderImages, "image/png; charset=binary", true},
		{FolderImages, "video/mp4", false},
		{FolderImages, "", false},
		{FolderVideos, "video/webm", true},
		{FolderVideos, "video/quicktime", false},
		{"documents", "application/pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.folder+"/"+tt.contentType, func(t *testing.T) {
			err := ValidateFileType(tt.folder, tt.contentType)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidFileType)
			}
		})
	}
}

func TestObjectPathKeepsBaseName(t *testing.T) {
	p, ok := ObjectPath(FolderImages, "product1.webp")
	assert.True(t, ok)
	assert.Equal(t, "images/product1.webp", p)

	p, ok = ObjectPath(FolderImages, `C:\Users\me\product2.png`)
	assert.True(t, ok)
	assert.Equal(t, "images/product2.png", p)

	_, ok = ObjectPath(FolderImages, "  ")
	assert.False(t, ok)

	for _, name := range []string{"..", "../", `..\`, "."} {
		_, ok = ObjectPath(FolderImages, name)
		assert.False(t, ok, name)
	}
}

func TestFoldersSorted(t *testing.T) {
	assert.Equal(t, []string{"images", "models", "videos"}, Folders())
	assert.Nil(t, AllowedTypes("documents"))
}
