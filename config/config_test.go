package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, 60, c.AssetCacheTTLMinutes)
	assert.Equal(t, 2000, c.VaultDelayMillis)
	assert.Equal(t, []string{"product1", "product2", "product3", "product4", "product5"}, c.GalleryItems)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
}

func TestLoadFromGroupedAndFlatKeys(t *testing.T) {
	p := writeConfig(t, `{
		"AppPort": "9000",
		"storage": {"StorageEndpoint": "s3.local:9000", "StorageBucket": "crown", "StorageUseSSL": true},
		"assets": {"AssetCacheTTLMinutes": 5, "GalleryItems": ["a", "b"]},
		"gin": {"Mode": "debug"}
	}`)

	c, err := LoadFrom(p)
	require.NoError(t, err)
	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "s3.local:9000", c.StorageEndpoint)
	assert.Equal(t, "crown", c.StorageBucket)
	assert.True(t, c.StorageUseSSL)
	assert.Equal(t, 5, c.AssetCacheTTLMinutes)
	assert.Equal(t, []string{"a", "b"}, c.GalleryItems)
	assert.Equal(t, "debug", c.GinMode)
}

func TestEnvOverridesFile(t *testing.T) {
	p := writeConfig(t, `{"app": {"AppPort": "9000"}}`)
	t.Setenv("APP_PORT", "7000")
	t.Setenv("GALLERY_ITEMS", " x , ,y ")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("VAULT_DELAY_MS", "not-a-number")

	c, err := LoadFrom(p)
	require.NoError(t, err)
	assert.Equal(t, "7000", c.AppPort)
	assert.Equal(t, []string{"x", "y"}, c.GalleryItems)
	assert.True(t, c.StorageUseSSL)
	assert.Equal(t, 2000, c.VaultDelayMillis)
}

func TestLoadFromMalformedJSON(t *testing.T) {
	p := writeConfig(t, `{"AppPort": `)
	_, err := LoadFrom(p)
	assert.Error(t, err)
}

func TestValidateReportsEveryMissingValue(t *testing.T) {
	err := AppConfig{StorageBucket: "crown"}.Validate()
	require.Error(t, err)
	for _, key := range []string{"JWT_SECRET", "STORAGE_ENDPOINT", "STORAGE_ACCESS_KEY", "STORAGE_SECRET_KEY"} {
		assert.Contains(t, err.Error(), key)
	}
	assert.NotContains(t, err.Error(), "STORAGE_BUCKET")

	ok := AppConfig{
		JWTSecret:        "s",
		StorageEndpoint:  "e",
		StorageAccessKey: "a",
		StorageSecretKey: "k",
		StorageBucket:    "b",
	}
	assert.NoError(t, ok.Validate())
}

func TestValidateURLExpiryMustOutliveCacheTTL(t *testing.T) {
	base := AppConfig{
		JWTSecret:        "s",
		StorageEndpoint:  "e",
		StorageAccessKey: "a",
		StorageSecretKey: "k",
		StorageBucket:    "b",
	}

	c := base
	c.StorageURLExpiryMinutes = 30
	c.AssetCacheTTLMinutes = 60
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_URL_EXPIRY_MINUTES")

	c.StorageURLExpiryMinutes = 60
	assert.Error(t, c.Validate())

	// unset expiry falls back to two hours
	c = base
	c.AssetCacheTTLMinutes = 180
	assert.Error(t, c.Validate())

	c.StorageURLExpiryMinutes = 240
	assert.NoError(t, c.Validate())
}
