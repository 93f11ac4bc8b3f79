package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds configuration values for the service.
// Secrets have no defaults and must come from config/config.json or the environment.
type AppConfig struct {
	AppPort            string
	ProjectID          string
	JWTSecret          string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Redis for caching and cooldowns
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Object storage
	StorageEndpoint         string
	StorageAccessKey        string
	StorageSecretKey        string
	StorageBucket           string
	StorageRegion           string
	StorageUseSSL           bool
	StorageURLExpiryMinutes int
	// Asset resolver
	AssetCacheTTLMinutes      int
	AssetSweepIntervalMinutes int
	UploadMaxSizeMB           int
	GalleryItems              []string
	CollectionCacheTTLSeconds int
	// Vault verification
	VaultDelayMillis       int
	VaultPassTTLMinutes    int
	VaultSessionTTLMinutes int
	// Contact form
	ContactCaptchaEnabled  bool
	ContactCooldownSeconds int
	// Messaging
	NATSURL string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot
// and exits the process when a required value is missing.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	c, err := LoadFrom(filepath.Join("config", "config.json"))
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := c.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Set replaces the cached configuration. Intended for tests and tools.
func Set(c AppConfig) {
	cfg = c
	loaded = true
}

// LoadFrom builds a configuration with precedence: JSON file -> defaults -> environment.
// A missing file is ignored; malformed JSON is an error.
func LoadFrom(path string) (AppConfig, error) {
	var c AppConfig
	if err := loadJSONConfig(path, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(&c)
	applyEnvOverrides(&c)
	return c, nil
}

const (
	defaultURLExpiryMinutes     = 120
	defaultAssetCacheTTLMinutes = 60
)

// Validate reports every missing required value and inconsistent lifetimes.
func (c AppConfig) Validate() error {
	var errs []error
	required := []struct {
		key, val string
	}{
		{"JWT_SECRET", c.JWTSecret},
		{"STORAGE_ENDPOINT", c.StorageEndpoint},
		{"STORAGE_ACCESS_KEY", c.StorageAccessKey},
		{"STORAGE_SECRET_KEY", c.StorageSecretKey},
		{"STORAGE_BUCKET", c.StorageBucket},
	}
	for _, r := range required {
		if strings.TrimSpace(r.val) == "" {
			errs = append(errs, fmt.Errorf("%s must be set", r.key))
		}
	}
	// cached URLs must outlive the cache entry that hands them out
	expiry, ttl := c.StorageURLExpiryMinutes, c.AssetCacheTTLMinutes
	if expiry <= 0 {
		expiry = defaultURLExpiryMinutes
	}
	if ttl <= 0 {
		ttl = defaultAssetCacheTTLMinutes
	}
	if expiry <= ttl {
		errs = append(errs, fmt.Errorf("STORAGE_URL_EXPIRY_MINUTES (%d) must exceed ASSET_CACHE_TTL_MINUTES (%d)", expiry, ttl))
	}
	return errors.Join(errs...)
}

// loadJSONConfig reads a JSON file into out if present. Both grouped
// sections ("app", "storage", ...) and flat keys are accepted.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	sections := []string{"app", "gin", "database", "redis", "storage", "assets", "vault", "contact", "nats", "log"}
	merged := map[string]any{}
	for k, v := range raw {
		if _, isSection := v.(map[string]any); !isSection {
			merged[k] = v
		}
	}
	for _, name := range sections {
		if sec, ok := raw[name].(map[string]any); ok {
			for k, v := range sec {
				merged[k] = v
			}
		}
	}

	setString(merged, "AppPort", &out.AppPort)
	setString(merged, "ProjectID", &out.ProjectID)
	setString(merged, "JWTSecret", &out.JWTSecret)
	setInt(merged, "RateLimitPerMinute", &out.RateLimitPerMinute)
	setStrings(merged, "AllowedOrigins", &out.AllowedOrigins)

	setString(merged, "Mode", &out.GinMode)
	setString(merged, "GinMode", &out.GinMode)
	setString(merged, "GinPath", &out.GinPath)

	setString(merged, "DatabaseURI", &out.DatabaseURI)
	setString(merged, "DBHost", &out.DBHost)
	setString(merged, "DBPort", &out.DBPort)
	setString(merged, "DBUser", &out.DBUser)
	setString(merged, "DBPassword", &out.DBPassword)
	setString(merged, "DBName", &out.DBName)

	setString(merged, "RedisHost", &out.RedisHost)
	setInt(merged, "RedisPort", &out.RedisPort)
	setInt(merged, "RedisDB", &out.RedisDB)
	setString(merged, "RedisPassword", &out.RedisPassword)

	setString(merged, "StorageEndpoint", &out.StorageEndpoint)
	setString(merged, "StorageAccessKey", &out.StorageAccessKey)
	setString(merged, "StorageSecretKey", &out.StorageSecretKey)
	setString(merged, "StorageBucket", &out.StorageBucket)
	setString(merged, "StorageRegion", &out.StorageRegion)
	setBool(merged, "StorageUseSSL", &out.StorageUseSSL)
	setInt(merged, "StorageURLExpiryMinutes", &out.StorageURLExpiryMinutes)

	setInt(merged, "AssetCacheTTLMinutes", &out.AssetCacheTTLMinutes)
	setInt(merged, "AssetSweepIntervalMinutes", &out.AssetSweepIntervalMinutes)
	setInt(merged, "UploadMaxSizeMB", &out.UploadMaxSizeMB)
	setStrings(merged, "GalleryItems", &out.GalleryItems)
	setInt(merged, "CollectionCacheTTLSeconds", &out.CollectionCacheTTLSeconds)

	setInt(merged, "VaultDelayMillis", &out.VaultDelayMillis)
	setInt(merged, "VaultPassTTLMinutes", &out.VaultPassTTLMinutes)
	setInt(merged, "VaultSessionTTLMinutes", &out.VaultSessionTTLMinutes)

	setBool(merged, "ContactCaptchaEnabled", &out.ContactCaptchaEnabled)
	setInt(merged, "ContactCooldownSeconds", &out.ContactCooldownSeconds)

	setString(merged, "NATSURL", &out.NATSURL)

	setString(merged, "LogLevel", &out.LogLevel)
	setString(merged, "LogPath", &out.LogPath)
	setInt(merged, "LogMaxSizeMB", &out.LogMaxSizeMB)
	setInt(merged, "LogMaxBackups", &out.LogMaxBackups)
	setInt(merged, "LogMaxAgeDays", &out.LogMaxAgeDays)
	setBool(merged, "LogCompress", &out.LogCompress)
	return nil
}

func setString(m map[string]any, key string, dst *string) {
	if s, ok := m[key].(string); ok && s != "" {
		*dst = s
	}
}

func setInt(m map[string]any, key string, dst *int) {
	switch t := m[key].(type) {
	case float64:
		*dst = int(t)
	case string:
		if i, err := strconv.Atoi(t); err == nil {
			*dst = i
		}
	}
}

func setBool(m map[string]any, key string, dst *bool) {
	if b, ok := m[key].(bool); ok {
		*dst = b
	}
}

func setStrings(m map[string]any, key string, dst *[]string) {
	arr, ok := m[key].([]any)
	if !ok {
		return
	}
	res := make([]string, 0, len(arr))
	for _, it := range arr {
		if s, ok := it.(string); ok {
			res = append(res, s)
		}
	}
	if len(res) > 0 {
		*dst = res
	}
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.ProjectID == "" {
		c.ProjectID = "crownmania"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "crownmania"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.StorageURLExpiryMinutes == 0 {
		c.StorageURLExpiryMinutes = defaultURLExpiryMinutes
	}
	if c.AssetCacheTTLMinutes == 0 {
		c.AssetCacheTTLMinutes = defaultAssetCacheTTLMinutes
	}
	if c.AssetSweepIntervalMinutes == 0 {
		c.AssetSweepIntervalMinutes = 10
	}
	if c.UploadMaxSizeMB == 0 {
		c.UploadMaxSizeMB = 50
	}
	if len(c.GalleryItems) == 0 {
		c.GalleryItems = []string{"product1", "product2", "product3", "product4", "product5"}
	}
	if c.CollectionCacheTTLSeconds == 0 {
		c.CollectionCacheTTLSeconds = 60
	}
	if c.VaultDelayMillis == 0 {
		c.VaultDelayMillis = 2000
	}
	if c.VaultPassTTLMinutes == 0 {
		c.VaultPassTTLMinutes = 30
	}
	if c.VaultSessionTTLMinutes == 0 {
		c.VaultSessionTTLMinutes = 15
	}
	if c.ContactCooldownSeconds == 0 {
		c.ContactCooldownSeconds = 60
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides overrides values from environment variables when set.
func applyEnvOverrides(c *AppConfig) {
	c.AppPort = getEnv("APP_PORT", c.AppPort)
	c.ProjectID = getEnv("PROJECT_ID", c.ProjectID)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.AllowedOrigins = readListEnv("ALLOWED_ORIGINS", c.AllowedOrigins)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.GinPath = getEnv("GIN_LOG_PATH", c.GinPath)

	c.DatabaseURI = getEnv("DATABASE_URI", c.DatabaseURI)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)

	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPort = getEnvInt("REDIS_PORT", c.RedisPort)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)

	c.StorageEndpoint = getEnv("STORAGE_ENDPOINT", c.StorageEndpoint)
	c.StorageAccessKey = getEnv("STORAGE_ACCESS_KEY", c.StorageAccessKey)
	c.StorageSecretKey = getEnv("STORAGE_SECRET_KEY", c.StorageSecretKey)
	c.StorageBucket = getEnv("STORAGE_BUCKET", c.StorageBucket)
	c.StorageRegion = getEnv("STORAGE_REGION", c.StorageRegion)
	c.StorageUseSSL = getEnvBool("STORAGE_USE_SSL", c.StorageUseSSL)
	c.StorageURLExpiryMinutes = getEnvInt("STORAGE_URL_EXPIRY_MINUTES", c.StorageURLExpiryMinutes)

	c.AssetCacheTTLMinutes = getEnvInt("ASSET_CACHE_TTL_MINUTES", c.AssetCacheTTLMinutes)
	c.AssetSweepIntervalMinutes = getEnvInt("ASSET_SWEEP_INTERVAL_MINUTES", c.AssetSweepIntervalMinutes)
	c.UploadMaxSizeMB = getEnvInt("UPLOAD_MAX_SIZE_MB", c.UploadMaxSizeMB)
	c.GalleryItems = readListEnv("GALLERY_ITEMS", c.GalleryItems)
	c.CollectionCacheTTLSeconds = getEnvInt("COLLECTION_CACHE_TTL_SECONDS", c.CollectionCacheTTLSeconds)

	c.VaultDelayMillis = getEnvInt("VAULT_DELAY_MS", c.VaultDelayMillis)
	c.VaultPassTTLMinutes = getEnvInt("VAULT_PASS_TTL_MINUTES", c.VaultPassTTLMinutes)
	c.VaultSessionTTLMinutes = getEnvInt("VAULT_SESSION_TTL_MINUTES", c.VaultSessionTTLMinutes)

	c.ContactCaptchaEnabled = getEnvBool("CONTACT_CAPTCHA_ENABLED", c.ContactCaptchaEnabled)
	c.ContactCooldownSeconds = getEnvInt("CONTACT_COOLDOWN_SECONDS", c.ContactCooldownSeconds)

	c.NATSURL = getEnv("NATS_URL", c.NATSURL)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPath = getEnv("LOG_PATH", c.LogPath)
	c.LogMaxSizeMB = getEnvInt("LOG_MAX_SIZE_MB", c.LogMaxSizeMB)
	c.LogMaxBackups = getEnvInt("LOG_MAX_BACKUPS", c.LogMaxBackups)
	c.LogMaxAgeDays = getEnvInt("LOG_MAX_AGE_DAYS", c.LogMaxAgeDays)
	c.LogCompress = getEnvBool("LOG_COMPRESS", c.LogCompress)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
		log.Printf("ignoring non-numeric %s=%q", key, val)
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
