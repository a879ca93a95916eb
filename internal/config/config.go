package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Upload    UploadConfig    `yaml:"upload"`
	Share     ShareConfig     `yaml:"share"`
	Tracking  TrackingConfig  `yaml:"tracking"`
	Admin     AdminConfig     `yaml:"admin"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port int    `yaml:"port" validate:"gt=0,lte=65535"`
	Mode string `yaml:"mode" validate:"oneof=debug release test"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"oneof=postgres sqlite"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret" validate:"required"`
	ExpireHours int    `yaml:"expire_hours" validate:"gt=0"`
}

type StorageConfig struct {
	Driver     string      `yaml:"driver" validate:"oneof=local minio"`
	UploadPath string      `yaml:"upload_path" validate:"required"`
	MinIO      MinIOConfig `yaml:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type UploadConfig struct {
	MaxFileSize      int64    `yaml:"max_file_size" validate:"gt=0"`
	AllowedMimeTypes []string `yaml:"allowed_mime_types" validate:"min=1"`
	AllowedLogoTypes []string `yaml:"allowed_logo_types" validate:"min=1"`
}

type ShareConfig struct {
	SlugLength       int  `yaml:"slug_length" validate:"gte=4,lte=32"`
	AuthCookieHours  int  `yaml:"auth_cookie_hours" validate:"gt=0"`
	VisitedCookieMin int  `yaml:"visited_cookie_minutes" validate:"gt=0"`
	SecureCookies    bool `yaml:"secure_cookies"`
}

type TrackingConfig struct {
	FingerprintSalt string `yaml:"fingerprint_salt" validate:"required"`
}

type AdminConfig struct {
	Email    string `yaml:"email" validate:"omitempty,email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type CORSConfig struct {
	AllowOrigins []string `yaml:"allow_origins"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"gte=0"`
	Burst             int `yaml:"burst" validate:"gte=0"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxAge     int    `yaml:"max_age"`
	MaxBackups int    `yaml:"max_backups"`
}

// Load reads path (when present), applies environment overrides and fills
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = DefaultPath
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.overrideFromEnv()
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config: %s failed on '%s' (value: %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return fmt.Errorf("config: %w", err)
	}

	if c.Storage.Driver == "minio" && (c.Storage.MinIO.Endpoint == "" || c.Storage.MinIO.Bucket == "") {
		return fmt.Errorf("config: storage.minio.endpoint and storage.minio.bucket are required for the minio driver")
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		return fmt.Errorf("config: database.path is required for the sqlite driver")
	}

	return nil
}

func (c *Config) overrideFromEnv() {
	// Database
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		c.Database.URL = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Database.Port = port
		}
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.DBName = val
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		c.Database.Path = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.Server.Port = port
		}
	}
	if val := os.Getenv("GIN_MODE"); val != "" {
		c.Server.Mode = val
	}

	// Storage
	if val := os.Getenv("STORAGE_DRIVER"); val != "" {
		c.Storage.Driver = val
	}
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadPath = val
	}
	if val := os.Getenv("MINIO_ENDPOINT"); val != "" {
		c.Storage.MinIO.Endpoint = val
	}
	if val := os.Getenv("MINIO_ACCESS_KEY"); val != "" {
		c.Storage.MinIO.AccessKey = val
	}
	if val := os.Getenv("MINIO_SECRET_KEY"); val != "" {
		c.Storage.MinIO.SecretKey = val
	}
	if val := os.Getenv("MINIO_BUCKET"); val != "" {
		c.Storage.MinIO.Bucket = val
	}
	if val := os.Getenv("MAX_FILE_SIZE"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.Upload.MaxFileSize = size
		}
	}

	// Share / tracking
	if val := os.Getenv("SECURE_COOKIES"); val != "" {
		c.Share.SecureCookies = strings.EqualFold(val, "true") || val == "1"
	}
	if val := os.Getenv("FINGERPRINT_SALT"); val != "" {
		c.Tracking.FingerprintSalt = val
	}

	// Admin seed
	if val := os.Getenv("ADMIN_EMAIL"); val != "" {
		c.Admin.Email = val
	}
	if val := os.Getenv("ADMIN_PASSWORD"); val != "" {
		c.Admin.Password = val
	}

	if val := os.Getenv("CORS_ORIGINS"); val != "" {
		c.CORS.AllowOrigins = strings.Split(val, ",")
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.DBName == "" {
		c.Database.DBName = "deckshare"
	}

	if c.JWT.ExpireHours == 0 {
		c.JWT.ExpireHours = 24 * 30
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.UploadPath == "" {
		c.Storage.UploadPath = "./uploads"
	}

	if c.Upload.MaxFileSize == 0 {
		c.Upload.MaxFileSize = 2 << 30 // 2GB
	}
	if len(c.Upload.AllowedMimeTypes) == 0 {
		c.Upload.AllowedMimeTypes = []string{
			"video/mp4",
			"video/webm",
			"video/quicktime",
			"application/pdf",
			"image/jpeg",
			"image/png",
			"image/gif",
			"image/webp",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-excel",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"application/vnd.ms-powerpoint",
		}
	}
	if len(c.Upload.AllowedLogoTypes) == 0 {
		c.Upload.AllowedLogoTypes = []string{
			"image/png",
			"image/jpeg",
			"image/gif",
			"image/webp",
			"image/x-icon",
			"image/vnd.microsoft.icon",
		}
	}

	if c.Share.SlugLength == 0 {
		c.Share.SlugLength = 6
	}
	if c.Share.AuthCookieHours == 0 {
		c.Share.AuthCookieHours = 24 * 7
	}
	if c.Share.VisitedCookieMin == 0 {
		c.Share.VisitedCookieMin = 60
	}

	if c.Admin.Name == "" {
		c.Admin.Name = "Admin"
	}

	if len(c.CORS.AllowOrigins) == 0 {
		c.CORS.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	}

	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 300
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = c.RateLimit.RequestsPerMinute
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = "./logs/app.log"
	}
	if c.Log.MaxSize == 0 {
		c.Log.MaxSize = 100
	}
	if c.Log.MaxAge == 0 {
		c.Log.MaxAge = 30
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
}

func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.DBName, c.Database.SSLMode)
}

func (c *Config) IsAllowedMimeType(mimeType string) bool {
	return containsFold(c.Upload.AllowedMimeTypes, mimeType)
}

func (c *Config) IsAllowedLogoType(mimeType string) bool {
	return containsFold(c.Upload.AllowedLogoTypes, mimeType)
}

func (c *Config) AuthProofTTL() time.Duration {
	return time.Duration(c.Share.AuthCookieHours) * time.Hour
}

func (c *Config) VisitedProofTTL() time.Duration {
	return time.Duration(c.Share.VisitedCookieMin) * time.Minute
}

func containsFold(list []string, v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, item := range list {
		if v == strings.ToLower(item) {
			return true
		}
	}
	return false
}
