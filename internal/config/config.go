package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// MongoDB Configuration, used by the gridfs media backend
	MongoDB MongoDBConfig `json:"mongodb"`

	Media MediaConfig `json:"media"`

	Auth AuthConfig `json:"auth"`

	Cache CacheConfig `json:"cache"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	GRPCPort     string `json:"grpc_port"` // empty disables the health server
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	Environment  string `json:"environment"` // development, staging, production
	TemplatesDir string `json:"templates_dir"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver       string `json:"driver"` // mysql, postgres, sqlite
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	SSLMode      string `json:"ssl_mode"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`

	// Explicit connection string; built from the values above when empty
	URL string `json:"-"`
}

type MongoDBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	Bucket   string `json:"bucket"`
}

// MediaConfig selects where post images are kept
type MediaConfig struct {
	Backend     string `json:"backend"` // disk, gridfs
	Root        string `json:"root"`
	MaxUploadMB int    `json:"max_upload_mb"`
}

type AuthConfig struct {
	JWTSecret  string        `json:"-"`
	AccessTTL  time.Duration `json:"access_ttl"`
	RefreshTTL time.Duration `json:"refresh_ttl"`
	SessionTTL time.Duration `json:"session_ttl"`
	CookieName string        `json:"cookie_name"`
}

// CacheConfig controls the rendered page cache
type CacheConfig struct {
	TTL  time.Duration `json:"ttl"`
	Size int           `json:"size"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, text
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8000"),
			Host:         getEnv("SERVER_HOST", ""),
			GRPCPort:     getEnv("GRPC_PORT", ""),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			Environment:  getEnv("ENVIRONMENT", "development"),
			TemplatesDir: getEnv("TEMPLATES_DIR", ""),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "sqlite"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "3306"),
			Username:     getEnv("DB_USER", "yatube"),
			Password:     getEnv("DB_PASSWORD", ""),
			DatabaseName: getEnv("DB_NAME", "yatube"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			URL:          getEnv("DATABASE_URL", ""),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnv("MONGO_HOST", "localhost"),
			Port:     getEnv("MONGO_PORT", "27017"),
			Username: getEnv("MONGO_USERNAME", ""),
			Password: getEnv("MONGO_PASSWORD", ""),
			Database: getEnv("MONGO_DATABASE", "yatube"),
			Bucket:   getEnv("MONGO_BUCKET", "post_images"),
		},
		Media: MediaConfig{
			Backend:     getEnv("MEDIA_BACKEND", "disk"),
			Root:        getEnv("MEDIA_ROOT", "media"),
			MaxUploadMB: getEnvAsInt("MEDIA_MAX_UPLOAD_MB", 10),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", "change-me"),
			AccessTTL:  time.Duration(getEnvAsInt("JWT_ACCESS_TTL_MINUTES", 5)) * time.Minute,
			RefreshTTL: time.Duration(getEnvAsInt("JWT_REFRESH_TTL_HOURS", 24)) * time.Hour,
			SessionTTL: time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24*14)) * time.Hour,
			CookieName: getEnv("SESSION_COOKIE_NAME", "sessionid"),
		},
		Cache: CacheConfig{
			TTL:  time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 20)) * time.Second,
			Size: getEnvAsInt("CACHE_SIZE", 512),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}
}

// DSN returns the connection string for the configured driver.
func (cfg *Config) DSN() string {
	if cfg.Database.URL != "" {
		return cfg.Database.URL
	}

	switch cfg.Database.Driver {
	case "sqlite":
		return cfg.Database.DatabaseName + ".sqlite3"
	case "postgres":
		port := cfg.Database.Port
		if port == "" || port == "3306" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host,
			port,
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.DatabaseName,
			cfg.Database.SSLMode,
		)
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username == "" {
		return fmt.Sprintf("mongodb://%s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
		cfg.MongoDB.Username,
		cfg.MongoDB.Password,
		cfg.MongoDB.Host,
		cfg.MongoDB.Port,
		cfg.MongoDB.Database,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
