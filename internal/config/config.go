// Package config provides configuration management for the lifelog server.
// It handles loading and parsing YAML configuration files and provides
// structured access to application settings including the listen address,
// MongoDB connection, blob storage backend and log file location.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Host is the address the HTTP server binds to. Empty means all interfaces.
	Host string `yaml:"host" json:"host"`

	// Port is the TCP port the HTTP server listens on.
	Port int `yaml:"port" json:"port"`

	// Debug enables Gin debug mode and debug-level logging.
	Debug bool `yaml:"debug" json:"debug"`

	// Mongo holds the document store connection settings.
	Mongo MongoConfig `yaml:"mongo" json:"mongo"`

	// Blob selects and configures the image blob storage backend.
	Blob BlobConfig `yaml:"blob" json:"blob"`

	// Log configures the operational log file that GET /logs reads back.
	Log LogConfig `yaml:"log" json:"log"`

	// CORS lists allowed origins. Empty means allow all origins.
	CORS CORSConfig `yaml:"cors" json:"cors"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	// URI is the MongoDB connection string. Empty selects the in-memory
	// store, which keeps nothing across restarts.
	URI string `yaml:"uri" json:"uri"`

	// Database is the database name holding the events collection.
	Database string `yaml:"database" json:"database"`

	// Collection is the collection name for event documents.
	Collection string `yaml:"collection" json:"collection"`
}

// BlobConfig selects the blob storage backend for uploaded images.
type BlobConfig struct {
	// Backend is one of "gridfs", "minio" or "memory". Default is "gridfs"
	// when a Mongo URI is configured, "memory" otherwise.
	Backend string `yaml:"backend" json:"backend"`

	// Minio configures the S3-compatible backend, used when Backend is "minio".
	Minio MinioConfig `yaml:"minio" json:"minio"`
}

// MinioConfig holds S3-compatible object storage settings.
type MinioConfig struct {
	// Endpoint is the host:port of the object storage service.
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// AccessKey is the access key id.
	AccessKey string `yaml:"access-key" json:"access-key"`

	// SecretKey is the secret access key.
	SecretKey string `yaml:"secret-key" json:"secret-key"`

	// Bucket is the bucket holding uploaded images.
	Bucket string `yaml:"bucket" json:"bucket"`

	// UseSSL enables TLS for the object storage connection.
	UseSSL bool `yaml:"use-ssl" json:"use-ssl"`
}

// LogConfig holds operational log file settings.
type LogConfig struct {
	// File is the path of the log file. The /logs endpoint tails this file.
	File string `yaml:"file" json:"file"`

	// Level is the minimum log level: debug, info, warn or error.
	Level string `yaml:"level" json:"level"`

	// MaxSizeMB is the size in megabytes at which the log file is rotated.
	MaxSizeMB int `yaml:"max-size-mb" json:"max-size-mb"`

	// MaxBackups is the number of rotated log files to retain.
	MaxBackups int `yaml:"max-backups" json:"max-backups"`
}

// CORSConfig groups cross-origin request settings.
type CORSConfig struct {
	// AllowOrigins lists origins allowed to call the API. Empty allows all.
	AllowOrigins []string `yaml:"allow-origins" json:"allow-origins"`
}

// Default values applied when the config file omits a setting.
const (
	DefaultPort          = 5000
	DefaultDatabase      = "life_events_db"
	DefaultCollection    = "events"
	DefaultLogFile       = "app.log"
	DefaultLogLevel      = "info"
	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 3
)

// LoadConfig reads the YAML configuration file at path, applies environment
// variable overrides and fills in defaults. A missing file is not an error;
// the returned config then carries only env values and defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnvOverrides lets LIFELOG_* environment variables take precedence over
// file values, so containerized deployments need no config file at all.
func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("LIFELOG_HOST")); v != "" {
		c.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("LIFELOG_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Port = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("LIFELOG_MONGO_URI")); v != "" {
		c.Mongo.URI = v
	}
	if v := strings.TrimSpace(os.Getenv("LIFELOG_MONGO_DATABASE")); v != "" {
		c.Mongo.Database = v
	}
	if v := strings.TrimSpace(os.Getenv("LIFELOG_BLOB_BACKEND")); v != "" {
		c.Blob.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("LIFELOG_LOG_FILE")); v != "" {
		c.Log.File = v
	}
	if v := strings.TrimSpace(os.Getenv("LIFELOG_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("LIFELOG_DEBUG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = DefaultPort
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = DefaultDatabase
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = DefaultCollection
	}
	if c.Blob.Backend == "" {
		if c.Mongo.URI != "" {
			c.Blob.Backend = "gridfs"
		} else {
			c.Blob.Backend = "memory"
		}
	}
	if c.Log.File == "" {
		c.Log.File = DefaultLogFile
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = DefaultLogMaxBackups
	}
}

// Addr returns the host:port listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
