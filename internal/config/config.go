package config

import (
	"os"
	"strconv"
)

// Metadata backend names accepted in METADATA_BACKEND.
const (
	MetadataPostgres = "postgres"
	MetadataDynamo   = "dynamo"
	MetadataMemory   = "memory"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	StorageMinIO  = "minio"
	StorageS3     = "s3"
	StorageFS     = "fs"
	StorageMemory = "memory"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// Startup-only connect retry loop; in-request failures are never retried.
	ConnectAttempts    int
	ConnectIntervalSec int
}

// MinIOConfig holds object storage settings for the MinIO client.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AWSConfig holds settings shared by the aws-sdk-go-v2 backends
// (S3 blob storage and the DynamoDB document table). Endpoint is optional and
// points at an S3/DynamoDB-compatible service such as LocalStack.
type AWSConfig struct {
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	DynamoTable  string
	UsePathStyle bool
}

// FSConfig holds settings for the local filesystem blob store.
// When Compress is enabled blobs are zstd-compressed at rest; toggling it on an
// existing storage root is not supported.
type FSConfig struct {
	Root     string
	Compress bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost         string
	Port            string
	MetadataBackend string
	StorageBackend  string
	Database        DatabaseConfig
	MinIO           MinIOConfig
	AWS             AWSConfig
	FS              FSConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the .env file.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:         getEnv("APP_HOST", "localhost:8080"),
		Port:            getEnv("PORT", "8080"),
		MetadataBackend: getEnv("METADATA_BACKEND", MetadataPostgres),
		StorageBackend:  getEnv("STORAGE_BACKEND", StorageFS),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			ConnectAttempts:    getEnvInt("DB_CONNECT_ATTEMPTS", 12),
			ConnectIntervalSec: getEnvInt("DB_CONNECT_INTERVAL_SEC", 5),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		AWS: AWSConfig{
			Region:       getEnv("AWS_REGION", "us-east-1"),
			Endpoint:     getEnv("AWS_ENDPOINT_URL", ""),
			AccessKey:    getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Bucket:       getEnv("AWS_S3_BUCKET", ""),
			DynamoTable:  getEnv("AWS_DYNAMO_TABLE", "files"),
			UsePathStyle: getEnvBool("AWS_S3_PATH_STYLE", false),
		},
		FS: FSConfig{
			Root:     getEnv("FS_STORAGE_ROOT", "/var/cdn/storage"),
			Compress: getEnvBool("FS_COMPRESS", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
