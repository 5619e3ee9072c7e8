package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// KafkaConfig holds broker and consumer-group settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// WetClinicConfig holds the clinic integration settings.
type WetClinicConfig struct {
	BaseURL string
	Timeout time.Duration
}

// MinioConfig holds object-store settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ServiceConfig holds all configuration for the registry service.
type ServiceConfig struct {
	Port             string
	AppEnv           string
	APIKey           string
	DefaultOwnerID   uuid.UUID
	DefaultOwnerName string
	DisallowedNames  []string
	DBConfig         DatabaseConfig
	KafkaConfig      KafkaConfig
	WetClinic        WetClinicConfig
	Minio            MinioConfig
}

// Load reads configuration from REGISTRY_-prefixed environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("REGISTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pet_registry")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "pet-platform.")
	v.SetDefault("WET_CLINIC_BASE_URL", "http://localhost:8081")
	v.SetDefault("WET_CLINIC_TIMEOUT", "5s")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "pet-photos")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("API_KEY", "dev-api-key")
	// Demonstration owner until real owner selection exists.
	v.SetDefault("DEFAULT_OWNER_ID", "1ab6229a-4e7b-4ac0-a7d0-f40d60ce1e59")
	v.SetDefault("DEFAULT_OWNER_NAME", "Default Owner")
	v.SetDefault("DISALLOWED_NAMES", "Murka")

	defaultOwnerID, err := uuid.Parse(v.GetString("DEFAULT_OWNER_ID"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRY_DEFAULT_OWNER_ID: %w", err)
	}

	timeout, err := time.ParseDuration(v.GetString("WET_CLINIC_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid REGISTRY_WET_CLINIC_TIMEOUT: %w", err)
	}

	return &ServiceConfig{
		Port:             v.GetString("SERVICE_PORT"),
		AppEnv:           v.GetString("APP_ENV"),
		APIKey:           v.GetString("API_KEY"),
		DefaultOwnerID:   defaultOwnerID,
		DefaultOwnerName: v.GetString("DEFAULT_OWNER_NAME"),
		DisallowedNames:  splitList(v.GetString("DISALLOWED_NAMES")),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		WetClinic: WetClinicConfig{
			BaseURL: v.GetString("WET_CLINIC_BASE_URL"),
			Timeout: timeout,
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
	}, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
