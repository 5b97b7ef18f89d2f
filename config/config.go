package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerAddr     string        `envconfig:"SERVER_ADDR" default:":8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	CORSOrigins    []string      `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://localhost:8080"`

	// Database configuration. DB_DRIVER is "postgres" or "sqlite".
	DBDriver   string `envconfig:"DB_DRIVER" default:"postgres"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"promptgallery"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBPath     string `envconfig:"DB_PATH" default:"promptgallery.db"`

	RedisAddr     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     string `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	// Tokens are issued by the identity provider and signed with the shared secret.
	JWTSecret string `envconfig:"JWT_SECRET"`
	JWTIssuer string `envconfig:"JWT_ISSUER"`

	// Catalog behaviour
	PublicListLimit int           `envconfig:"PUBLIC_LIST_LIMIT" default:"50"`
	PublicCacheTTL  time.Duration `envconfig:"PUBLIC_CACHE_TTL" default:"5m"`
	SeedDemoPrompts bool          `envconfig:"SEED_DEMO_PROMPTS" default:"true"`

	// Asset store: "oss", "cloudinary" or "none"
	AssetStore         string `envconfig:"ASSET_STORE" default:"none"`
	OSSEndpoint        string `envconfig:"OSS_ENDPOINT"`
	OSSRegion          string `envconfig:"OSS_REGION"`
	OSSBucketName      string `envconfig:"OSS_BUCKET_NAME"`
	OSSAccessKeyID     string `envconfig:"OSS_ACCESS_KEY_ID"`
	OSSAccessKeySecret string `envconfig:"OSS_ACCESS_KEY_SECRET"`
	OSSRoleArn         string `envconfig:"OSS_ROLE_ARN"`

	CloudinaryCloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `envconfig:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `envconfig:"CLOUDINARY_FOLDER" default:"promptgallery"`

	// Log configuration
	LogLevel      string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFilename   string `envconfig:"LOG_FILENAME" default:"logs/app.log"`
	LogMaxSize    int    `envconfig:"LOG_MAX_SIZE" default:"100"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	LogMaxAge     int    `envconfig:"LOG_MAX_AGE" default:"28"`
	LogCompress   bool   `envconfig:"LOG_COMPRESS" default:"true"`
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func (c *Config) RedisFullAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisAddr, c.RedisPort)
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		// Ignore error if .env file is not found
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	return &cfg, nil
}
