package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Storage and database drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
	DriverLocal  = "local"
	DriverMinio  = "minio"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// LogPretty forces console output; unset means pretty in development only.
	LogPretty string `env:"LOG_PRETTY"`

	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`
	BodyLimit   string   `env:"BODY_LIMIT,   default=10M"`

	JWT       JWTConfig
	DB        DBConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Minio     MinioConfig
	Elastic   ElasticConfig
	RateLimit RateLimitConfig
	Bootstrap BootstrapConfig
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET, required"`
	Issuer     string        `env:"JWT_ISSUER,      default=cms-backend"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL,  default=1h"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL, default=168h"`
}

type DBConfig struct {
	Driver string `env:"DB_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=cms"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,  default=false"`
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type StorageConfig struct {
	Driver      string `env:"STORAGE_DRIVER,  default=local"`
	UploadDir   string `env:"UPLOAD_DIR,      default=uploads"`
	BaseURL     string `env:"UPLOAD_BASE_URL, default=/uploads"`
	MaxFileSize int64  `env:"MAX_FILE_SIZE,   default=5242880"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET,  default=cms-media"`
	UseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
	PublicURL string `env:"MINIO_PUBLIC_URL"`
}

// ElasticConfig enables the post search index when Addresses is non-empty.
type ElasticConfig struct {
	Addresses []string `env:"ELASTIC_ADDRESSES"`
	Username  string   `env:"ELASTIC_USERNAME"`
	Password  string   `env:"ELASTIC_PASSWORD"`
	PostIndex string   `env:"ELASTIC_POST_INDEX, default=posts"`
	Workers   int      `env:"INDEX_WORKERS,      default=4"`
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS, default=100"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW,   default=15m"`
}

// BootstrapConfig names the admin account created at startup when the
// identity store holds no admin yet. Empty email disables it.
type BootstrapConfig struct {
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminUsername string `env:"ADMIN_USERNAME, default=admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Enabled reports whether a bootstrap admin is configured.
func (b BootstrapConfig) Enabled() bool { return b.AdminEmail != "" }

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// Pretty reports whether logs should use the console writer.
func (c *Config) Pretty() bool {
	if v, err := strconv.ParseBool(c.LogPretty); err == nil {
		return v
	}
	return c.IsDevelopment()
}

// SearchEnabled reports whether an Elasticsearch cluster is configured.
func (c *Config) SearchEnabled() bool { return len(c.Elastic.Addresses) > 0 }

// Validate rejects driver names and limits the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case DriverMongo, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.DB.Driver))
	}
	switch c.Storage.Driver {
	case DriverLocal, DriverMinio, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q, %q or %q, got %q", DriverLocal, DriverMinio, DriverMemory, c.Storage.Driver))
	}
	if c.Storage.Driver == DriverMinio && (c.Minio.Endpoint == "" || c.Minio.AccessKey == "" || c.Minio.SecretKey == "") {
		errs = append(errs, errors.New("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio storage driver"))
	}
	if c.Storage.MaxFileSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE must be positive"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}
	if c.Elastic.Workers <= 0 {
		errs = append(errs, errors.New("INDEX_WORKERS must be positive"))
	}
	if c.Bootstrap.Enabled() && c.Bootstrap.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD is required when ADMIN_EMAIL is set"))
	}
	return errors.Join(errs...)
}

// Load reads a .env file when present, then configuration from environment
// variables using go-envconfig.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(fmt.Sprintf("config: failed to read .env: %v", err))
	}

	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom processes and validates configuration from lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
