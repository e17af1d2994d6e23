package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageDriverMongo     = "mongo"
	StorageDriverFirestore = "firestore"

	ObjectDriverMinio = "minio"
	ObjectDriverGCS   = "gcs"

	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	InstanceID string           `yaml:"instance_id" env:"INSTANCE_ID"`
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	GRPCServer GRPCServerConfig `yaml:"grpc_server"`
	Storage    StorageConfig    `yaml:"storage"`
	MongoDB    MongoDBConfig    `yaml:"mongo"`
	Firestore  FirestoreConfig  `yaml:"firestore"`
	Redis      RedisConfig      `yaml:"redis"`
	NATS       NATSConfig       `yaml:"nats"`
	Objects    ObjectsConfig    `yaml:"objects"`
	Minio      MinioConfig      `yaml:"minio"`
	GCS        GCSConfig        `yaml:"gcs"`
	ImageCache ImageCacheConfig `yaml:"image_cache"`
	Auth       AuthConfig       `yaml:"auth"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Logger     LoggerConfig     `yaml:"logger"`
	Market     MarketConfig     `yaml:"market"`
}

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT_PHOTOCARD_SERVICE" env-default:"8085"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	TimeoutGraceful time.Duration `yaml:"timeout_graceful_shutdown" env-default:"15s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
}

type GRPCServerConfig struct {
	Port              string        `yaml:"port" env:"GRPC_PORT_PHOTOCARD_SERVICE" env-default:"50056"`
	MaxConnectionIdle time.Duration `yaml:"max_connection_idle" env-default:"15m"`
	TimeoutGraceful   time.Duration `yaml:"timeout_graceful_shutdown" env-default:"15s"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
}

type MongoDBConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	User     string `yaml:"user" env:"MONGO_USER"`
	Password string `yaml:"password" env:"MONGO_PASSWORD"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"photocard_service_db"`
}

type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id" env:"FIRESTORE_PROJECT_ID"`
	CredentialsFile string `yaml:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type NATSConfig struct {
	URL           string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
	SubjectPrefix string `yaml:"subject_prefix" env:"NATS_SUBJECT_PREFIX" env-default:"photocard"`
}

type ObjectsConfig struct {
	Driver string `yaml:"driver" env:"OBJECTS_DRIVER" env-default:"minio"`
	Prefix string `yaml:"prefix" env:"OBJECTS_PREFIX" env-default:"images"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"photocards"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
}

type GCSConfig struct {
	Bucket          string `yaml:"bucket" env:"GCS_BUCKET"`
	CredentialsFile string `yaml:"credentials_file" env:"GCS_CREDENTIALS_FILE"`
}

type ImageCacheConfig struct {
	Dir         string `yaml:"dir" env:"IMAGE_CACHE_DIR" env-default:"./data/images"`
	MaxEdge     uint   `yaml:"max_edge" env:"IMAGE_MAX_EDGE" env-default:"1080"`
	JPEGQuality int    `yaml:"jpeg_quality" env:"IMAGE_JPEG_QUALITY" env-default:"80"`
}

type AuthConfig struct {
	Provider        string `yaml:"provider" env:"AUTH_PROVIDER" env-default:"jwt"`
	JWTSecret       string `yaml:"jwt_secret" env:"JWT_SECRET"`
	FirebaseProject string `yaml:"firebase_project" env:"FIREBASE_PROJECT_ID"`
	CredentialsFile string `yaml:"credentials_file" env:"FIREBASE_CREDENTIALS_FILE"`
}

type SMTPConfig struct {
	Host        string        `yaml:"host" env:"SMTP_HOST"`
	Port        int           `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username    string        `yaml:"username" env:"SMTP_USERNAME"`
	Password    string        `yaml:"password" env:"SMTP_PASSWORD"`
	SenderEmail string        `yaml:"sender_email" env:"SMTP_SENDER_EMAIL"`
	Encryption  string        `yaml:"encryption" env:"SMTP_ENCRYPTION" env-default:"tls"`
	ServerName  string        `yaml:"server_name" env:"SMTP_SERVER_NAME"`
	SendTimeout time.Duration `yaml:"send_timeout" env:"SMTP_SEND_TIMEOUT" env-default:"10s"`
}

// Enabled reports whether receipts can be mailed at all.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.SenderEmail != ""
}

type MetricsConfig struct {
	Port      string `yaml:"port" env:"METRICS_PORT" env-default:"9095"`
	Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE" env-default:"photocard_service"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" env:"TRACING_ENABLED" env-default:"false"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	ServiceName string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"photocard-service"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

type MarketConfig struct {
	FeaturedCap        int           `yaml:"featured_cap" env:"MARKET_FEATURED_CAP" env-default:"5"`
	ResolveConcurrency int           `yaml:"resolve_concurrency" env:"MARKET_RESOLVE_CONCURRENCY" env-default:"8"`
	ImageMaxBytes      int64         `yaml:"image_max_bytes" env:"MARKET_IMAGE_MAX_BYTES" env-default:"5242880"`
	PhotocardCacheTTL  time.Duration `yaml:"photocard_cache_ttl" env:"MARKET_PHOTOCARD_CACHE_TTL" env-default:"10m"`
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout" env:"MARKET_SESSION_IDLE_TIMEOUT" env-default:"30m"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
		log.Printf("config file %s not found, reading environment only", path)
		if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
			return nil, errEnv
		}
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH_PHOTOCARD_SERVICE")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
