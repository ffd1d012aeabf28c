package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	stringsutil "baryo/pkg/platform/strings"
)

// Config gathers everything cmd/server needs so main stays lean.
type Config struct {
	Addr string

	// UpstreamAPI is the external barangay API that owns persistence. This
	// service only assembles and forwards submissions to it.
	UpstreamAPI    UpstreamConfig
	Redis          RedisConfig
	PostgresDSN    string
	Kafka          KafkaConfig
	JWTSigningKey  string
	SessionSealKey string
	SessionTTL     time.Duration
	Locality       Locality
}

// UpstreamConfig points at the external barangay REST API.
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// RedisConfig holds connection knobs for the session store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit relay target.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Locality pins the deployment's fixed address constants. Residents never
// edit these; the wizard injects them into every record.
type Locality struct {
	Barangay     string
	Municipality string
	ZipCode      string
}

// FromEnv builds a Config from environment variables with development
// defaults for everything non-secret.
func FromEnv() Config {
	return Config{
		Addr: envOr("BARYO_ADDR", ":8080"),
		UpstreamAPI: UpstreamConfig{
			BaseURL: envOr("BARYO_UPSTREAM_URL", "http://localhost:9000/api"),
			Timeout: envDuration("BARYO_UPSTREAM_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("BARYO_REDIS_URL"),
			PoolSize:     envInt("BARYO_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("BARYO_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("BARYO_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("BARYO_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("BARYO_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		PostgresDSN: os.Getenv("BARYO_POSTGRES_DSN"),
		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(os.Getenv("BARYO_KAFKA_BROKERS")),
			Topic:   envOr("BARYO_KAFKA_AUDIT_TOPIC", "baryo.audit"),
		},
		JWTSigningKey:  envOr("BARYO_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionSealKey: os.Getenv("BARYO_SESSION_SEAL_KEY"),
		SessionTTL:     envDuration("BARYO_SESSION_TTL", 2*time.Hour),
		Locality: Locality{
			Barangay:     envOr("BARYO_BARANGAY", "San Isidro"),
			Municipality: envOr("BARYO_MUNICIPALITY", "Rodriguez"),
			ZipCode:      envOr("BARYO_ZIP", "1860"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// splitNonEmpty parses a comma-separated list, dropping blanks and repeats
// so a doubled broker entry does not double-produce.
func splitNonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return stringsutil.DedupeAndTrim(strings.Split(v, ","))
}
