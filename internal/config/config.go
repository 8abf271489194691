package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the engine configuration, loaded from environment variables
// with an optional .env file.
type Config struct {
	Storage StorageConfig
	Sim     SimConfig
	Image   ImageConfig
	Logger  LoggerConfig
}

// StorageConfig selects and tunes the persistence backend.
type StorageConfig struct {
	Backend         string // "file" or "mongo"
	DataFile        string
	MaxStateBytes   int64 // file backend capacity; 0 means unbounded
	MongoURI        string
	MongoDB         string
	MongoCollection string
}

// SimConfig tunes the tracking simulation.
type SimConfig struct {
	TickInterval time.Duration
	MQTTBroker   string // empty disables the telemetry feed
	MQTTClientID string
}

// ImageConfig bounds the image ingestion pipeline.
type ImageConfig struct {
	MaxEncodedBytes int
	MaxDimension    int
	MinQuality      int
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from the environment, loading .env first if
// present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Storage: StorageConfig{
			Backend:         getEnv("FLEET_BACKEND", "file"),
			DataFile:        getEnv("FLEET_DATA_FILE", "fleet-state.json"),
			MaxStateBytes:   getInt64Env("FLEET_MAX_STATE_BYTES", 5<<20),
			MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
			MongoDB:         getEnv("MONGO_DB", "rentfleet"),
			MongoCollection: getEnv("MONGO_COLLECTION", "fleet_state"),
		},
		Sim: SimConfig{
			TickInterval: getDurationEnv("SIM_TICK_INTERVAL", 3*time.Second),
			MQTTBroker:   getEnv("MQTT_BROKER_URL", ""),
			MQTTClientID: getEnv("MQTT_CLIENT_ID", "rentfleet-sim"),
		},
		Image: ImageConfig{
			MaxEncodedBytes: getIntEnv("IMAGE_MAX_ENCODED_BYTES", 300*1024),
			MaxDimension:    getIntEnv("IMAGE_MAX_DIMENSION", 800),
			MinQuality:      getIntEnv("IMAGE_MIN_QUALITY", 40),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
