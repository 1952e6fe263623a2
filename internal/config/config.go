// Package config loads process configuration from the environment,
// following the env-var surface named in the specification (MONGO_URI,
// SCRAPING_AGENT_API_URL, and friends) rather than the teacher's
// YAML file, since both the ingestor and the agent are meant to be
// deployed as twelve-factor processes.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MongoConfig holds the durable-store connection settings.
type MongoConfig struct {
	URI    string
	DBName string
}

// RedisConfig holds the job-queue broker connection settings.
type RedisConfig struct {
	URL string
}

// AgentConfig holds the settings the ingestor uses to reach the
// scraping agent's HTTP surface.
type AgentConfig struct {
	BaseURL string
	Token   string
}

// WorkerConfig bounds the agent's job worker pool.
type WorkerConfig struct {
	Concurrency     int
	PollInterval    time.Duration
	SubmitTimeout   time.Duration
	ResultTimeout   time.Duration
	ListingPageCap  int
	RespectRobots   bool
}

// SchedulerConfig controls the ingestor's four periodic tasks. S1-S3
// fire at fixed wall-clock hours in Timezone (the Go equivalent of the
// original's crontab(hour=...) Celery Beat entries); only S4 is a
// plain fixed-interval poll.
type SchedulerConfig struct {
	ListingFireHours      []int
	BatchCreateFireHours  []int
	BatchScrapeFireHours  []int
	FetchResultsInterval  time.Duration
	Timezone              string
	MaxBatchSize          int
	MaxBatchesToProcess   int
}

// ServerConfig is the listen address for an HTTP surface. Agent and
// admin run as separate binaries/processes, each reading its own port
// from the shared Config.
type ServerConfig struct {
	Host      string
	Port      int
	AdminPort int
}

// Config is the root configuration shared by both binaries; each
// binary only reads the sections relevant to it.
type Config struct {
	Mongo         MongoConfig
	Redis         RedisConfig
	Agent         AgentConfig
	Worker        WorkerConfig
	Scheduler     SchedulerConfig
	Server        ServerConfig
	AdminToken    string
	ScraperCacheMaxSize int
	ScraperUserAgent    string
	RodEnabled          bool
}

// Load reads configuration from the environment, loading a .env file
// first when present (ignored in production where env vars are
// injected directly by the deployment platform).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Mongo: MongoConfig{
			URI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName: getEnv("MONGO_DBNAME", "wearlytic"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Agent: AgentConfig{
			BaseURL: getEnv("SCRAPING_AGENT_API_URL", "http://localhost:8081"),
			Token:   getEnv("SCRAPING_AGENT_TOKEN", ""),
		},
		AdminToken:          getEnv("API_ACCESS_TOKEN", ""),
		ScraperCacheMaxSize: 17,
		ScraperUserAgent:    getEnv("SCRAPER_USER_AGENT", "Mozilla/5.0 (compatible; WearlyticBot/1.0)"),
		Server: ServerConfig{
			Host: getEnv("HOST", "0.0.0.0"),
		},
		Scheduler: SchedulerConfig{
			// Mirrors the original's Celery Beat schedule: S1 at
			// 07:00/19:00, S2 at 08:00/20:00, S3 at 09:00/21:00, all
			// Asia/Kolkata unless overridden.
			ListingFireHours:     []int{7, 19},
			BatchCreateFireHours: []int{8, 20},
			BatchScrapeFireHours: []int{9, 21},
			FetchResultsInterval: 15 * time.Minute,
			Timezone:             getEnv("SCHEDULER_TIMEZONE", "Asia/Kolkata"),
		},
		Worker: WorkerConfig{
			PollInterval:   2 * time.Second,
			SubmitTimeout:  10 * time.Second,
			ResultTimeout:  5 * time.Second,
			ListingPageCap: 30,
		},
	}

	if v, err := getEnvInt("PORT", 8081); err != nil {
		return nil, err
	} else {
		cfg.Server.Port = v
	}

	if v, err := getEnvInt("ADMIN_PORT", 8080); err != nil {
		return nil, err
	} else {
		cfg.Server.AdminPort = v
	}

	if v, err := getEnvInt("MAXIMUM_BATCH_SIZE", 100); err != nil {
		return nil, err
	} else {
		cfg.Scheduler.MaxBatchSize = v
	}

	if v, err := getEnvInt("MAXIMUM_BATCHES_TO_PROCESS", 5); err != nil {
		return nil, err
	} else {
		cfg.Scheduler.MaxBatchesToProcess = v
	}

	if v, err := getEnvInt("SCRAPER_CACHE_MAX_SIZE", 17); err != nil {
		return nil, err
	} else {
		cfg.ScraperCacheMaxSize = v
	}

	if v, err := getEnvInt("WORKER_CONCURRENCY", 8); err != nil {
		return nil, err
	} else {
		cfg.Worker.Concurrency = v
	}

	if v, err := getEnvBool("ROD_ENABLED", true); err != nil {
		return nil, err
	} else {
		cfg.RodEnabled = v
	}

	if v, err := getEnvBool("RESPECT_ROBOTS", true); err != nil {
		return nil, err
	} else {
		cfg.Worker.RespectRobots = v
	}

	return cfg, nil
}

// Validate performs basic sanity checks so obviously misconfigured
// deployments fail fast at startup rather than on the first request.
func (cfg *Config) Validate() error {
	if cfg.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI must be set")
	}
	if cfg.Mongo.DBName == "" {
		return fmt.Errorf("MONGO_DBNAME must be set")
	}
	if cfg.Scheduler.MaxBatchSize <= 0 {
		return fmt.Errorf("MAXIMUM_BATCH_SIZE must be positive")
	}
	if cfg.Scheduler.MaxBatchesToProcess <= 0 {
		return fmt.Errorf("MAXIMUM_BATCHES_TO_PROCESS must be positive")
	}
	if cfg.ScraperCacheMaxSize <= 0 {
		return fmt.Errorf("SCRAPER_CACHE_MAX_SIZE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
