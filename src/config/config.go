// Package config builds the process configuration once at startup. Every
// client receives its section by value or reference; nothing in this module
// reads the environment after FromEnv returns.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries every externally supplied setting.
type Config struct {
	Image   Image
	Video   Video
	Agent   Agent
	Storage Storage
}

// Image configures the single-shot image generation/edit client.
type Image struct {
	Endpoint   string // OpenAI-compatible base URL, e.g. https://host/openai/v1
	APIKey     string
	Model      string
	APIVersion string // appended as ?api-version= when set (Azure-style hosts)
	Size       string
	Quality    string
}

// Video configures the asynchronous video jobs client.
type Video struct {
	Endpoint     string
	APIKey       string
	Model        string
	APIVersion   string
	Width        int
	Height       int
	Variants     int
	PollInterval time.Duration
	PollBudget   int // maximum status fetches before the job counts as timed out
}

// Agent configures the hosted sub-agent (thread/run) client.
type Agent struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	PollInterval time.Duration
	PollBudget   int
}

// Storage selects and configures the artifact stores.
type Storage struct {
	Dir           string // filesystem store root
	BaseURL       string // prefix for returned references; file:// paths when empty
	MongoURI      string
	MongoDatabase string
	PostgresURL   string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
}

// FromEnv reads the environment once and returns the assembled Config.
func FromEnv() Config {
	return Config{
		Image: Image{
			Endpoint:   strings.TrimRight(getenv("IMAGE_API_ENDPOINT", ""), "/"),
			APIKey:     os.Getenv("IMAGE_API_KEY"),
			Model:      getenv("IMAGE_MODEL", "gpt-image-1"),
			APIVersion: os.Getenv("IMAGE_API_VERSION"),
			Size:       getenv("IMAGE_SIZE", "1024x1024"),
			Quality:    getenv("IMAGE_QUALITY", "low"),
		},
		Video: Video{
			Endpoint:     strings.TrimRight(getenv("VIDEO_API_ENDPOINT", ""), "/"),
			APIKey:       os.Getenv("VIDEO_API_KEY"),
			Model:        getenv("VIDEO_MODEL", "sora"),
			APIVersion:   os.Getenv("VIDEO_API_VERSION"),
			Width:        getint("VIDEO_WIDTH", 480),
			Height:       getint("VIDEO_HEIGHT", 480),
			Variants:     getint("VIDEO_VARIANTS", 1),
			PollInterval: getduration("VIDEO_POLL_INTERVAL", 5*time.Second),
			PollBudget:   getint("VIDEO_POLL_BUDGET", 360),
		},
		Agent: Agent{
			Endpoint:     strings.TrimRight(getenv("AGENT_API_ENDPOINT", ""), "/"),
			APIKey:       os.Getenv("AGENT_API_KEY"),
			APIVersion:   os.Getenv("AGENT_API_VERSION"),
			PollInterval: getduration("AGENT_POLL_INTERVAL", 2*time.Second),
			PollBudget:   getint("AGENT_POLL_BUDGET", 300),
		},
		Storage: Storage{
			Dir:           getenv("BLOB_DIR", "./data/blobs"),
			BaseURL:       strings.TrimRight(os.Getenv("BLOB_BASE_URL"), "/"),
			MongoURI:      os.Getenv("MONGO_URI"),
			MongoDatabase: getenv("MONGO_DATABASE", "mediagent"),
			PostgresURL:   os.Getenv("POSTGRES_URL"),
			Neo4jURI:      os.Getenv("NEO4J_URI"),
			Neo4jUser:     os.Getenv("NEO4J_USER"),
			Neo4jPassword: os.Getenv("NEO4J_PASSWORD"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
