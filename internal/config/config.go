package config

import (
	"fmt"
	"os"
	"time"

	"athletics-cms/internal/model"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable, loaded from the environment (with .env
// support for local runs).
type Config struct {
	RedisAddr  string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	BadgerPath string `envconfig:"BADGER_PATH" default:"./badger-data"`
	HTTPPort   string `envconfig:"HTTP_PORT" default:"8080"`

	MirrorPollInterval time.Duration `envconfig:"MIRROR_POLL_INTERVAL" default:"15s"`
	MirrorTTL          time.Duration `envconfig:"MIRROR_TTL" default:"5m"`
	MirrorMaxBytes     int           `envconfig:"MIRROR_MAX_BYTES" default:"5242880"`

	BadgerGCSchedule string `envconfig:"BADGER_GC_SCHEDULE" default:"@every 5m"`

	CoursesFile string `envconfig:"COURSES_FILE"`

	ExportSchedule  string `envconfig:"EXPORT_SCHEDULE"`
	ExportEndpoint  string `envconfig:"EXPORT_S3_ENDPOINT"`
	ExportRegion    string `envconfig:"EXPORT_S3_REGION" default:"us-east-1"`
	ExportBucket    string `envconfig:"EXPORT_S3_BUCKET"`
	ExportAccessKey string `envconfig:"EXPORT_S3_ACCESS_KEY"`
	ExportSecretKey string `envconfig:"EXPORT_S3_SECRET_KEY"`
	ExportKeep      int    `envconfig:"EXPORT_KEEP" default:"4"`
}

// Load reads the environment. A missing .env file is fine.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}

// ExportConfigured reports whether the S3 export target is usable.
func (c *Config) ExportConfigured() bool {
	return c.ExportBucket != "" && c.ExportAccessKey != "" && c.ExportSecretKey != ""
}

// CourseTable loads the course display table from the configured yaml file,
// falling back to the built-in schedule. A configured-but-broken file is an
// error rather than a silent fallback.
func (c *Config) CourseTable() (model.CourseTable, error) {
	if c.CoursesFile == "" {
		return model.DefaultCourseTable(), nil
	}
	data, err := os.ReadFile(c.CoursesFile)
	if err != nil {
		return nil, fmt.Errorf("read courses file: %w", err)
	}
	var table model.CourseTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse courses file: %w", err)
	}
	// Unknown slots are ignored; missing slots fall back.
	defaults := model.DefaultCourseTable()
	out := model.CourseTable{}
	for _, slot := range model.CourseSlots {
		if info, ok := table[slot]; ok && info.Name != "" {
			out[slot] = info
		} else {
			out[slot] = defaults[slot]
		}
	}
	return out, nil
}
