package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all service settings, populated from environment variables
// and an optional YAML file named by ETL_CONFIG_FILE. Environment variables
// always win over file values.
type Config struct {
	BaseAPIURL string
	RunDate    string
	Countries  []string

	RiskLow    int
	RiskMedium int
	RiskHigh   int

	OutputBasePath string
	OutputFormat   string

	S3Bucket    string
	S3Region    string
	S3KeyPrefix string
	S3Enabled   bool

	KafkaBrokers      []string
	KafkaSummaryTopic string
	KafkaEnabled      bool

	PushgatewayURL string

	APITimeout      time.Duration
	APIRetryMax     int
	APIRateLimitRPM int

	LogLevel  string
	LogFormat string
	LogFile   string
}

// fileConfig mirrors the optional YAML file. Only the structured settings
// live there; everything else is flat enough for the environment.
type fileConfig struct {
	RunDate        string   `yaml:"run_date"`
	Countries      []string `yaml:"countries"`
	RiskThresholds struct {
		Low    int `yaml:"low"`
		Medium int `yaml:"medium"`
		High   int `yaml:"high"`
	} `yaml:"risk_thresholds"`
}

// Load reads configuration from the optional YAML file and the environment,
// applying defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{
		BaseAPIURL:        "https://covid-api.com/api",
		RunDate:           "2023-09-01",
		Countries:         []string{"MX", "CO", "PE"},
		RiskLow:           100,
		RiskMedium:        500,
		RiskHigh:          1000,
		OutputBasePath:    "data",
		OutputFormat:      "csv",
		S3Region:          "us-east-1",
		S3KeyPrefix:       "covid_data",
		KafkaSummaryTopic: "covid-country-summaries",
		APITimeout:        15 * time.Second,
		APIRetryMax:       3,
		APIRateLimitRPM:   300,
		LogLevel:          "info",
		LogFormat:         "json",
	}

	if path := os.Getenv("ETL_CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.S3Enabled = cfg.S3Bucket != ""
	if v := os.Getenv("S3_ENABLED"); v != "" {
		cfg.S3Enabled = v == "true"
	}
	cfg.KafkaEnabled = len(cfg.KafkaBrokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.KafkaEnabled = v == "true"
	}

	if cfg.BaseAPIURL == "" {
		return nil, errors.New("BASE_API_URL is required")
	}
	if _, err := time.Parse("2006-01-02", cfg.RunDate); err != nil {
		return nil, fmt.Errorf("invalid COVID_DATE %q: want YYYY-MM-DD", cfg.RunDate)
	}
	if len(cfg.Countries) == 0 {
		return nil, errors.New("COUNTRIES is required")
	}
	if cfg.OutputFormat != "csv" && cfg.OutputFormat != "jsonl" {
		return nil, fmt.Errorf("invalid OUTPUT_FORMAT %q: want csv or jsonl", cfg.OutputFormat)
	}
	if cfg.S3Enabled && cfg.S3Bucket == "" {
		return nil, errors.New("S3_ENABLED is true but S3_BUCKET_NAME is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSummaryTopic == "" {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SUMMARY_TOPIC is not set")
	}
	if cfg.APIRetryMax < 1 {
		return nil, errors.New("API_RETRY_MAX must be at least 1")
	}
	if cfg.APIRateLimitRPM < 1 {
		return nil, errors.New("API_RATE_LIMIT_RPM must be at least 1")
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.RunDate != "" {
		cfg.RunDate = fc.RunDate
	}
	if len(fc.Countries) > 0 {
		cfg.Countries = fc.Countries
	}
	if fc.RiskThresholds.Low > 0 {
		cfg.RiskLow = fc.RiskThresholds.Low
	}
	if fc.RiskThresholds.Medium > 0 {
		cfg.RiskMedium = fc.RiskThresholds.Medium
	}
	if fc.RiskThresholds.High > 0 {
		cfg.RiskHigh = fc.RiskThresholds.High
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.BaseAPIURL, "BASE_API_URL")
	setString(&cfg.RunDate, "COVID_DATE")
	if v, ok := os.LookupEnv("COUNTRIES"); ok {
		cfg.Countries = splitList(v)
	}

	if err := setInt(&cfg.RiskLow, "RISK_LOW_THRESHOLD"); err != nil {
		return err
	}
	if err := setInt(&cfg.RiskMedium, "RISK_MEDIUM_THRESHOLD"); err != nil {
		return err
	}
	if err := setInt(&cfg.RiskHigh, "RISK_HIGH_THRESHOLD"); err != nil {
		return err
	}

	setString(&cfg.OutputBasePath, "OUTPUT_BASE_PATH")
	setString(&cfg.OutputFormat, "OUTPUT_FORMAT")

	setString(&cfg.S3Bucket, "S3_BUCKET_NAME")
	setString(&cfg.S3Region, "AWS_DEFAULT_REGION")
	setString(&cfg.S3KeyPrefix, "S3_KEY_PREFIX")

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.KafkaBrokers = splitList(v)
	}
	setString(&cfg.KafkaSummaryTopic, "KAFKA_SUMMARY_TOPIC")

	setString(&cfg.PushgatewayURL, "PUSHGATEWAY_URL")

	if err := setDuration(&cfg.APITimeout, "API_TIMEOUT"); err != nil {
		return err
	}
	if err := setInt(&cfg.APIRetryMax, "API_RETRY_MAX"); err != nil {
		return err
	}
	if err := setInt(&cfg.APIRateLimitRPM, "API_RATE_LIMIT_RPM"); err != nil {
		return err
	}

	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.LogFile, "LOG_FILE")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, v)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid %s: %q", key, v)
	}
	*dst = d
	return nil
}

// splitList splits a comma-separated env value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
