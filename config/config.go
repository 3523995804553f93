package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Suppliers    []SupplierConfig   `yaml:"suppliers"`
	Pricing      PricingConfig      `yaml:"pricing"`
	Availability AvailabilityConfig `yaml:"availability"`
	Lock         LockConfig         `yaml:"lock"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers                []string `yaml:"brokers"`
	BookingEventsTopic     string   `yaml:"booking_events_topic"`
	SupplierResponsesTopic string   `yaml:"supplier_responses_topic"`
	NotificationsTopic     string   `yaml:"notifications_topic"`
	GroupID                string   `yaml:"group_id"`
}

type SupplierConfig struct {
	Name           string `yaml:"name"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (s SupplierConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type RateConfig struct {
	From string  `yaml:"from"`
	To   string  `yaml:"to"`
	Rate float64 `yaml:"rate"`
}

type PricingConfig struct {
	TargetCurrency string       `yaml:"target_currency"`
	MarkupPercent  float64      `yaml:"markup_percent"`
	RateTTLMinutes int          `yaml:"rate_ttl_minutes"`
	Rates          []RateConfig `yaml:"rates"`
}

func (p PricingConfig) RateTTL() time.Duration {
	return time.Duration(p.RateTTLMinutes) * time.Minute
}

type AvailabilityConfig struct {
	SearchTTLMinutes     int `yaml:"search_ttl_minutes"`
	EvaluationTTLMinutes int `yaml:"evaluation_ttl_minutes"`
	LocalBackfillSeconds int `yaml:"local_backfill_seconds"`
}

func (a AvailabilityConfig) SearchTTL() time.Duration {
	return time.Duration(a.SearchTTLMinutes) * time.Minute
}

func (a AvailabilityConfig) EvaluationTTL() time.Duration {
	return time.Duration(a.EvaluationTTLMinutes) * time.Minute
}

func (a AvailabilityConfig) LocalBackfillTTL() time.Duration {
	return time.Duration(a.LocalBackfillSeconds) * time.Second
}

type LockConfig struct {
	LeaseSeconds int `yaml:"lease_seconds"`
}

func (l LockConfig) Lease() time.Duration {
	return time.Duration(l.LeaseSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
