package config

import (
	"os"
	"strconv"
	"time"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// RecordsConfig points at the external records service that owns
// medication schedules and appointments.
type RecordsConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (c RecordsConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ScannerConfig tunes the reminder scan loop. The tick interval must stay
// at or below the medication window half-width or due times can be missed.
type ScannerConfig struct {
	IntervalSeconds          int `yaml:"interval_seconds"`
	MedicationWindowMinutes  int `yaml:"medication_window_minutes"`
	AppointmentWindowMinutes int `yaml:"appointment_window_minutes"`
	DedupTTLDays             int `yaml:"dedup_ttl_days"`
}

func (c ScannerConfig) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

func (c ScannerConfig) MedicationWindow() time.Duration {
	if c.MedicationWindowMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.MedicationWindowMinutes) * time.Minute
}

func (c ScannerConfig) AppointmentWindow() time.Duration {
	if c.AppointmentWindowMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(c.AppointmentWindowMinutes) * time.Minute
}

// DedupTTL is how long fired reminder keys are retained. Zero means keep
// forever, which matches the historical behavior.
func (c ScannerConfig) DedupTTL() time.Duration {
	if c.DedupTTLDays <= 0 {
		return 0
	}
	return time.Duration(c.DedupTTLDays) * 24 * time.Hour
}

func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

func OverrideRecordsFromEnv(cfg *RecordsConfig) {
	if url := os.Getenv("RECORDS_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}
}
