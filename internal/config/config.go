package config

import (
	"log"

	"gopkg.in/yaml.v3"

	"careminder/pkg/config"
)

type Config struct {
	Server  config.ServerConfig  `yaml:"server"`
	DB      config.DBConfig      `yaml:"db"`
	Redis   config.RedisConfig   `yaml:"redis"`
	MQ      config.MQConfig      `yaml:"mq"`
	JWT     config.JWTConfig     `yaml:"jwt"`
	Records config.RecordsConfig `yaml:"records"`
	Scanner config.ScannerConfig `yaml:"scanner"`
}

func Load() *Config {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var cfg Config
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	// environment variables take highest priority
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideRecordsFromEnv(&cfg.Records)

	return &cfg
}
