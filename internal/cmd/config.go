package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/scorecast/scorecast/internal/scoreboard"
)

type Config struct {
	Sports struct {
		Default     string                 `yaml:"default"`
		Definitions map[string]sportConfig `yaml:"definitions"`
	} `yaml:"sports"`
}

type sportConfig struct {
	Periods           []string `yaml:"periods"`
	HalfLengthSec     int      `yaml:"half_length_sec"`
	OvertimeLengthSec int      `yaml:"overtime_length_sec"`
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// sportRules converts the YAML sport definitions into the rule set consumed
// by the scoreboard. An empty config still yields a usable default sport.
func sportRules(config *Config) (map[string]scoreboard.SportRules, string) {
	rules := make(map[string]scoreboard.SportRules)
	for key, def := range config.Sports.Definitions {
		periods := def.Periods
		if len(periods) == 0 {
			periods = scoreboard.DefaultPeriods
		}
		rules[key] = scoreboard.SportRules{
			Periods:           periods,
			HalfLengthSec:     def.HalfLengthSec,
			OvertimeLengthSec: def.OvertimeLengthSec,
		}
	}

	defaultSport := config.Sports.Default
	if defaultSport == "" {
		defaultSport = "football"
	}
	if _, ok := rules[defaultSport]; !ok {
		rules[defaultSport] = scoreboard.SportRules{
			Periods:           scoreboard.DefaultPeriods,
			HalfLengthSec:     45 * 60,
			OvertimeLengthSec: 15 * 60,
		}
	}
	return rules, defaultSport
}
