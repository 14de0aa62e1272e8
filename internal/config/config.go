package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/fire-crew-roster/pkg/core/crew"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultLogDir     = "logs"
	defaultSQLitePath = "data/crew.db"
)

// DatabaseConfig selects the store
type DatabaseConfig struct {
	// Driver is "postgres" (station server) or "sqlite" (single station laptop)
	Driver string `yaml:"driver" validate:"required,oneof=postgres sqlite"`

	// URL is the postgres connection string or the sqlite file path
	URL string `yaml:"url,omitempty" validate:"required_if=Driver postgres"`
}

// BreathingApparatusConfig overrides the breathing-apparatus policy
type BreathingApparatusConfig struct {
	ExamTypeCode       string `yaml:"examTypeCode,omitempty"`
	QualificationCode  string `yaml:"qualificationCode,omitempty"`
	ExerciseWindowDays int    `yaml:"exerciseWindowDays,omitempty" validate:"omitempty,min=1"`
	MinExercises       int    `yaml:"minExercises,omitempty" validate:"omitempty,min=1"`
}

// VehicleSelection restricts generation to a set of vehicles on duties whose date matches RRule
type VehicleSelection struct {
	RRule string `yaml:"rrule" validate:"required"`

	// Vehicles are call signs or vehicle IDs
	Vehicles []string `yaml:"vehicles" validate:"required,min=1,dive,required"`
}

// Config represents the application configuration
type Config struct {
	Database           DatabaseConfig           `yaml:"database" validate:"required"`
	LogDir             string                   `yaml:"logDir,omitempty"`
	BreathingApparatus BreathingApparatusConfig `yaml:"breathingApparatus,omitempty"`
	VehicleSelections  []VehicleSelection       `yaml:"vehicleSelections,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads crew_config.<env>.yaml from the current directory or the user's home directory
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(fmt.Sprintf("crew_config.%s.yaml", env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads, defaults and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills in optional values
func ApplyDefaults(cfg *Config) {
	if cfg.LogDir == "" {
		cfg.LogDir = defaultLogDir
	}
	if cfg.Database.Driver == DriverSQLite && cfg.Database.URL == "" {
		cfg.Database.URL = defaultSQLitePath
	}

	defaults := crew.DefaultBreathingApparatusPolicy()
	ba := &cfg.BreathingApparatus
	if ba.ExamTypeCode == "" {
		ba.ExamTypeCode = defaults.ExamTypeCode
	}
	if ba.QualificationCode == "" {
		ba.QualificationCode = defaults.QualificationCode
	}
	if ba.ExerciseWindowDays == 0 {
		ba.ExerciseWindowDays = defaults.ExerciseWindowDays
	}
	if ba.MinExercises == 0 {
		ba.MinExercises = defaults.MinExercises
	}
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, selection := range cfg.VehicleSelections {
		if _, err := rrule.StrToRRule(selection.RRule); err != nil {
			return fmt.Errorf("invalid rrule in vehicleSelections[%d]: %w", i, err)
		}
	}

	return nil
}

// BreathingApparatusPolicy returns the configured policy. Unset fields fall back to the defaults.
func (c *Config) BreathingApparatusPolicy() crew.BreathingApparatusPolicy {
	policy := crew.DefaultBreathingApparatusPolicy()
	ba := c.BreathingApparatus
	if ba.ExamTypeCode != "" {
		policy.ExamTypeCode = ba.ExamTypeCode
	}
	if ba.QualificationCode != "" {
		policy.QualificationCode = ba.QualificationCode
	}
	if ba.ExerciseWindowDays > 0 {
		policy.ExerciseWindowDays = ba.ExerciseWindowDays
	}
	if ba.MinExercises > 0 {
		policy.MinExercises = ba.MinExercises
	}
	return policy
}

// VehiclesFor returns the vehicles of every selection whose rrule has an occurrence on the given date.
// Returns nil when no selection applies.
func (c *Config) VehiclesFor(date time.Time) ([]string, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var vehicles []string
	for i, selection := range c.VehicleSelections {
		rule, err := rrule.StrToRRule(selection.RRule)
		if err != nil {
			return nil, fmt.Errorf("failed to parse rrule for vehicleSelections[%d]: %w", i, err)
		}

		// Anchor a week before so weekly rules have an occurrence in range
		searchStart := day.AddDate(0, 0, -7)
		rule.DTStart(searchStart)

		for _, occurrence := range rule.Between(day, day.AddDate(0, 0, 1), true) {
			if occurrence.Format("2006-01-02") != day.Format("2006-01-02") {
				continue
			}
			for _, v := range selection.Vehicles {
				if !slices.Contains(vehicles, v) {
					vehicles = append(vehicles, v)
				}
			}
			break
		}
	}

	return vehicles, nil
}

// findConfigFile searches for the config file in the current directory and the home directory
func findConfigFile(configFileName string) (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
