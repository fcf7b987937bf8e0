package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration. Values come from an
// optional YAML file, overridden by environment variables; flags take
// final precedence in main.
type Config struct {
	Port      int    `yaml:"port"`
	DataPack  string `yaml:"data_pack"`
	ModelPath string `yaml:"model_path"`
	DietSeed  int64  `yaml:"diet_seed"`
	Version   string `yaml:"-"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Port:      8080,
		DataPack:  "data/medassist.db",
		ModelPath: "data/model.gob",
		DietSeed:  1,
	}
}

// Load reads the config file at path (skipped when empty or missing)
// and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("could not parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("could not read %s: %w", path, err)
		}
	}

	envOverrideInt(&cfg.Port, "MEDASSIST_PORT")
	envOverride(&cfg.DataPack, "MEDASSIST_DATA_PACK")
	envOverride(&cfg.ModelPath, "MEDASSIST_MODEL_PATH")
	envOverrideInt64(&cfg.DietSeed, "MEDASSIST_DIET_SEED")

	return cfg, nil
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

func envOverrideInt64(target *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*target = n
		}
	}
}
