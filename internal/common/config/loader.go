// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like ZPRO_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile tries a few locations so the service, tools, and tests can
// all pick up the same .env regardless of working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in YAML values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials from the environment when the YAML
// left them blank.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Zpro.BaseURL == "" {
		if val := os.Getenv("ZPRO_BASE_URL"); val != "" {
			cfg.Zpro.BaseURL = val
		}
	}
	if cfg.Zpro.APIID == "" {
		if val := os.Getenv("ZPRO_API_ID"); val != "" {
			cfg.Zpro.APIID = val
		}
	}
	if cfg.Zpro.Token == "" {
		if val := os.Getenv("ZPRO_TOKEN"); val != "" {
			cfg.Zpro.Token = val
		}
	}

	if cfg.Cabme.BaseURL == "" {
		if val := os.Getenv("CABME_BASE_URL"); val != "" {
			cfg.Cabme.BaseURL = val
		}
	}
	if cfg.Cabme.APIKey == "" {
		if val := os.Getenv("CABME_APIKEY"); val != "" {
			cfg.Cabme.APIKey = val
		}
	}
	if cfg.Cabme.AccessToken == "" {
		if val := os.Getenv("CABME_ACCESSTOKEN"); val != "" {
			cfg.Cabme.AccessToken = val
		}
	}

	if cfg.Server.AdminKey == "" {
		if val := os.Getenv("ADMIN_KEY"); val != "" {
			cfg.Server.AdminKey = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	// Outbound call timeouts, milliseconds
	if cfg.Zpro.Timeout == 0 {
		cfg.Zpro.Timeout = 15000
	}
	if cfg.Cabme.Timeout == 0 {
		cfg.Cabme.Timeout = 15000
	}
	if cfg.Cabme.CreateOrderPath == "" {
		cfg.Cabme.CreateOrderPath = "request/create"
	}

	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "memory"
	}
	if cfg.Session.TTLHours == 0 {
		cfg.Session.TTLHours = 24
	}
	if cfg.Session.DispatchHours == 0 {
		cfg.Session.DispatchHours = 24
	}

	if cfg.Cabme.Defaults.TotalPassenger == 0 {
		cfg.Cabme.Defaults.TotalPassenger = 1
	}
	if cfg.Cabme.Defaults.VehicleType == "" {
		cfg.Cabme.Defaults.VehicleType = "guincho"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Zpro.BaseURL == "" {
		return fmt.Errorf("zpro.base_url is required")
	}
	if cfg.Zpro.APIID == "" {
		return fmt.Errorf("zpro.api_id is required")
	}
	if cfg.Zpro.Token == "" {
		return fmt.Errorf("zpro.token is required")
	}

	if cfg.Cabme.BaseURL == "" {
		return fmt.Errorf("cabme.base_url is required")
	}
	if cfg.Cabme.APIKey == "" {
		return fmt.Errorf("cabme.apikey is required")
	}
	if cfg.Cabme.AccessToken == "" {
		return fmt.Errorf("cabme.accesstoken is required")
	}

	if cfg.Session.IsRedis() && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when session.backend is redis")
	}

	return nil
}
