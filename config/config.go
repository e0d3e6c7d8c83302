package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"modix/model"
)

// DefaultConfigFile is read when present. Environment variables override it.
const DefaultConfigFile = "data/modix.json"

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "data/modix.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("gateway_timeout", "10s")
	v.SetDefault("expiry_sweep_interval", "1m")
	v.SetDefault("reconcile_interval", "5m")
	v.SetDefault("ban_prune_days", 1)
	v.SetDefault("developer_user_ids", "")
	v.SetDefault("disable_command_unregister", false)
}

// Load reads .env, the default config file and the environment.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom reads configFile (skipped when missing) and the environment.
func LoadFrom(configFile string) (*model.Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	// AutomaticEnv only sees keys viper already knows about.
	_ = v.BindEnv("bot_token")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		}
	}

	cfg := &model.Config{
		BotToken:                 v.GetString("bot_token"),
		DatabasePath:             v.GetString("database_path"),
		LogLevel:                 v.GetString("log_level"),
		LogFormat:                v.GetString("log_format"),
		DeveloperUserIDs:         splitList(v.GetString("developer_user_ids")),
		DisableCommandUnregister: v.GetBool("disable_command_unregister"),
		BanPruneDays:             v.GetInt("ban_prune_days"),
	}

	var err error
	if cfg.GatewayTimeout, err = duration(v, "gateway_timeout"); err != nil {
		return nil, err
	}
	if cfg.ExpirySweepInterval, err = duration(v, "expiry_sweep_interval"); err != nil {
		return nil, err
	}
	if cfg.ReconcileInterval, err = duration(v, "reconcile_interval"); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", strings.ToUpper(key))
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validate(cfg *model.Config) error {
	if cfg.BotToken == "" {
		return errors.New("BOT_TOKEN environment variable not set")
	}
	if cfg.DatabasePath == "" {
		return errors.New("DATABASE_PATH must not be empty")
	}
	if cfg.BanPruneDays < 0 || cfg.BanPruneDays > 7 {
		return fmt.Errorf("BAN_PRUNE_DAYS must be between 0 and 7, got %d", cfg.BanPruneDays)
	}
	return nil
}
