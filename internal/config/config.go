// internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"atm-backend/internal/rules"
	"atm-backend/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// AppConfig holds all application-wide configuration.
type AppConfig struct {
	ServerPort string     `mapstructure:"server_port"`
	DB         db.Config  `mapstructure:"db"`
	Bank       BankConfig `mapstructure:"bank"`
}

// BankConfig holds the bank policy values. They are configuration, not
// hard-coded constants: operations teams tune limits and fees without a
// rebuild.
type BankConfig struct {
	DailyWithdrawalLimit string `mapstructure:"daily_withdrawal_limit"`
	FeeAmount            string `mapstructure:"fee_amount"`
	FeeThreshold         string `mapstructure:"fee_threshold"`
}

// Policy converts the configured strings into an exact-decimal rules.Policy.
func (b BankConfig) Policy() (rules.Policy, error) {
	limit, err := decimal.NewFromString(b.DailyWithdrawalLimit)
	if err != nil {
		return rules.Policy{}, fmt.Errorf("invalid bank.daily_withdrawal_limit: %w", err)
	}
	fee, err := decimal.NewFromString(b.FeeAmount)
	if err != nil {
		return rules.Policy{}, fmt.Errorf("invalid bank.fee_amount: %w", err)
	}
	threshold, err := decimal.NewFromString(b.FeeThreshold)
	if err != nil {
		return rules.Policy{}, fmt.Errorf("invalid bank.fee_threshold: %w", err)
	}
	return rules.Policy{
		DailyWithdrawalLimit: limit,
		FeeAmount:            fee,
		FeeThreshold:         threshold,
	}, nil
}

// LoadConfig reads configuration from an optional config.yaml plus
// environment variable overrides (ATM_SERVER_PORT, ATM_DB_HOST, ...).
func LoadConfig() (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("server_port", "8080")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "user")
	v.SetDefault("db.password", "password")
	v.SetDefault("db.name", "atmdb")
	v.SetDefault("db.sslmode", "disable")

	def := rules.DefaultPolicy()
	v.SetDefault("bank.daily_withdrawal_limit", def.DailyWithdrawalLimit.String())
	v.SetDefault("bank.fee_amount", def.FeeAmount.String())
	v.SetDefault("bank.fee_threshold", def.FeeThreshold.String())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("ATM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
