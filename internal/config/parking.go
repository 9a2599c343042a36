package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ParkingConfig holds facility settings read from parking.yml.
// It is read once at startup; changes apply on restart.
type ParkingConfig struct {
	Ticket  TicketConfig  `mapstructure:"ticket"`
	Receipt ReceiptConfig `mapstructure:"receipt"`
	Tariff  TariffConfig  `mapstructure:"tariff"`
}

type TicketConfig struct {
	// GraceMinutes applies when the active tariff does not set its own grace period.
	GraceMinutes int `mapstructure:"grace_minutes"`
	// Timezone decides which calendar day a subscription is checked against.
	Timezone string `mapstructure:"timezone"`
}

type ReceiptConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Dir          string        `mapstructure:"dir"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FacilityName string        `mapstructure:"facility_name"`
}

type TariffConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

func DefaultParkingConfig() ParkingConfig {
	return ParkingConfig{
		Ticket: TicketConfig{GraceMinutes: 30, Timezone: "UTC"},
		Receipt: ReceiptConfig{
			Enabled:      true,
			Dir:          "receipts",
			Timeout:      5 * time.Second,
			FacilityName: "CrudPark",
		},
		Tariff: TariffConfig{CacheTTL: 30 * time.Second},
	}
}

func NewParkingConfig() (ParkingConfig, error) {
	v := viper.New()

	v.SetConfigName("parking")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/crudpark")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CRUDPARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultParkingConfig()
	v.SetDefault("ticket.grace_minutes", defaults.Ticket.GraceMinutes)
	v.SetDefault("ticket.timezone", defaults.Ticket.Timezone)
	v.SetDefault("receipt.enabled", defaults.Receipt.Enabled)
	v.SetDefault("receipt.dir", defaults.Receipt.Dir)
	v.SetDefault("receipt.timeout", defaults.Receipt.Timeout)
	v.SetDefault("receipt.facility_name", defaults.Receipt.FacilityName)
	v.SetDefault("tariff.cache_ttl", defaults.Tariff.CacheTTL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return ParkingConfig{}, err
		}
	}

	var cfg ParkingConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return ParkingConfig{}, err
	}
	if err := validateParkingConfig(cfg); err != nil {
		return ParkingConfig{}, err
	}
	return cfg, nil
}

func validateParkingConfig(cfg ParkingConfig) error {
	if cfg.Ticket.GraceMinutes < 0 {
		return errors.New("ticket.grace_minutes cannot be negative")
	}
	if _, err := time.LoadLocation(cfg.Ticket.Timezone); err != nil {
		return fmt.Errorf("ticket.timezone: %w", err)
	}
	if cfg.Receipt.Enabled && strings.TrimSpace(cfg.Receipt.Dir) == "" {
		return errors.New("receipt.dir is required when receipts are enabled")
	}
	if cfg.Tariff.CacheTTL < 0 {
		return errors.New("tariff.cache_ttl cannot be negative")
	}
	return nil
}

// Location resolves the facility timezone, falling back to UTC.
func (c TicketConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
