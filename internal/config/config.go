package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Sales    SalesConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// StoreConfig selects the persistence driver behind the key-value store
// capability.
type StoreConfig struct {
	Driver string // memory, redis or postgres
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// SalesConfig carries the transaction-engine configuration. The tax rate is
// global and constant within a session, expressed in basis points so money
// math never touches floats.
type SalesConfig struct {
	TaxRateBps    int64
	CurrencyCode  string
	AdminUsername string
	AdminPassword string
	SeedDemoData  bool
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("STORE_DRIVER", "redis")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("TAX_RATE_BPS", 1300)
	viper.SetDefault("CURRENCY_CODE", "USD")
	viper.SetDefault("ADMIN_USERNAME", "admin")
	viper.SetDefault("SEED_DEMO_DATA", false)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Store: StoreConfig{
			Driver: viper.GetString("STORE_DRIVER"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Sales: SalesConfig{
			TaxRateBps:    viper.GetInt64("TAX_RATE_BPS"),
			CurrencyCode:  viper.GetString("CURRENCY_CODE"),
			AdminUsername: viper.GetString("ADMIN_USERNAME"),
			AdminPassword: viper.GetString("ADMIN_PASSWORD"),
			SeedDemoData:  viper.GetBool("SEED_DEMO_DATA"),
		},
	}
}
