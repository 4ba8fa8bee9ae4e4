package config

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		DSN string // Data Source Name (e.g., "memory" or file path for SQLite)
	}
	Templates struct {
		Dir string `mapstructure:"dir"` // Directory with seed checklist JSON files
	}
	Exports struct {
		Dir string `mapstructure:"dir"` // Directory where generated PDF reports are written
	}
	OpenAI struct {
		APIKey string `mapstructure:"api_key"` // Loaded from env, never from YAML
		Model  string `mapstructure:"model"`
	} `mapstructure:"openai"`
	Session struct {
		TTLHours     int `mapstructure:"ttl_hours"`     // Idle sessions older than this are evicted; 0 disables the sweep
		SweepMinutes int `mapstructure:"sweep_minutes"` // How often the sweeper runs
	} `mapstructure:"session"`
}

// AppConfig is the global configuration instance.
var AppConfig Config

// LoadConfig loads configuration from file and environment variables.
func LoadConfig() {
	viper.SetConfigName("config")    // Name of config file (without extension)
	viper.SetConfigType("yaml")      // REQUIRED if the config file does not have the extension in the name
	viper.AddConfigPath("./config")  // Path to look for the config file in
	viper.AddConfigPath(".")         // Optionally look for config in the working directory
	viper.AddConfigPath("../config") // For running from locations like tests

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "data/safetyhub.db")
	viper.SetDefault("templates.dir", "templates")
	viper.SetDefault("exports.dir", "exports")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("session.ttl_hours", 24)
	viper.SetDefault("session.sweep_minutes", 30)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration into AppConfig struct: %v", err)
	}

	// Environment variable overrides
	if port := os.Getenv("SERVER_PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable SERVER_PORT: %s", port)
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		AppConfig.Database.DSN = dsn
		log.Println("INFO: [Config] Database DSN overridden by environment variable DATABASE_DSN.")
	}

	// The OpenAI key only ever comes from the environment.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		AppConfig.OpenAI.APIKey = key
		log.Println("INFO: [Config] Loaded OpenAI API key from environment variable OPENAI_API_KEY.")
	} else {
		log.Println("WARN: [Config] OPENAI_API_KEY is not set. Checklist parsing from documents will be unavailable.")
	}

	log.Println("INFO: [Config] Configuration loading complete.")
}
