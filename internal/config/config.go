package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `json:"server"`
	Database   DatabaseConfig   `json:"database"`
	Mongo      MongoConfig      `json:"mongo"`
	AWS        AWSConfig        `json:"aws"`
	Security   SecurityConfig   `json:"security"`
	Onboarding OnboardingConfig `json:"onboarding"`
	Logging    LoggingConfig    `json:"logging"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig represents the relational database configuration, shared
// by the GORM directory store and the sqlx catalog reader.
type DatabaseConfig struct {
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"db_name"`
	SSLMode        string        `json:"ssl_mode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleConns   int           `json:"max_idle_conns"`
	MaxLifetime    time.Duration `json:"max_lifetime"`
}

// MongoConfig holds the onboarding document store settings
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// AWSConfig holds the settings for S3 uploads, SES email and SNS SMS
type AWSConfig struct {
	Region         string `json:"region"`
	DocumentBucket string `json:"document_bucket"`
	SenderEmail    string `json:"sender_email"`
}

// SecurityConfig holds token signing settings
type SecurityConfig struct {
	JWTSecret string        `json:"jwt_secret"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// OnboardingConfig tunes the workflow engine
type OnboardingConfig struct {
	// StalledThresholdDays classifies in-progress records with no
	// activity for this many days as stalled.
	StalledThresholdDays int `json:"stalled_threshold_days"`
	// ReminderCron is the schedule for the stalled-onboarding sweep.
	ReminderCron string `json:"reminder_cron"`
}

// LoggingConfig
type LoggingConfig struct {
	Level string `json:"level"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    os.Getenv("USER"),
			DBName:  "consultbridge_portal",
			SSLMode: "disable",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "consultbridge_onboarding",
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Security: SecurityConfig{
			TokenTTL: 24 * time.Hour,
		},
		Onboarding: OnboardingConfig{
			StalledThresholdDays: 7,
			ReminderCron:         "0 9 * * *",
		},
	}

	// Load from file if exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	overrideWithEnv(config)

	return config, nil
}

func overrideWithEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dbHost := os.Getenv("DATABASE_HOST"); dbHost != "" {
		config.Database.Host = dbHost
	}
	if dbPort := os.Getenv("DATABASE_PORT"); dbPort != "" {
		if p, err := strconv.Atoi(dbPort); err == nil {
			config.Database.Port = p
		}
	}
	if dbUser := os.Getenv("DATABASE_USER"); dbUser != "" {
		config.Database.User = dbUser
	}
	if dbPass := os.Getenv("DATABASE_PASSWORD"); dbPass != "" {
		config.Database.Password = dbPass
	}
	if dbName := os.Getenv("DATABASE_DBNAME"); dbName != "" {
		config.Database.DBName = dbName
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		config.Mongo.URI = uri
	}
	if db := os.Getenv("MONGO_DATABASE"); db != "" {
		config.Mongo.Database = db
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		config.AWS.Region = region
	}
	if bucket := os.Getenv("DOCUMENT_BUCKET"); bucket != "" {
		config.AWS.DocumentBucket = bucket
	}
	if sender := os.Getenv("SENDER_EMAIL"); sender != "" {
		config.AWS.SenderEmail = sender
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Security.JWTSecret = secret
	}
	if days := os.Getenv("STALLED_THRESHOLD_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			config.Onboarding.StalledThresholdDays = d
		}
	}
	if cron := os.Getenv("REMINDER_CRON"); cron != "" {
		config.Onboarding.ReminderCron = cron
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// GetDatabaseURL returns the database connection string
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StalledThreshold returns the stalled cutoff as a duration
func (c *OnboardingConfig) StalledThreshold() time.Duration {
	return time.Duration(c.StalledThresholdDays) * 24 * time.Hour
}
