package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"bus-telemetry-dashboard/internal/models"
)

// Config holds the dashboard settings
type Config struct {
	Host     string
	Port     int
	DataDir  string
	DBPath   string
	WebDir   string
	MapToken string

	// Line chart pair shown before any map point is hovered
	DefaultPair models.DriverVehicle
	// Dropdown driver for new sessions; empty means the dataset default
	DefaultDriver string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; variables already set in
// the environment win.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit .env path
func LoadFile(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	cfg := &Config{
		Host:     getEnv("DASH_HOST", "0.0.0.0"),
		DataDir:  getEnv("DASH_DATA_DIR", "./data"),
		DBPath:   getEnv("DASH_DB_PATH", "dashboard_sessions.db"),
		WebDir:   getEnv("DASH_WEB_DIR", "./web/"),
		MapToken: os.Getenv("MAPBOX_TOKEN"),
		DefaultPair: models.DriverVehicle{
			Driver:  getEnv("DASH_DEFAULT_DRIVER", "Ridwan"),
			Vehicle: getEnv("DASH_DEFAULT_VEHICLE", "SBS6289D"),
		},
		DefaultDriver: os.Getenv("DASH_DROPDOWN_DRIVER"),
	}

	port, err := strconv.Atoi(getEnv("DASH_PORT", "8050"))
	if err != nil {
		return nil, fmt.Errorf("invalid DASH_PORT: %w", err)
	}
	cfg.Port = port

	return cfg, cfg.Validate()
}

// Validate checks the settings that would otherwise fail late
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DataDir == "" {
		return errors.New("data directory is required")
	}
	if c.DefaultPair.Driver == "" || c.DefaultPair.Vehicle == "" {
		return errors.New("default driver and vehicle are required")
	}
	return nil
}

// Addr is the host:port the server listens on
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
