package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	StimuliPath  string
	AdminUser    string
	AdminPass    string
	SessionTTL   time.Duration
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var ttlMinutes int

	fs := flag.NewFlagSet("sound-survey", flag.ContinueOnError)

	// Network and data config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database path or URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.StimuliPath, "s", "", "Stimulus list CSV file")
	fs.IntVar(&ttlMinutes, "session-ttl", 0, "Session lifetime in minutes")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminUser, "admin-user", "", "Admin username (prefer env)")
	fs.StringVar(&cfg.AdminPass, "admin-pass", "", "Admin password (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "data/experiment.db"
	}

	if cfg.StimuliPath == "" {
		cfg.StimuliPath = os.Getenv("STIMULI_FILE")
		if cfg.StimuliPath == "" {
			cfg.StimuliPath = "stimuli_list.csv"
		}
	}

	if ttlMinutes == 0 {
		if ttlStr := os.Getenv("SESSION_TTL_MINUTES"); ttlStr != "" {
			m, err := strconv.Atoi(ttlStr)
			if err != nil || m <= 0 {
				return Config{}, errors.New("invalid SESSION_TTL_MINUTES env variable")
			}
			ttlMinutes = m
		} else {
			ttlMinutes = 120
		}
	}
	cfg.SessionTTL = time.Duration(ttlMinutes) * time.Minute

	if cfg.AdminUser == "" {
		cfg.AdminUser = os.Getenv("ADMIN_USER")
		if cfg.AdminUser == "" {
			cfg.AdminUser = "admin"
		}
	}

	// Password - MUST be provided
	if cfg.AdminPass == "" {
		cfg.AdminPass = os.Getenv("ADMIN_PASS")
	}
	if cfg.AdminPass == "" {
		return Config{}, errors.New("ADMIN_PASS required")
	}

	return cfg, nil
}
