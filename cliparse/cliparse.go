package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          int
	MongoURI      string
	Database      string
	SweepInterval time.Duration
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("one-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.MongoURI, "m", "", "MongoDB connection URI")
	fs.StringVar(&cfg.Database, "db", "", "Database name")
	fs.DurationVar(&cfg.SweepInterval, "sweep", 0, "Consistency sweep interval")

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
			cfg.Port = 3319 // default
		}
	}

	if cfg.MongoURI == "" {
		cfg.MongoURI = os.Getenv("MONGO_URI")
	}
	if cfg.MongoURI == "" {
		return Config{}, errors.New("MongoDB URI required (use -m or MONGO_URI env)")
	}

	if cfg.Database == "" {
		cfg.Database = os.Getenv("DATABASE")
		if cfg.Database == "" {
			cfg.Database = "onevote"
		}
	}

	if cfg.SweepInterval == 0 {
		if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
			interval, err := time.ParseDuration(raw)
			if err != nil {
				return Config{}, errors.New("invalid SWEEP_INTERVAL env variable")
			}
			cfg.SweepInterval = interval
		} else {
			cfg.SweepInterval = 5 * time.Minute
		}
	}
	if cfg.SweepInterval < 0 {
		return Config{}, errors.New("sweep interval must be positive")
	}

	return cfg, nil
}
