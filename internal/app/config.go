package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	WorkflowPath   string // .hcl, .json, .yaml or .yml
	WithTimestamps bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	Timeout         time.Duration

	// Observer* configure the optional socket.io visit forwarder.
	ObserverURL       string
	ObserverNamespace string
	ObserverEvent     string
	ObserverInsecure  bool
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkflowPath == "" {
		return nil, errors.New("WorkflowPath is a required configuration field and cannot be empty")
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("HealthcheckPort must be between 0 and 65535, got %d", cfg.HealthcheckPort)
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("Timeout cannot be negative, got %s", cfg.Timeout)
	}

	if cfg.ObserverURL != "" {
		u, err := url.Parse(cfg.ObserverURL)
		if err != nil {
			return nil, fmt.Errorf("ObserverURL is not a valid URL: %w", err)
		}
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return nil, fmt.Errorf("ObserverURL must use http, https, ws or wss, got %q", u.Scheme)
		}
	}
	if cfg.ObserverNamespace == "" {
		cfg.ObserverNamespace = "/"
	}
	if cfg.ObserverEvent == "" {
		cfg.ObserverEvent = "visit"
	}

	return &cfg, nil
}
