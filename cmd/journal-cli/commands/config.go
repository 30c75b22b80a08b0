package commands

import (
	"errors"
	"fmt"
	"journal-backend/internal/scrapers/journal"
	"journal-backend/lib/configutil"
	configlibsql "journal-backend/lib/configutil/libsql"
	"os"
	"time"
)

const defaultRefreshCron = "@every 30m"

type Config struct {
	BaseUrl   string `json:"base_url" yaml:"base_url"`
	PeriodId  string `json:"period_id" yaml:"period_id"`
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// RequestTimeout is a Go duration string, empty means requests may take
	// as long as the portal needs.
	RequestTimeout string              `json:"request_timeout" yaml:"request_timeout"`
	Database       configlibsql.Struct `json:"database" yaml:"database"`
	RefreshCron    string              `json:"refresh_cron" yaml:"refresh_cron"`
}

// readConfig reads the config at path, a missing file yields the defaults.
func readConfig(path string) (Config, error) {
	config, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		config = Config{}
	} else if err != nil {
		return Config{}, err
	}

	if config.Database.File == "" && config.Database.Url == "" {
		config.Database.File = "journal.db"
	}
	if config.RefreshCron == "" {
		config.RefreshCron = defaultRefreshCron
	}
	return config, nil
}

func (c Config) ClientOptions() (journal.ClientOptions, error) {
	opts := journal.ClientOptions{
		BaseUrl:   c.BaseUrl,
		UserAgent: c.UserAgent,
		PeriodId:  c.PeriodId,
	}
	if c.RequestTimeout != "" {
		timeout, err := time.ParseDuration(c.RequestTimeout)
		if err != nil {
			return journal.ClientOptions{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		if timeout < 0 {
			return journal.ClientOptions{}, fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout)
		}
		opts.Timeout = timeout
	}
	return opts, nil
}
