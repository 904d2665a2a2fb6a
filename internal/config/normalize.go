package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEndpoints()
	c.normalizeSync()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	return nil
}

func (c *Config) normalizeEndpoints() {
	c.Source.URL = strings.TrimSpace(c.Source.URL)
	c.Append.URL = strings.TrimSpace(c.Append.URL)
	c.Append.DefaultAuthor = strings.TrimSpace(c.Append.DefaultAuthor)
	if c.Source.RequestTimeout <= 0 {
		c.Source.RequestTimeout = defaultSourceTimeoutSeconds
	}
	if c.Append.RequestTimeout <= 0 {
		c.Append.RequestTimeout = defaultAppendTimeoutSeconds
	}
}

func (c *Config) normalizeSync() {
	if c.Sync.ResyncDelayMS <= 0 {
		c.Sync.ResyncDelayMS = defaultResyncDelayMS
	}
	if c.Sync.CycleTimeout <= 0 {
		c.Sync.CycleTimeout = defaultCycleTimeoutSeconds
	}
	if c.Sync.PollInterval <= 0 {
		c.Sync.PollInterval = defaultPollIntervalSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
