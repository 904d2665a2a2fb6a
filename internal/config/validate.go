package config

import (
	"fmt"
	"net/url"

	"rollcall/internal/services"
)

// Validate ensures the configuration is usable. Failures are tagged as
// configuration errors; they block the triggering action and are never
// retried automatically.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateAppend(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	if c.Source.URL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/rollcall/config.toml"
		}
		return services.Wrap(services.ErrConfiguration, "config", "source.url",
			fmt.Sprintf("record source URL is required; edit %s (create with 'rollcall config init')", defaultPath), nil)
	}
	if err := validateHTTPURL(c.Source.URL); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "source.url", "", err)
	}
	return nil
}

func (c *Config) validateAppend() error {
	if c.Append.URL == "" {
		return services.Wrap(services.ErrConfiguration, "config", "append.url",
			"append endpoint URL is required", nil)
	}
	if err := validateHTTPURL(c.Append.URL); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "append.url", "", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return services.Wrap(services.ErrConfiguration, "config", "logging.format",
			fmt.Sprintf("unsupported value %q", c.Logging.Format), nil)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL %q must use http or https", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL %q is missing a host", raw)
	}
	return nil
}
