package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateLaTeX(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tailor/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set ANTHROPIC_API_KEY env var or edit %s (create with 'tailor config init')", defaultPath)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.RetryMaxAttempts <= 0 {
		return errors.New("llm.retry_max_attempts must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MaxFixAttempts < 0 {
		return errors.New("pipeline.max_fix_attempts must not be negative")
	}
	if c.Pipeline.MaxShrinkAttempts < 0 {
		return errors.New("pipeline.max_shrink_attempts must not be negative")
	}
	if c.Pipeline.TargetPages < 1 {
		return errors.New("pipeline.target_pages must be at least 1")
	}
	return nil
}

func (c *Config) validateLaTeX() error {
	if c.LaTeX.Command == "" {
		return errors.New("latex.command must be set")
	}
	if c.LaTeX.CompileTimeoutSeconds <= 0 {
		return errors.New("latex.compile_timeout_seconds must be positive")
	}
	if c.LaTeX.Passes < 1 || c.LaTeX.Passes > 4 {
		return errors.New("latex.passes must be between 1 and 4")
	}
	if c.LaTeX.ErrorExcerptLimit <= 0 {
		return errors.New("latex.error_excerpt_limit must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
