package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizePipeline()
	c.normalizeLaTeX()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StaticDir) != "" {
		if c.Paths.StaticDir, err = expandPath(c.Paths.StaticDir); err != nil {
			return fmt.Errorf("paths.static_dir: %w", err)
		}
	} else {
		c.Paths.StaticDir = ""
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("ANTHROPIC_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryMaxAttempts <= 0 {
		c.LLM.RetryMaxAttempts = defaultLLMRetryAttempts
	}
}

func (c *Config) normalizePipeline() {
	if c.Pipeline.TargetPages <= 0 {
		c.Pipeline.TargetPages = defaultTargetPages
	}
	if c.Pipeline.MaxFixAttempts < 0 {
		c.Pipeline.MaxFixAttempts = 0
	}
	if c.Pipeline.MaxShrinkAttempts < 0 {
		c.Pipeline.MaxShrinkAttempts = 0
	}
}

func (c *Config) normalizeLaTeX() {
	c.LaTeX.Command = strings.TrimSpace(c.LaTeX.Command)
	if c.LaTeX.Command == "" {
		c.LaTeX.Command = defaultLaTeXCommand
	}
	if c.LaTeX.CompileTimeoutSeconds <= 0 {
		c.LaTeX.CompileTimeoutSeconds = defaultCompileTimeout
	}
	if c.LaTeX.Passes <= 0 {
		c.LaTeX.Passes = defaultCompilePasses
	}
	if c.LaTeX.ErrorExcerptLimit <= 0 {
		c.LaTeX.ErrorExcerptLimit = defaultErrorExcerptLimit
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
