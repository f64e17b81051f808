package config

const (
	defaultScratchDir        = "~/.local/share/tailor/scratch"
	defaultLogDir            = "~/.local/share/tailor/logs"
	defaultDataDir           = "~/.local/share/tailor"
	defaultAPIBind           = "127.0.0.1:8095"
	defaultLLMBaseURL        = "https://api.anthropic.com"
	defaultLLMModel          = "claude-sonnet-4-5"
	defaultLLMMaxTokens      = 8192
	defaultLLMTimeoutSeconds = 120
	defaultLLMRetryAttempts  = 3
	defaultMaxFixAttempts    = 2
	defaultMaxShrinkAttempts = 2
	defaultTargetPages       = 1
	defaultLaTeXCommand      = "pdflatex"
	defaultCompileTimeout    = 60
	defaultCompilePasses     = 2
	defaultErrorExcerptLimit = 2000
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			LogDir:     defaultLogDir,
			DataDir:    defaultDataDir,
			APIBind:    defaultAPIBind,
		},
		LLM: LLM{
			BaseURL:          defaultLLMBaseURL,
			Model:            defaultLLMModel,
			MaxTokens:        defaultLLMMaxTokens,
			TimeoutSeconds:   defaultLLMTimeoutSeconds,
			RetryMaxAttempts: defaultLLMRetryAttempts,
		},
		Pipeline: Pipeline{
			MaxFixAttempts:    defaultMaxFixAttempts,
			MaxShrinkAttempts: defaultMaxShrinkAttempts,
			TargetPages:       defaultTargetPages,
		},
		LaTeX: LaTeX{
			Command:               defaultLaTeXCommand,
			CompileTimeoutSeconds: defaultCompileTimeout,
			Passes:                defaultCompilePasses,
			ErrorExcerptLimit:     defaultErrorExcerptLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
