package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tailor/internal/config"
)

// commandContext carries shared CLI state: flag values and the lazily
// loaded configuration.
type commandContext struct {
	configFlag *string
	serverFlag *string
	tokenFlag  *string

	once sync.Once
	cfg  *config.Config
	err  error
}

func newCommandContext(configFlag, serverFlag, tokenFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, serverFlag: serverFlag, tokenFlag: tokenFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(func() {
		path := ""
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.cfg, _, _, c.err = config.Load(path)
	})
	if c.err != nil {
		return nil, fmt.Errorf("load config: %w", c.err)
	}
	return c.cfg, nil
}

// client builds an API client pointed at the daemon: the --server flag wins,
// otherwise the configured bind address is assumed to be local.
func (c *commandContext) client() (*apiClient, error) {
	if c.serverFlag != nil {
		if server := strings.TrimSpace(*c.serverFlag); server != "" {
			return newAPIClient(server, c.token()), nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, fmt.Errorf("no daemon address: set paths.api_bind or pass --server")
	}
	token := c.token()
	if token == "" {
		token = strings.TrimSpace(cfg.Paths.APIToken)
	}
	return newAPIClient("http://"+bind, token), nil
}

func (c *commandContext) token() string {
	if c.tokenFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.tokenFlag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var serverFlag string
	var tokenFlag string

	ctx := newCommandContext(&configFlag, &serverFlag, &tokenFlag)

	rootCmd := &cobra.Command{
		Use:           "tailor",
		Short:         "Resume optimization CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Daemon base URL (default: configured api_bind)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Bearer token for the daemon API")

	rootCmd.AddCommand(newOptimizeCommand(ctx))
	rootCmd.AddCommand(newCompileCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
