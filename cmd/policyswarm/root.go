package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BaSui01/policyswarm/config"
)

type rootOptions struct {
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "policyswarm",
		Short:         "Multi-agent political framework simulation",
		Long:          "policyswarm runs a panel of LLM personas that draft, debate and score a political framework turn by turn, summarising the conversation hierarchically.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files loaded before the environment")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newPersonasCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// loadConfig 加载并校验配置
func (o *rootOptions) loadConfig(override func(*config.Config)) (*config.Config, error) {
	loader := config.NewLoader().WithDotEnv(o.envFiles...)
	if o.configPath != "" {
		loader = loader.WithConfigPath(o.configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
