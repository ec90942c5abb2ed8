package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BaSui01/policyswarm/config"
	"github.com/BaSui01/policyswarm/internal/report"
)

const shutdownTimeout = 15 * time.Second

type runOptions struct {
	turns       int
	temperature float64
	personas    string
	outputDir   string
	serve       bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the conversation and write the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			cfg, err := root.loadConfig(func(c *config.Config) {
				if flags.Changed("turns") {
					c.Run.TotalTurns = opts.turns
				}
				if flags.Changed("temperature") {
					c.LLM.Temperature = opts.temperature
				}
				if flags.Changed("personas") {
					c.Run.PersonasFile = opts.personas
				}
				if flags.Changed("output") {
					c.Report.OutputDir = opts.outputDir
				}
				if flags.Changed("serve") {
					c.Server.Enabled = opts.serve
				}
			})
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runConversation(ctx, cmd, cfg, logger)
		},
	}

	cmd.Flags().IntVar(&opts.turns, "turns", 0, "total turns (overrides run.total_turns)")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", 0, "sampling temperature (overrides llm.temperature)")
	cmd.Flags().StringVar(&opts.personas, "personas", "", "personas YAML file (overrides run.personas_file)")
	cmd.Flags().StringVar(&opts.outputDir, "output", "", "directory for results and chart (overrides report.output_dir)")
	cmd.Flags().BoolVar(&opts.serve, "serve", false, "start the monitor server during the run")

	return cmd
}

func runConversation(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting policyswarm",
		zap.String("version", Version),
		zap.String("git_commit", GitCommit),
		zap.Int("total_turns", cfg.Run.TotalTurns),
		zap.String("model", cfg.LLM.Model),
		zap.Float64("temperature", cfg.LLM.Temperature),
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		a.close(shutdownCtx)
	}()

	engine, err := a.newEngine()
	if err != nil {
		return err
	}
	if err := a.startMonitor(engine); err != nil {
		return err
	}

	// Run 仅在重复启动时返回 nil 结果；取消或致命错误后仍写出已有结果
	res, err := engine.Run(ctx)
	if res == nil {
		return err
	}

	reporter := report.New(cfg.Report,
		report.WithOutput(cmd.OutOrStdout()),
		report.WithLogger(logger),
	)
	if _, err := reporter.Write(context.WithoutCancel(ctx), report.NewResults(res, cfg.LLM.Temperature)); err != nil {
		return err
	}

	return res.Err
}
