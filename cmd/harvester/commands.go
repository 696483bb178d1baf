package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"IndexHarvester/internal/config"
	"IndexHarvester/internal/scheduler"
)

func newRootCmd() *cobra.Command {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "harvester",
		Short: "Download daily closes for every constituent of an index",
		Long: `harvester scrapes the constituent list of a stock index, downloads the daily
closing price history of every ticker and writes them as one table keyed by date.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultPath, "configuration file path")

	runCmd := newRunCmd(&cfgPath)
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newScheduleCmd(&cfgPath))
	rootCmd.AddCommand(newTickersCmd(&cfgPath))
	rootCmd.AddCommand(newConfigCmd(&cfgPath))
	return rootCmd
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// loadWithFlags loads the config and applies run flag overrides before validation.
func loadWithFlags(cmd *cobra.Command, cfgPath string) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("start"); v != "" {
		cfg.Fetch.Start = v
	}
	if v, _ := flags.GetString("end"); v != "" {
		cfg.Fetch.End = v
	}
	if v, _ := flags.GetString("provider"); v != "" {
		cfg.Fetch.Provider = v
	}
	if v, _ := flags.GetString("output"); v != "" {
		cfg.Output.Path = v
		if !flags.Changed("format") {
			cfg.Output.Format = config.FormatFromPath(v)
		}
	}
	if v, _ := flags.GetString("format"); v != "" {
		cfg.Output.Format = v
	}
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one harvest and write the output file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWithFlags(cmd, *cfgPath)
			if err != nil {
				return err
			}
			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			report, err := p.Run(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Saved data to %s\n", report.OutputPath)
			return nil
		},
	}
	cmd.Flags().String("start", "", "first date to download, YYYY-MM-DD (inclusive)")
	cmd.Flags().String("end", "", "last date to download, YYYY-MM-DD (exclusive) or \"today\"")
	cmd.Flags().String("provider", "", "price provider: yahoo, financego or eodhd")
	cmd.Flags().String("output", "", "output file path")
	cmd.Flags().String("format", "", "output format: csv or parquet")
	return cmd
}

func newScheduleCmd(cfgPath *string) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Rerun the harvest on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			sched := scheduler.NewScheduler(ctx, p, newNotifier(cfg))
			if err := sched.Register(cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if runNow || os.Getenv("RUN_ON_START") == "true" {
				log.Println("[INFO] running harvest now")
				sched.RunAsync()
			}

			log.Printf("[INFO] IndexHarvester is running with schedule %q. Press Ctrl+C to stop.", cfg.Schedule.Cron)
			<-ctx.Done()
			log.Println("[INFO] shutdown signal received, stopping...")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "run one harvest immediately on start")
	return cmd
}

func newTickersCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tickers",
		Short: "Print the scraped and normalized ticker list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			tickers, err := newLister(cfg).List(ctx)
			if err != nil {
				return err
			}
			for _, t := range tickers {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func newConfigCmd(cfgPath *string) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			masked := *cfg
			masked.EODHD.APIKey = mask(masked.EODHD.APIKey)
			masked.Telegram.BotToken = mask(masked.Telegram.BotToken)
			out, err := yaml.Marshal(&masked)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return configCmd
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}
