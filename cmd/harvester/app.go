package main

import (
	"fmt"
	"log"

	"IndexHarvester/internal/collector"
	"IndexHarvester/internal/config"
	"IndexHarvester/internal/httpclient"
	"IndexHarvester/internal/lister"
	"IndexHarvester/internal/notifier"
	"IndexHarvester/internal/pipeline"
	"IndexHarvester/internal/writer"
)

// loadConfig loads and validates the configuration file at path.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := checkConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func checkConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if !cfg.Pinned() {
		log.Printf("[WARN] date range %s..%s is not pinned, output will differ between days", cfg.Fetch.Start, cfg.Fetch.End)
	}
	return nil
}

func newLister(cfg *config.Config) *lister.Lister {
	client := httpclient.New(cfg.Fetch.Timeout, cfg.UserAgent, cfg.Proxy)
	return lister.New(client, cfg.Source.URL, cfg.Source.TableID, cfg.Source.Column)
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	client := httpclient.New(cfg.Fetch.Timeout, cfg.UserAgent, cfg.Proxy)
	switch cfg.Fetch.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(client, cfg.Adjust()), nil
	case "financego":
		return collector.NewFinanceGoFetcher(cfg.Adjust()), nil
	case "eodhd":
		return collector.NewEODHDFetcher(client, cfg.EODHD.APIKey, cfg.EODHD.Exchange, cfg.Adjust()), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Fetch.Provider)
	}
}

func newPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	start, end, err := cfg.DateRange()
	if err != nil {
		return nil, err
	}
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	w, err := writer.New(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] data source: %s, range %s..%s (end exclusive), adjusted=%v",
		fetcher.Name(), cfg.Fetch.Start, cfg.Fetch.End, cfg.Adjust())

	col := collector.NewCollector(fetcher, start, end, cfg.PauseDuration())
	return pipeline.New(newLister(cfg), col, w, cfg.Output.Path), nil
}

func newNotifier(cfg *config.Config) *notifier.TelegramNotifier {
	client := httpclient.New(cfg.Fetch.Timeout, "", cfg.Proxy)
	return notifier.NewTelegramNotifier(client, cfg.Telegram.BotToken, cfg.Telegram.ChatID)
}
