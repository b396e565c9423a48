package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"PricePulse/internal/collector"
	"PricePulse/internal/config"
	"PricePulse/internal/model"
	"PricePulse/internal/pipeline"
	"PricePulse/internal/recorder"
	"PricePulse/internal/render"
	"PricePulse/internal/scheduler"
	"PricePulse/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PricePulse starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher collector.Fetcher
	if os.Getenv("MOCK_DATA") == "true" {
		fetcher = &collector.MockFetcher{Price: 50000}
	} else {
		fetcher = collector.NewCoinGeckoFetcher(cfg.DataSource.BaseURL, cfg.DataSource.AssetID, cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init store and pipeline
	st := store.New(cfg.Currency())
	pl := pipeline.New(ctx, fetcher, st, rec, cfg.DataSource.HistoryDays)

	// The console renderer is the presentation layer: re-render on every
	// committed mutation.
	st.Subscribe(func(view model.PipelineView) {
		fmt.Print(render.FormatSnapshot(view))
	})

	// Fetch both kinds for the default currency right away.
	pl.RefreshCurrent()
	pl.RefreshHistory()

	// Periodic current-price refresh
	sched := scheduler.NewScheduler(time.Duration(cfg.Refresh.IntervalSeconds)*time.Second, pl.RefreshCurrent)
	sched.Start()

	// Daily history refresh
	jobs := scheduler.NewCronJobs()
	if err := jobs.RegisterHistoryRefresh(cfg.Refresh.HistoryCron, pl.RefreshHistory); err != nil {
		log.Fatalf("[FATAL] register cron jobs: %v", err)
	}
	jobs.Start()

	// Currency selection from stdin
	go readCommands(ctx, pl, st)

	log.Println("[INFO] PricePulse is running. Type a currency code to switch. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	// Silence the triggers first so no new fetch starts, then cancel and
	// drain the in-flight ones before the recorder closes.
	sched.Stop()
	jobs.Stop()
	cancel()
	pl.Wait()
	log.Println("[INFO] PricePulse stopped")
}

// readCommands maps typed input to selection changes.
func readCommands(ctx context.Context, pl *pipeline.Pipeline, st *store.PriceStore) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/status":
			fmt.Print(render.FormatSnapshot(st.Snapshot()))
		default:
			currency, ok := model.ParseCurrency(line)
			if !ok {
				fmt.Printf("unknown currency %q, supported: %v\n", line, model.Currencies)
				continue
			}
			pl.SelectCurrency(currency)
		}
	}
}
