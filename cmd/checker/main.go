package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/screwyprof/airdrop/airdrop"
	"github.com/screwyprof/airdrop/airdrop/config"
	"github.com/screwyprof/airdrop/airdrop/store/filestore"
	"github.com/screwyprof/airdrop/pkg/logger"
	"github.com/screwyprof/airdrop/pkg/mefoundation"
	"github.com/screwyprof/airdrop/pkg/proxy"
	"github.com/screwyprof/airdrop/pkg/textfile"
)

func main() {
	// Load configuration
	cfg := config.New()

	// Initialize logger and set as default
	log := logger.NewFromConfig(logger.Config{
		LogLevel:         cfg.LogLevel,
		LogHumanFriendly: cfg.LogHumanFriendly,
	})
	slog.SetDefault(log)

	// Prepare context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Inputs
	secrets, err := textfile.ReadLines(cfg.SecretsFile)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read secrets", slog.Any("error", err))
		os.Exit(1)
	}

	proxies, err := loadProxies(cfg.ProxiesFile)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load proxies", slog.Any("error", err))
		os.Exit(1)
	}

	// Result file
	sink, err := filestore.Open(cfg.EligibleFile)
	if err != nil {
		log.ErrorContext(ctx, "Failed to open result file", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close result file", slog.Any("error", err))
		}
	}()

	// Service client
	client := mefoundation.NewClient(
		mefoundation.WithWebURL(cfg.WebURL),
		mefoundation.WithAPIURL(cfg.APIURL),
		mefoundation.WithTimeout(cfg.HttpClientTimeout),
		mefoundation.WithRateLimit(cfg.RequestsPerSecond, cfg.RequestBurst),
		mefoundation.WithLogger(log),
	)

	checker := airdrop.NewChecker(
		airdrop.NewWorkflow(client, nil),
		secrets,
		proxies,
		sink,
		airdrop.WithParallelism(cfg.Parallelism),
		airdrop.WithBatchSize(cfg.BatchSize),
		airdrop.WithProxyMode(airdrop.ProxyMode(cfg.ProxyMode)),
		airdrop.WithSkipRecorded(cfg.SkipRecorded),
	)

	// Start run
	log.InfoContext(ctx, "Starting allocation check",
		slog.String("secrets", cfg.SecretsFile),
		slog.String("output", cfg.EligibleFile),
		slog.Int("alreadyRecorded", sink.Len()),
	)
	events, done := checker.Start(ctx)

	// Subscribe to events for logging
	subCloser := setupEventLogging(ctx, events, log)
	defer subCloser()

	// Wait for the run to finish
	<-done
	if ctx.Err() != nil {
		log.InfoContext(ctx, "Check interrupted, unfinished wallets will be retried on the next run")
	}
}

func loadProxies(path string) (*proxy.Pool, error) {
	lines, err := textfile.ReadLines(path)
	if err != nil {
		return nil, err
	}
	return proxy.NewPool(lines)
}

// setupEventLogging configures event handlers using slog directly
func setupEventLogging(ctx context.Context, events <-chan airdrop.Event, log *slog.Logger) func() {
	return airdrop.NewSubscriber(events,
		airdrop.OnRunStarted(func(event airdrop.RunStarted) {
			log.InfoContext(ctx, "Run started",
				slog.String("startedAt", event.StartedAt.Format(logger.BritishTimeFormat)),
				slog.Int("total", event.Total),
				slog.Int("parallelism", event.Parallelism),
				slog.Int("batchSize", event.BatchSize),
				slog.Int("proxies", event.Proxies),
			)
		}),
		airdrop.OnBatchDispatched(func(event airdrop.BatchDispatched) {
			log.DebugContext(ctx, "Batch dispatched",
				slog.Int("from", event.From+1),
				slog.Int("to", event.To),
			)
		}),
		airdrop.OnWalletEligible(func(event airdrop.WalletEligible) {
			attrs := []any{slog.String("address", event.Address)}
			if event.Allocation.Known {
				attrs = append(attrs, slog.String("allocation", event.Allocation.Human()))
			}
			if event.FetchErr != nil {
				attrs = append(attrs, slog.Any("fetchError", event.FetchErr))
			}
			log.InfoContext(ctx, "Eligible", attrs...)
		}),
		airdrop.OnWalletNotEligible(func(event airdrop.WalletNotEligible) {
			log.InfoContext(ctx, "Not eligible",
				slog.String("address", event.Address),
				slog.String("verdict", event.Verdict.String()),
			)
		}),
		airdrop.OnWalletSkipped(func(event airdrop.WalletSkipped) {
			log.DebugContext(ctx, "Already recorded", slog.String("address", event.Address))
		}),
		airdrop.OnTaskFailed(func(event airdrop.TaskFailed) {
			attrs := []any{
				slog.Int("secret", event.Index+1),
				slog.String("address", event.Address),
				slog.String("proxy", event.Proxy),
				slog.Int("attempt", event.Attempt),
				slog.Any("error", event.Err),
			}
			if event.Final {
				log.ErrorContext(ctx, "Check failed", attrs...)
				return
			}
			log.WarnContext(ctx, "Check attempt failed, trying next proxy", attrs...)
		}),
		airdrop.OnTaskPanicked(func(event airdrop.TaskPanicked) {
			log.ErrorContext(ctx, "Check panicked",
				slog.Int("secret", event.Index+1),
				slog.Any("panic", event.Value),
				slog.String("stack", string(event.Stack)),
			)
		}),
		airdrop.OnRunDone(func(event airdrop.RunDone) {
			log.InfoContext(ctx, "Run completed",
				slog.Int("total", event.Total),
				slog.Int("eligible", event.Eligible),
				slog.Int("notEligible", event.NotEligible),
				slog.Int("alreadyProcessed", event.AlreadyProcessed),
				slog.Int("failed", event.Failed),
				slog.Duration("duration", event.Duration),
			)
		}),
	)
}
