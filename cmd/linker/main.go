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

	claims, err := textfile.ReadLines(cfg.ClaimSecretsFile)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read claim secrets", slog.Any("error", err))
		os.Exit(1)
	}

	proxyLines, err := textfile.ReadLines(cfg.ProxiesFile)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read proxies", slog.Any("error", err))
		os.Exit(1)
	}
	proxies, err := proxy.NewPool(proxyLines)
	if err != nil {
		log.ErrorContext(ctx, "Failed to parse proxies", slog.Any("error", err))
		os.Exit(1)
	}

	// Failure file
	failures, err := filestore.Open(cfg.FailedFile)
	if err != nil {
		log.ErrorContext(ctx, "Failed to open failure file", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := failures.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close failure file", slog.Any("error", err))
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

	linker, err := airdrop.NewLinker(
		airdrop.NewWorkflow(client, nil),
		secrets,
		claims,
		proxies,
		failures,
		airdrop.WithParallelism(cfg.Parallelism),
		airdrop.WithBatchSize(cfg.BatchSize),
		airdrop.WithLinkRetry(cfg.LinkMaxAttempts, cfg.LinkRetryDelay, cfg.LinkRetryMaxDelay),
	)
	if err != nil {
		log.ErrorContext(ctx, "Failed to prepare linker", slog.Any("error", err))
		os.Exit(1)
	}

	// Start run
	log.InfoContext(ctx, "Starting wallet linking",
		slog.String("secrets", cfg.SecretsFile),
		slog.Int("claimWallets", len(claims)),
		slog.String("failures", cfg.FailedFile),
	)
	events, done := linker.Start(ctx)

	// Subscribe to events for logging
	subCloser := setupEventLogging(ctx, events, log)
	defer subCloser()

	// Wait for the run to finish
	<-done
	if ctx.Err() != nil {
		log.InfoContext(ctx, "Linking interrupted")
	}
}

// setupEventLogging configures event handlers using slog directly
func setupEventLogging(ctx context.Context, events <-chan airdrop.Event, log *slog.Logger) func() {
	return airdrop.NewSubscriber(events,
		airdrop.OnRunStarted(func(event airdrop.RunStarted) {
			log.InfoContext(ctx, "Run started",
				slog.String("startedAt", event.StartedAt.Format(logger.BritishTimeFormat)),
				slog.Int("total", event.Total),
				slog.Int("parallelism", event.Parallelism),
				slog.Int("proxies", event.Proxies),
			)
		}),
		airdrop.OnWalletLinked(func(event airdrop.WalletLinked) {
			log.InfoContext(ctx, "Linked",
				slog.String("address", event.Address),
				slog.String("claim", event.Claim),
				slog.String("verdict", event.Verdict.String()),
				slog.Int("attempts", event.Attempts),
			)
		}),
		airdrop.OnLinkRetrying(func(event airdrop.LinkRetrying) {
			log.WarnContext(ctx, "Link failed, retrying",
				slog.String("address", event.Address),
				slog.Int("attempt", event.Attempt),
				slog.Duration("delay", event.Delay),
				slog.Any("error", event.Err),
			)
		}),
		airdrop.OnLinkGaveUp(func(event airdrop.LinkGaveUp) {
			log.ErrorContext(ctx, "Link gave up",
				slog.Int("secret", event.Index+1),
				slog.String("address", event.Address),
				slog.Int("attempts", event.Attempts),
				slog.Any("error", event.Err),
			)
		}),
		airdrop.OnTaskFailed(func(event airdrop.TaskFailed) {
			log.ErrorContext(ctx, "Task failed",
				slog.Int("secret", event.Index+1),
				slog.String("address", event.Address),
				slog.Any("error", event.Err),
			)
		}),
		airdrop.OnTaskPanicked(func(event airdrop.TaskPanicked) {
			log.ErrorContext(ctx, "Link panicked",
				slog.Int("secret", event.Index+1),
				slog.Any("panic", event.Value),
				slog.String("stack", string(event.Stack)),
			)
		}),
		airdrop.OnRunDone(func(event airdrop.RunDone) {
			log.InfoContext(ctx, "Run completed",
				slog.Int("total", event.Total),
				slog.Int("linked", event.Linked),
				slog.Int("eligible", event.Eligible),
				slog.Int("failed", event.Failed),
				slog.Duration("duration", event.Duration),
			)
		}),
	)
}
