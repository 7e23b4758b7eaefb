// Command harvester resolves YouTube channel handles and stores each channel's
// videos with their statistics in PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-harvester/internal/config"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db"
	"github.com/ad-tracker/youtube-channel-harvester/internal/db/repository"
	"github.com/ad-tracker/youtube-channel-harvester/internal/metrics"
	"github.com/ad-tracker/youtube-channel-harvester/internal/prompt"
	"github.com/ad-tracker/youtube-channel-harvester/internal/service"
	"github.com/ad-tracker/youtube-channel-harvester/internal/service/quota"
	"github.com/ad-tracker/youtube-channel-harvester/internal/service/youtube"
	"github.com/ad-tracker/youtube-channel-harvester/pkg/logger"
)

const metricsPushTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) int {
	flags := flag.NewFlagSet("harvester", flag.ContinueOnError)
	flags.SetOutput(stdout)
	channelsFlag := flags.String("channels", "", "Comma-separated channel handles (prompted for when empty)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stdout, "Failed to load .env: %v\n", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stdout, "Failed to load configuration: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(stdout, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	prompter := prompt.New(stdin, stdout)

	handles, err := readHandles(*channelsFlag, prompter)
	if err != nil {
		if errors.Is(err, prompt.ErrNoHandles) {
			fmt.Fprintln(stdout, "You must enter at least one username.")
		} else {
			log.Error("Failed to read channel handles", zap.Error(err))
		}
		return 1
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Database environment variables are not set.", zap.Error(err))
		return 1
	}

	apiKey := cfg.YouTube.APIKey
	if apiKey == "" {
		apiKey, err = prompter.ReadAPIKey()
		if err != nil {
			log.Error("Failed to read API key", zap.Error(err))
			return 1
		}
	}

	dbCfg := cfg.Database.DB()
	version, err := db.Migrate(dbCfg)
	if err != nil {
		log.Error("Failed to apply database migrations", zap.Error(err))
		return 1
	}
	log.Info("Database schema ready", zap.Uint("version", version))

	pool, err := db.NewPool(ctx, dbCfg)
	if err != nil {
		log.Error("Failed to connect to database",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name),
			zap.Error(err),
		)
		return 1
	}
	defer db.Close(pool)

	client, err := youtube.NewClient(ctx, apiKey)
	if err != nil {
		log.Error("Failed to create YouTube client", zap.Error(err))
		return 1
	}

	quotaManager := quota.NewManager(repository.NewQuotaRepository(pool), cfg.Quota.DailyLimit, cfg.Quota.ThresholdPercent, log)
	warnOnQuota(ctx, quotaManager, log)

	m := metrics.NewHarvest()
	calls := service.NewCallTracker(quotaManager, m, service.DelayPacer{Delay: cfg.Harvest.RequestDelay}, log)
	runner := service.NewRunner(
		service.NewChannelResolver(client, calls, m, log),
		service.NewVideoHarvester(client, calls, m, cfg.Harvest.PageSize, log),
		repository.NewChannelRepository(pool),
		repository.NewVideoRepository(pool),
		repository.NewHarvestRunRepository(pool),
		m,
		log,
	)

	summary, runErr := runner.Run(ctx, handles)

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsPushTimeout)
	defer cancel()
	if err := m.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, summary.RunID.String()); err != nil {
		log.Warn("Failed to push run metrics", zap.Error(err))
	}

	if runErr != nil {
		return 1
	}
	return 0
}

func readHandles(flagValue string, p *prompt.Prompter) ([]string, error) {
	if flagValue == "" {
		return p.ReadHandles()
	}

	handles := prompt.SplitHandles(flagValue)
	if len(handles) == 0 {
		return nil, prompt.ErrNoHandles
	}
	return handles, nil
}

// warnOnQuota logs when today's recorded usage already reached the threshold.
// The run proceeds either way.
func warnOnQuota(ctx context.Context, m *quota.Manager, log *zap.Logger) {
	info, err := m.GetQuotaInfo(ctx)
	if err != nil {
		log.Warn("Failed to read quota usage", zap.Error(err))
		return
	}

	exhausted, err := m.IsQuotaExhausted(ctx)
	if err != nil {
		log.Warn("Failed to check quota threshold", zap.Error(err))
		return
	}

	usedPercent, err := m.GetQuotaUsagePercentage(ctx)
	if err != nil {
		log.Warn("Failed to compute quota usage percentage", zap.Error(err))
		return
	}

	beforeThreshold, err := m.GetRemainingQuota(ctx)
	if err != nil {
		log.Warn("Failed to compute quota remaining before threshold", zap.Error(err))
		return
	}

	fields := []zap.Field{
		zap.Int("quota_used", info.QuotaUsed),
		zap.Int("quota_remaining", info.QuotaRemaining),
		zap.Int("quota_remaining_before_threshold", beforeThreshold),
		zap.Float64("quota_used_percent", usedPercent),
		zap.Int("daily_limit", info.QuotaLimit),
	}
	if exhausted {
		log.Warn("Daily quota threshold already reached", fields...)
		return
	}
	log.Info("Quota usage", fields...)
}
