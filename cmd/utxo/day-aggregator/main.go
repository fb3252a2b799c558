// Command day-aggregator reduces stored block statistics into per-UTC-day statistics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/metrics"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/price"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/report"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/repository"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/service/aggregator"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	DB            string        `long:"db" env:"DAY_AGGREGATOR_DB" description:"SQLite database file"`
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"DAY_AGGREGATOR_CLICKHOUSE_DSN" description:"ClickHouse DSN, replaces the SQLite store"`
	Network       model.Network `long:"network" env:"DAY_AGGREGATOR_NETWORK" description:"network name" default:"mainnet"`
	StartTS       *int64        `long:"start-ts" env:"DAY_AGGREGATOR_START_TS" description:"first block timestamp, defaults to the network genesis"`
	EndTS         int64         `long:"end-ts" env:"DAY_AGGREGATOR_END_TS" description:"last block timestamp, inclusive, unbounded when unset"`
	Prices        string        `long:"prices" env:"DAY_AGGREGATOR_PRICES" description:"price feed CSV, a local path or s3://bucket/object"`
	S3Endpoint    string        `long:"s3-endpoint" env:"DAY_AGGREGATOR_S3_ENDPOINT" description:"object storage endpoint for s3:// price feeds"`
	S3AccessKey   string        `long:"s3-access-key" env:"DAY_AGGREGATOR_S3_ACCESS_KEY" description:"object storage access key"`
	S3SecretKey   string        `long:"s3-secret-key" env:"DAY_AGGREGATOR_S3_SECRET_KEY" description:"object storage secret key"`
	S3Secure      bool          `long:"s3-secure" env:"DAY_AGGREGATOR_S3_SECURE" description:"use TLS for object storage"`
	BatchSize     int           `long:"batch-size" env:"DAY_AGGREGATOR_BATCH_SIZE" description:"days per store transaction" default:"500"`
	PageSize      int           `long:"page-size" env:"DAY_AGGREGATOR_PAGE_SIZE" description:"blocks read per query" default:"10000"`
	MetricsAddr   string        `long:"metrics-addr" env:"DAY_AGGREGATOR_METRICS_ADDR" description:"address for metrics server, empty disables it" default:":2113"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.Parse(&cfg); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if cfg.DB == "" && cfg.ClickhouseDSN == "" {
		logger.Fatal("--db or --clickhouse-dsn is required")
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("day aggregator failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	params, err := cfg.Network.Params()
	if err != nil {
		return err
	}
	startTS := params.GenesisBlock.Header.Timestamp.Unix()
	if cfg.StartTS != nil {
		startTS = *cfg.StartTS
	}

	prices, err := loadPrices(ctx, cfg, logger)
	if err != nil {
		return err
	}

	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	store, err := repository.Open(ctx, repository.Options{
		SQLitePath:    cfg.DB,
		ClickhouseDSN: cfg.ClickhouseDSN,
		Migrate:       cfg.ClickhouseDSN == "",
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}()

	svc, err := aggregator.NewService(
		store,
		prices,
		metrics.NewDayAggregator(),
		aggregator.Config{
			StartTS:  startTS,
			EndTS:    cfg.EndTS,
			PageSize: cfg.PageSize,
		},
		cfg.BatchSize,
		logger,
	)
	if err != nil {
		return err
	}

	summary, err := svc.Run(ctx)
	fmt.Println(report.Aggregation(summary))
	return err
}

func loadPrices(ctx context.Context, cfg config, logger *zap.Logger) (*price.Table, error) {
	if cfg.Prices == "" {
		logger.Warn("no price feed configured, every day gets price 0")
		return price.NewTable(nil), nil
	}

	var objects price.ObjectReader
	if cfg.S3Endpoint != "" {
		reader, err := price.NewMinIOReader(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Secure)
		if err != nil {
			return nil, err
		}
		objects = reader
	}

	table, err := price.Load(ctx, cfg.Prices, price.NewObjectOpener(objects))
	if err != nil {
		return nil, err
	}
	logger.Info("price feed loaded", zap.String("location", cfg.Prices), zap.Int("days", table.Len()))
	return table, nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
