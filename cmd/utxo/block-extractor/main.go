// Command block-extractor derives per-block statistics from a Bitcoin Core data directory or node
// and upserts them into the block statistics store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/metrics"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/pkg/btcd/rpcclient"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/report"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/bitcoin"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/model"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/repository"
	"github.com/goodnatureofminers/blockinsight7000-daystats/internal/utxo/service/extractor"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	Create        bool          `short:"c" long:"create" description:"create the database schema before extracting"`
	DBName        string        `short:"d" long:"db" env:"BLOCK_EXTRACTOR_DB" description:"SQLite database file" default:"bitcoin"`
	MinHeight     uint64        `short:"s" long:"min-height" env:"BLOCK_EXTRACTOR_MIN_HEIGHT" description:"first height to extract" default:"0"`
	MaxHeight     uint64        `short:"e" long:"max-height" env:"BLOCK_EXTRACTOR_MAX_HEIGHT" description:"last height to extract" default:"2000000"`
	Network       model.Network `long:"network" env:"BLOCK_EXTRACTOR_NETWORK" description:"network name" default:"mainnet"`
	RPCURL        string        `long:"rpc-url" env:"BLOCK_EXTRACTOR_RPC_URL" description:"Bitcoin RPC URL, read blocks from a node instead of the archive"`
	RPCUser       string        `long:"rpc-user" env:"BLOCK_EXTRACTOR_RPC_USER" description:"Bitcoin RPC username"`
	RPCPassword   string        `long:"rpc-password" env:"BLOCK_EXTRACTOR_RPC_PASSWORD" description:"Bitcoin RPC password"`
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"BLOCK_EXTRACTOR_CLICKHOUSE_DSN" description:"ClickHouse DSN, replaces the SQLite store"`
	BatchSize     int           `long:"batch-size" env:"BLOCK_EXTRACTOR_BATCH_SIZE" description:"blocks per store transaction" default:"1000"`
	SkipMalformed bool          `long:"skip-malformed" env:"BLOCK_EXTRACTOR_SKIP_MALFORMED" description:"log and skip blocks that fail to decode"`
	MetricsAddr   string        `long:"metrics-addr" env:"BLOCK_EXTRACTOR_METRICS_ADDR" description:"address for metrics server, empty disables it" default:":2112"`

	Args struct {
		Archive string `positional-arg-name:"archive" description:"Bitcoin Core blocks directory"`
	} `positional-args:"yes"`
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

	if cfg.Args.Archive == "" && cfg.RPCURL == "" {
		logger.Fatal("archive directory or --rpc-url is required")
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("block extractor failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	params, err := cfg.Network.Params()
	if err != nil {
		return err
	}
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	store, err := repository.Open(ctx, repository.Options{
		SQLitePath:    cfg.DBName,
		ClickhouseDSN: cfg.ClickhouseDSN,
		Migrate:       cfg.Create || (cfg.ClickhouseDSN == "" && !fileExists(cfg.DBName)),
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", zap.Error(err))
		}
	}()

	source, closeSource, err := openSource(cfg, params, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	svc, err := extractor.NewService(
		store,
		source,
		metrics.NewBlockExtractor(cfg.Network),
		extractor.Config{
			MinHeight:     cfg.MinHeight,
			MaxHeight:     cfg.MaxHeight,
			SkipMalformed: cfg.SkipMalformed,
		},
		cfg.BatchSize,
		logger,
	)
	if err != nil {
		return err
	}

	summary, err := svc.Run(ctx)
	fmt.Println(report.Extraction(summary))
	return err
}

func openSource(cfg config, params *chaincfg.Params, logger *zap.Logger) (extractor.BlockSource, func(), error) {
	if cfg.RPCURL != "" {
		host, err := rpcHost(cfg.RPCURL)
		if err != nil {
			return nil, nil, err
		}
		client, err := rpcclient.New(host, cfg.RPCUser, cfg.RPCPassword, true)
		if err != nil {
			return nil, nil, fmt.Errorf("init rpc client: %w", err)
		}
		observed := rpcclient.NewObservedClient(client, metrics.NewRPCClient(cfg.Network))
		logger.Info("reading blocks from node", zap.String("host", host))
		return bitcoin.NewRPCSource(observed), func() {
			client.Shutdown()
			client.WaitForShutdown()
		}, nil
	}

	archive, err := bitcoin.NewArchiveSource(logger, cfg.Args.Archive, params)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	return archive, func() {
		if err := archive.Close(); err != nil {
			logger.Error("failed to close archive", zap.Error(err))
		}
	}, nil
}

func rpcHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return "", fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", errors.New("rpc url missing host")
	}
	return parsed.Host, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
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
