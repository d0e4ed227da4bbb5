package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"athletics-cms/internal/backup"
	"athletics-cms/internal/config"
	"athletics-cms/internal/kv"
	"athletics-cms/internal/metrics"
	"athletics-cms/internal/mirror"
	"athletics-cms/internal/repo"
	"athletics-cms/internal/server"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	debug  bool
)

var rootCmd = &cobra.Command{
	Use:   "athletics",
	Short: "Backend for the athletics school site: news articles and lesson status",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server, offline mirror and scheduled jobs",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			logger.Fatal("Config load error", zap.Error(err))
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			logger.Info("Shutting down...")
			cancel()
		}()

		meta, err := kv.NewRedisStore(cfg.RedisAddr)
		if err != nil {
			logger.Fatal("Failed to init redis store", zap.Error(err))
		}
		defer meta.Close()

		content, err := kv.NewBadgerStore(cfg.BadgerPath, false)
		if err != nil {
			logger.Fatal("Failed to init badger store", zap.Error(err))
		}
		defer content.Close()

		table, err := cfg.CourseTable()
		if err != nil {
			logger.Fatal("Failed to load course table", zap.Error(err))
		}

		articles := repo.NewArticleRepo(meta, content)
		status := repo.NewStatusRepo(meta, table, nil)
		m := metrics.New()

		mir := mirror.New(articles, status, table,
			cfg.MirrorTTL, cfg.MirrorMaxBytes, cfg.MirrorPollInterval, logger)
		go mir.Run(ctx)

		scheduler := cron.New()
		scheduler.AddFunc(cfg.BadgerGCSchedule, func() {
			if err := content.RunGC(); err != nil {
				logger.Warn("Badger GC failed", zap.Error(err))
			}
		})
		if cfg.ExportConfigured() && cfg.ExportSchedule != "" {
			exporter, err := newExporter(ctx, cfg, articles, status)
			if err != nil {
				logger.Fatal("Failed to init exporter", zap.Error(err))
			}
			scheduler.AddFunc(cfg.ExportSchedule, func() {
				if err := exporter.Run(ctx); err != nil {
					logger.Error("Scheduled export failed", zap.Error(err))
				}
			})
		}
		scheduler.Start()
		defer scheduler.Stop()

		srv := server.NewServer(articles, status, logger, m)
		go func() {
			if err := srv.Start(cfg.HTTPPort); err != nil {
				logger.Error("Server stopped", zap.Error(err))
				cancel()
			}
		}()

		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("Shutdown error", zap.Error(err))
		}
		logger.Info("Goodbye!")
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot all articles and statuses to S3 once",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			logger.Fatal("Config load error", zap.Error(err))
		}
		if !cfg.ExportConfigured() {
			logger.Fatal("EXPORT_S3_* settings are required for export")
		}

		ctx := context.Background()

		meta, err := kv.NewRedisStore(cfg.RedisAddr)
		if err != nil {
			logger.Fatal("Failed to init redis store", zap.Error(err))
		}
		defer meta.Close()

		content, err := kv.NewBadgerStore(cfg.BadgerPath, false)
		if err != nil {
			logger.Fatal("Failed to init badger store", zap.Error(err))
		}
		defer content.Close()

		table, err := cfg.CourseTable()
		if err != nil {
			logger.Fatal("Failed to load course table", zap.Error(err))
		}

		articles := repo.NewArticleRepo(meta, content)
		status := repo.NewStatusRepo(meta, table, nil)

		exporter, err := newExporter(ctx, cfg, articles, status)
		if err != nil {
			logger.Fatal("Failed to init exporter", zap.Error(err))
		}
		if err := exporter.Run(ctx); err != nil {
			logger.Fatal("Export failed", zap.Error(err))
		}
		logger.Info("Export complete")
	},
}

func newExporter(ctx context.Context, cfg *config.Config, articles *repo.ArticleRepo, status *repo.StatusRepo) (*backup.Exporter, error) {
	s3cfg := backup.S3Config{
		Endpoint:  cfg.ExportEndpoint,
		Region:    cfg.ExportRegion,
		Bucket:    cfg.ExportBucket,
		AccessKey: cfg.ExportAccessKey,
		SecretKey: cfg.ExportSecretKey,
		Keep:      cfg.ExportKeep,
	}
	client, err := backup.NewS3Client(ctx, s3cfg)
	if err != nil {
		return nil, err
	}
	return backup.NewExporter(client, s3cfg, articles, status, logger), nil
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Verbose development logging")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)

	cobra.OnInitialize(func() {
		var err error
		if debug {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			panic(err)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if logger != nil {
		logger.Sync()
	}
}
