package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Devanath2003/HR-Agent/internal/export"
	"github.com/Devanath2003/HR-Agent/internal/ingest"
	"github.com/Devanath2003/HR-Agent/internal/logger"
	"github.com/Devanath2003/HR-Agent/internal/pipeline"
	"github.com/Devanath2003/HR-Agent/internal/schedule"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank resumes against the job description without scheduling",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("report", "r", "", "write an xlsx report of the batch to this path. Default is unset.")
}

func rank(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.ResumesDir == "" {
		logger.Fatal("a resume directory is required under resumes-dir")
	}

	job, err := loadJob(config)
	if err != nil {
		logger.Fatal("loading the job description", zap.Error(err))
	}

	backend, generator, err := buildBackend(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the scoring backend", zap.Error(err))
	}

	scorer, err := buildScorer(backend, config, logger)
	if err != nil {
		logger.Fatal("building the scorer", zap.Error(err))
	}

	docs, failures, err := ingest.NewReader(config.ResumesDir, logger).Load()
	if err != nil {
		logger.Fatal("loading resumes", zap.Error(err))
	}
	for _, f := range failures {
		logger.Warn("skipping unreadable resume", zap.String("file", f.FileName), zap.Error(f.Err))
	}
	if len(docs) == 0 {
		logger.Info("exiting", zap.String("reason", "no readable resumes found"), zap.String("dir", config.ResumesDir))
		return
	}

	runnerOpts := []pipeline.Option{}
	if config.Scoring != nil {
		if config.Scoring.Concurrency > 0 {
			runnerOpts = append(runnerOpts, pipeline.WithConcurrency(config.Scoring.Concurrency))
		}
		if config.Scoring.MaxRetries > 0 {
			runnerOpts = append(runnerOpts, pipeline.WithMaxRetries(config.Scoring.MaxRetries))
		}
	}

	// ranking only, so no calendar or mail wiring
	runner := pipeline.NewRunner(
		buildExtractor(generator, logger),
		scorer,
		schedule.NewAllocator(logger),
		nil,
		nil,
		logger,
		runnerOpts...,
	)

	result, err := runner.Submit(ctx, job, docs)
	if err != nil {
		logger.Fatal("ranking the batch", zap.Error(err))
	}

	logRanking(result, logger)

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := export.WriteReport(result, path); err != nil {
			logger.Fatal("export report", zap.Error(err))
		}
		logger.Info("report written", zap.String("filename", path))
	}
}
