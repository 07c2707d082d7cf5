package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Devanath2003/HR-Agent/internal/calendarstate"
	"github.com/Devanath2003/HR-Agent/internal/candidate"
	dispatchgoogle "github.com/Devanath2003/HR-Agent/internal/dispatch/google"
	"github.com/Devanath2003/HR-Agent/internal/export"
	"github.com/Devanath2003/HR-Agent/internal/googleauth"
	"github.com/Devanath2003/HR-Agent/internal/ingest"
	"github.com/Devanath2003/HR-Agent/internal/logger"
	"github.com/Devanath2003/HR-Agent/internal/pipeline"
	"github.com/Devanath2003/HR-Agent/internal/schedule"
)

const (
	PromptYes          = "Yes"
	PromptNo           = "No"
	PromptShowRanking  = "Show the ranked batch"
	PromptExportReport = "Export the report to a file"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Schedule interviews for these candidates?",
	Items: []string{PromptYes, PromptNo, PromptShowRanking, PromptExportReport},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Rank resumes, allocate interview slots and send invitations",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before scheduling")
	runCmd.Flags().IntP("top-n", "n", 0, "number of top-ranked candidates to schedule. 0 means the whole batch")
	runCmd.Flags().StringP("report", "r", "", "write an xlsx report of the batch to this path. Default is unset.")

	viper.BindPFlag("report", runCmd.Flags().Lookup("report"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hr-agent", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.ResumesDir == "" {
		logger.Fatal("a resume directory is required under resumes-dir")
	}

	if config.Google == nil || config.Google.Sender == "" {
		logger.Fatal("a sender address is required under google.sender to send invitations")
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

	constraints, err := buildConstraints(config.Schedule)
	if err != nil {
		logger.Fatal("building schedule constraints", zap.Error(err))
	}

	services, err := googleauth.Build(ctx, config.Google.CredentialsFile, config.Google.TokenFile)
	if err != nil {
		logger.Fatal(
			"building google services",
			zap.Error(err),
			zap.String("hint", "set google.credentials-file and google.token-file in the configuration file"),
		)
	}

	dispatchOpts := []dispatchgoogle.Option{}
	if generator != nil {
		dispatchOpts = append(dispatchOpts, dispatchgoogle.WithBodyGenerator(generator))
	}
	if config.Google.CalendarID != "" {
		dispatchOpts = append(dispatchOpts, dispatchgoogle.WithCalendarID(config.Google.CalendarID))
	}

	timezone := "UTC"
	if config.Schedule != nil && config.Schedule.Timezone != "" {
		timezone = config.Schedule.Timezone
	}

	dispatcher := dispatchgoogle.New(
		services.Calendar,
		services.Gmail,
		config.Google.Sender,
		timezone,
		logger,
		dispatchOpts...,
	)

	runnerOpts := []pipeline.Option{}
	if config.Scoring != nil {
		if config.Scoring.Concurrency > 0 {
			runnerOpts = append(runnerOpts, pipeline.WithConcurrency(config.Scoring.Concurrency))
		}
		if config.Scoring.MaxRetries > 0 {
			runnerOpts = append(runnerOpts, pipeline.WithMaxRetries(config.Scoring.MaxRetries))
		}
	}

	runner := pipeline.NewRunner(
		buildExtractor(generator, logger),
		scorer,
		schedule.NewAllocator(logger),
		calendarstate.NewGoogleBusySource(services.Calendar),
		dispatcher,
		logger,
		runnerOpts...,
	)

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

	logger.Info("loaded resumes", zap.Int("count", len(docs)))

	result, err := runner.Submit(ctx, job, docs)
	if err != nil {
		logger.Fatal("ranking the batch", zap.Error(err))
	}

	if result.Batch.Len() == 0 {
		logRanking(result, logger)
		logger.Info("exiting", zap.String("reason", "no candidates left in the batch"))
		return
	}

	topN, _ := cmd.Flags().GetInt("top-n")
	if topN <= 0 {
		topN = result.Batch.Len()
	}

	logger.Info("ranked batch ready",
		zap.Int("scored", result.Batch.Len()),
		zap.Int("extraction_failures", len(result.ExtractionFailures)),
		zap.Int("unscored", len(result.Unscored)),
		zap.Int("to_schedule", topN),
	)

	action := PromptYes
	for {
		var err error
		if cmd.Flag("auto-approve").Value.String() == "false" {
			_, action, err = prompt.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}

		if err := handleAction(ctx, action, runner, result, job, topN, constraints, config, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if action == PromptYes {
			return
		}
	}
}

func handleAction(
	ctx context.Context,
	action string,
	runner *pipeline.Runner,
	result *pipeline.SubmitResult,
	job *candidate.JobDescription,
	topN int,
	constraints schedule.Constraints,
	config *Config,
	logger *zap.Logger,
) error {
	switch action {
	case PromptYes:
		return scheduleBatch(ctx, runner, result, job, topN, constraints, config, logger)
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptShowRanking:
		logRanking(result, logger)
		return nil
	case PromptExportReport:
		path := viper.GetString("report")
		if path == "" {
			path = "hr-agent-report.xlsx"
		}
		if err := export.WriteReport(result, path); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		logger.Info("report written", zap.String("filename", path))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// scheduleBatch allocates slots for the top candidates and dispatches an
// invitation for every proposed one. A dispatch failure rejects that single
// proposal; the rest of the batch still goes out.
func scheduleBatch(
	ctx context.Context,
	runner *pipeline.Runner,
	result *pipeline.SubmitResult,
	job *candidate.JobDescription,
	topN int,
	constraints schedule.Constraints,
	config *Config,
	logger *zap.Logger,
) error {
	resource := "primary"
	if config.Schedule != nil && config.Schedule.Resource != "" {
		resource = config.Schedule.Resource
	}

	proposals, err := runner.SelectAndSchedule(ctx, result.Batch, topN, resource, constraints)
	if err != nil {
		return fmt.Errorf("allocating slots: %w", err)
	}

	records := make(map[string]*candidate.Record, result.Batch.Len())
	for _, sc := range result.Batch.Entries() {
		records[sc.Record.ID] = sc.Record
	}

	confirmed := 0
	for _, p := range proposals {
		if p.Status() == schedule.StatusRejected {
			logger.Warn("no slot for candidate",
				zap.String("candidate_id", p.CandidateID),
				zap.String("reason", p.Reason()),
			)
			continue
		}

		if err := runner.Confirm(ctx, records[p.CandidateID], p, job); err != nil {
			logger.Warn("invitation failed",
				zap.String("candidate_id", p.CandidateID),
				zap.String("reason", p.Reason()),
				zap.Error(err),
			)
			continue
		}

		confirmed++
		logger.Info("interview scheduled",
			zap.String("candidate_id", p.CandidateID),
			zap.Time("start", p.Start),
			zap.Time("end", p.End),
			zap.String("event_ref", p.EventRef()),
		)
	}

	logger.Info("scheduling finished",
		zap.Int("confirmed", confirmed),
		zap.Int("proposals", len(proposals)),
	)
	return nil
}

func logRanking(result *pipeline.SubmitResult, logger *zap.Logger) {
	for i, sc := range result.Batch.Entries() {
		logger.Info("ranked candidate",
			zap.Int("rank", i+1),
			zap.String("candidate_id", sc.Record.ID),
			zap.String("name", sc.Record.Name),
			zap.Float64("score", sc.Score),
			zap.Strings("rationale", sc.Rationale),
		)
	}
	for _, u := range result.Unscored {
		logger.Warn("unscored candidate",
			zap.String("candidate_id", u.Record.ID),
			zap.String("reason", u.Reason),
		)
	}
	for _, f := range result.ExtractionFailures {
		logger.Warn("excluded document",
			zap.String("source_id", f.SourceID),
			zap.String("file", f.FileName),
			zap.Error(f.Err),
		)
	}
}
