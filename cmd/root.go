package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Devanath2003/HR-Agent/internal/scoring"
)

const (
	app = "hr-agent"
)

type Config struct {
	ResumesDir string          `mapstructure:"resumes-dir"`
	Job        *JobConfig      `mapstructure:"job"`
	Scoring    *ScoringConfig  `mapstructure:"scoring"`
	Schedule   *ScheduleConfig `mapstructure:"schedule"`
	AI         *AIConfig       `mapstructure:"ai"`
	Google     *GoogleConfig   `mapstructure:"google"`
}

type JobConfig struct {
	Description     string   `mapstructure:"description"`
	DescriptionFile string   `mapstructure:"description-file"`
	RequiredSkills  []string `mapstructure:"required-skills"`
}

type ScoringConfig struct {
	Backend     string          `mapstructure:"backend"`
	Weights     scoring.Weights `mapstructure:"weights"`
	Concurrency int             `mapstructure:"concurrency"`
	MaxRetries  uint            `mapstructure:"max-retries"`
}

type ScheduleConfig struct {
	Resource     string        `mapstructure:"resource"`
	Timezone     string        `mapstructure:"timezone"`
	StartDate    string        `mapstructure:"start-date"`
	DayStart     string        `mapstructure:"day-start"`
	DayEnd       string        `mapstructure:"day-end"`
	SlotDuration time.Duration `mapstructure:"slot-duration"`
	Buffer       time.Duration `mapstructure:"buffer"`
	HorizonDays  int           `mapstructure:"horizon-days"`
	MaxPerDay    int           `mapstructure:"max-per-day"`
	SkipWeekends bool          `mapstructure:"skip-weekends"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type GoogleConfig struct {
	CredentialsFile string `mapstructure:"credentials-file"`
	TokenFile       string `mapstructure:"token-file"`
	Sender          string `mapstructure:"sender"`
	CalendarID      string `mapstructure:"calendar-id"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hr-agent ranks candidate resumes against a job description and schedules interviews",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hr-agent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run and rank commands now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" && rankCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return config, nil
}

// parseClock turns "09:00" into an offset from midnight.
func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q (want HH:MM): %w", value, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
