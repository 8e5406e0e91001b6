package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ppiankov/fever/internal/logging"
	"github.com/ppiankov/fever/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const version = "v0.2.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
	dbPath   string
	outPath  string

	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fever",
	Short: "fever - FEVER document store and evidence assembly",
	Long: `fever reads claims and evidence sentences from a FEVER document store,
assembles (evidence, claim) instances for an external model, and turns
per-class model scores into labelled predictions.

Tokenization, training and the model itself live elsewhere. Instances and
predictions are exchanged as JSON lines.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := viper.GetString("logging.level")
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}

		l, err := logging.New(level, verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of fever.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fever %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.fever/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "document store path (default from config)")

	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(viper.GetViper(), model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".fever"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// FEVER_SCORER_API_KEY and friends
	viper.SetEnvPrefix("FEVER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("scorer.api_key", "FEVER_SCORER_API_KEY", "OPENAI_API_KEY")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so that env vars and files can override it
func setDefaults(v *viper.Viper, cfg *model.Config) {
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("reader.strategy", cfg.Reader.Strategy)
	v.SetDefault("reader.seed", cfg.Reader.Seed)
	v.SetDefault("reader.labels", cfg.Reader.Labels)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", cfg.Cache.CleanupInterval)
	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	v.SetDefault("rate_limiting.requests_per_second", cfg.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", cfg.RateLimiting.BurstSize)
	v.SetDefault("scorer.kind", cfg.Scorer.Kind)
	v.SetDefault("scorer.scores_path", cfg.Scorer.ScoresPath)
	v.SetDefault("scorer.model", cfg.Scorer.Model)
	v.SetDefault("scorer.base_url", cfg.Scorer.BaseURL)
	v.SetDefault("scorer.timeout", cfg.Scorer.Timeout)
	v.SetDefault("scorer.http_proxy", cfg.Scorer.HTTPProxy)
	v.SetDefault("scorer.https_proxy", cfg.Scorer.HTTPSProxy)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// loadConfig merges defaults, config file, env vars and bound flags
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
