// Package cmd implements the scaleread command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scalevision/scaleread/internal/config"
	"github.com/scalevision/scaleread/internal/version"
)

var (
	configLoader *config.Loader
	globalConfig *config.Config
	cfgFile      string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "scaleread",
	Short: "Read weight values from photographed scale displays",
	Long: `scaleread runs an ONNX-based detection and recognition pipeline over
photos of weighing-scale displays and extracts the shown weight as a
numeric value with a normalized unit.

Examples:
  scaleread image photo.jpg
  scaleread batch ./shots --recursive --format json
  scaleread parse "12.34kg"
  scaleread serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.GitCommit, version.BuildDate),
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command, used by CLI integration tests.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/scaleread, /etc/scaleread)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("det-model", "", "path to the detection ONNX model")
	rootCmd.PersistentFlags().String("rec-model", "", "path to the recognition ONNX model")
	rootCmd.PersistentFlags().String("dict", "", "path to the recognition dictionary (built-in charset when empty)")
	rootCmd.PersistentFlags().Int("threads", 1, "intra-op threads per operator")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("pipeline.detector.model_path", rootCmd.PersistentFlags().Lookup("det-model"))
	_ = viper.BindPFlag("pipeline.recognizer.model_path", rootCmd.PersistentFlags().Lookup("rec-model"))
	_ = viper.BindPFlag("pipeline.dictionary_path", rootCmd.PersistentFlags().Lookup("dict"))
	_ = viper.BindPFlag("pipeline.num_threads", rootCmd.PersistentFlags().Lookup("threads"))

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if globalConfig == nil {
			initConfig()
		}
		setupLogging(globalConfig)
	}
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// initConfig reads in config file and environment variables.
func initConfig() {
	configLoader = config.NewLoader()

	var err error
	globalConfig, err = configLoader.LoadWithFile(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the resolved configuration including flag overrides.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}
	// Re-unmarshal so flags bound after the initial load are reflected.
	var cfg config.Config
	if err := GetConfigLoader().GetViper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig
	}
	return &cfg
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}
