package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/system"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix prefixes every environment variable that can stand in for a flag,
// e.g. B2CDEPLOY_CLIENT_SECRET for --client-secret.
const envPrefix = "B2CDEPLOY"

var (
	cfgFile          string
	systemConfigPath string
	verbose          bool
	quiet            bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "b2cdeploy",
	Short: "Build and publish Azure AD B2C custom policies",
	Long: `b2cdeploy turns a folder of B2C custom policy templates into
environment-specific policy files and publishes them to a tenant through
Microsoft Graph, base policies first.

  b2cdeploy build    substitute environment settings into policy templates
  b2cdeploy plan     show the order in which policies would be uploaded
  b2cdeploy publish  upload policies wave by wave`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := bindEnvironment(cmd); err != nil {
			return apperrors.NewConfigurationError("flags", "invalid configured value", err)
		}
		if verbose && quiet {
			return apperrors.NewConfigurationError("flags", "--verbose and --quiet are mutually exclusive", nil)
		}
		setupLogging()
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
// An interrupt cancels the running command; uploads already finished stay
// published.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		return exitCode(err)
	}
	return exitOK
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.b2cdeploy.yaml)")
	rootCmd.PersistentFlags().StringVar(&systemConfigPath, "system-config", system.DefaultPath(),
		"system config file holding secrets, redaction and Graph settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
}

// initConfig loads configuration from the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".b2cdeploy")
	}

	configureEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "file", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "failed to read config file %s: %v\n", cfgFile, err)
	}
}

// configureEnv maps viper keys to B2CDEPLOY_* variables: --client-secret reads
// B2CDEPLOY_CLIENT_SECRET and the build-scoped key build.input reads
// B2CDEPLOY_BUILD_INPUT.
func configureEnv() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func logLevel() slog.Level {
	switch {
	case verbose:
		return slog.LevelDebug
	case quiet:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupLogging() {
	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)
}
