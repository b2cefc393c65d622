package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/reglet-dev/b2cdeploy/internal/domain/values"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/container"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/sensitivedata"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CommandContext provides common command dependencies.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
	RunID     values.RunID
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// containerOptions lets a command adjust how its container is built.
type containerOptions func(*container.Options)

// withContainer wraps a command handler with container initialization.
// Errors returned by the handler have every secret seen during the run
// redacted from their message.
//
// Usage:
//
//	cmd := &cobra.Command{
//	    Use: "plan",
//	    RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, args []string) error {
//	        return runPlan(cc, planOpts, cmd.OutOrStdout())
//	    }),
//	}
func withContainer(handler CommandHandler, configure ...containerOptions) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		opts := container.Options{
			SystemConfigPath: systemConfigPath,
			LogOutput:        os.Stderr,
			LogLevel:         logLevel(),
		}
		for _, fn := range configure {
			fn(&opts)
		}

		c, err := container.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		slog.SetDefault(c.Logger())

		cc := &CommandContext{
			Container: c,
			Logger:    c.Logger(),
			Context:   cmd.Context(),
			RunID:     values.NewRunID(),
		}
		if cc.Context == nil {
			cc.Context = context.Background()
		}

		return sensitivedata.SafeError(handler(cc, cmd, args), c.SensitiveValues())
	}
}

// bindEnvironment fills every flag the user left unset from the config file
// or its B2CDEPLOY_* environment variable. A command-scoped key such as
// build.input wins over the shared key input.
func bindEnvironment(cmd *cobra.Command) error {
	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		key := configKey(cmd, f.Name)
		if key == "" {
			return
		}

		inputs := []string{viper.GetString(key)}
		if list, ok := viper.Get(key).([]any); ok {
			inputs = inputs[:0]
			for _, item := range list {
				inputs = append(inputs, fmt.Sprint(item))
			}
		}

		for _, value := range inputs {
			if err := cmd.Flags().Set(f.Name, value); err != nil {
				errs = append(errs, fmt.Errorf("invalid value for --%s: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

// configKey returns the viper key that holds a value for the flag, or an
// empty string when none does.
func configKey(cmd *cobra.Command, name string) string {
	if scoped := cmd.Name() + "." + name; viper.IsSet(scoped) {
		return scoped
	}
	if viper.IsSet(name) {
		return name
	}
	return ""
}
