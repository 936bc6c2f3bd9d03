package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alphabill-org/alphabill-fees/observability"
)

type (
	feesApp struct {
		baseCmd    *cobra.Command
		baseConfig *baseConfiguration
	}
)

// New creates a new fee charger application
func New(logF LoggerFactory) *feesApp {
	baseCmd, baseConfig := newBaseCmd(logF)
	return &feesApp{baseCmd, baseConfig}
}

// Execute adds all child commands and runs the application
func (a *feesApp) Execute(ctx context.Context) (err error) {
	defer func() {
		if a.baseConfig.observe != nil {
			err = errors.Join(err, a.baseConfig.observe.Shutdown())
		}
	}()

	return a.addAndExecuteCommand(ctx)
}

func (a *feesApp) addAndExecuteCommand(ctx context.Context) error {
	a.baseCmd.AddCommand(newGenesisCmd(a.baseConfig))
	a.baseCmd.AddCommand(newRegistryCmd(a.baseConfig))
	a.baseCmd.AddCommand(newEstimateCmd(a.baseConfig))
	a.baseCmd.AddCommand(newSimulateCmd(a.baseConfig))
	a.baseCmd.AddCommand(newServeCmd(a.baseConfig))
	return a.baseCmd.ExecuteContext(ctx)
}

func newBaseCmd(logF LoggerFactory) (*cobra.Command, *baseConfiguration) {
	config := &baseConfiguration{loggerBuilder: logF}
	// baseCmd represents the base command when called without any subcommands
	var baseCmd = &cobra.Command{
		Use:           "feecharger",
		Short:         "The extrinsic fee charger CLI",
		Long:          `The fee charger CLI manages the fee registry and runs the fee charging ledger: genesis, registry, estimate, simulate, serve.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// You can bind cobra and viper in a few locations, but PersistencePreRunE on the base command works well
			// If subcommand does not define PersistentPreRunE, the one from base cmd is used.
			if err := initializeConfig(cmd, config); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}
			return nil
		},
	}
	config.addConfigurationFlags(baseCmd)

	return baseCmd, config
}

func initializeConfig(cmd *cobra.Command, config *baseConfiguration) error {
	if err := config.initializeConfig(cmd); err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}

	log, err := config.initLogger(cmd)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	metrics, err := cmd.Flags().GetString(keyMetrics)
	if err != nil {
		return fmt.Errorf("reading flag %q: %w", keyMetrics, err)
	}
	obs, err := observability.New(metrics, log)
	if err != nil {
		return fmt.Errorf("initializing observability: %w", err)
	}
	config.observe = obs
	return nil
}

// initializeConfig reads in config file and ENV variables if set.
func (config *baseConfiguration) initializeConfig(cmd *cobra.Command) error {
	v := viper.New()

	config.initConfigFileLocation()

	if config.configFileExists() {
		v.SetConfigFile(config.CfgFile)
	}

	// Attempt to read the config file, gracefully ignoring errors
	// caused by a config file not being found. Return an error
	// if we cannot parse the config file.
	if err := v.ReadInConfig(); err != nil {
		// It's okay if there isn't a config file
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	// When we bind flags to environment variables expect that the
	// environment variables are prefixed, e.g. a flag like --db
	// binds to an environment variable AB_DB.
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := bindFlags(cmd, v); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// Bind each cobra flag to its associated viper configuration (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var bindFlagErr []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == keyHome || f.Name == keyConfig {
			// "home" and "config" are special configuration values, handled separately.
			return
		}

		// Environment variables can't have dashes in them, so bind them to their equivalent
		// keys with underscores, e.g. --max-body to AB_MAX_BODY
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				bindFlagErr = append(bindFlagErr, fmt.Errorf("binding env to flag %q: %w", f.Name, err))
				return
			}
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				bindFlagErr = append(bindFlagErr, fmt.Errorf("setting flag %q value: %w", f.Name, err))
				return
			}
		}
	})

	return errors.Join(bindFlagErr...)
}
