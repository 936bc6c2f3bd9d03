package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphabill-org/alphabill-fees/txsystem/fees"
	"github.com/alphabill-org/alphabill-fees/txsystem/genesis"
)

type registryConfig struct {
	Base *baseConfiguration

	DBFile      string
	GenesisFile string
}

func (c *registryConfig) dbFilename() string {
	return c.Base.pathInHome(c.DBFile)
}

func (c *registryConfig) genesisFilename() string {
	return c.Base.pathInHome(c.GenesisFile)
}

func newRegistryCmd(baseConfig *baseConfiguration) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "registry",
		Short: "Manages the persistent fee registry",
	}
	cmd.AddCommand(newRegistryInitCmd(baseConfig))
	cmd.AddCommand(newRegistryShowCmd(baseConfig))
	return cmd
}

func newRegistryInitCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &registryConfig{Base: baseConfig}
	var cmd = &cobra.Command{
		Use:   "init",
		Short: "Initializes the fee registry from the genesis file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return registryInit(config)
		},
	}
	addRegistryDBFlag(cmd, &config.DBFile)
	addGenesisFileFlag(cmd, &config.GenesisFile)
	return cmd
}

func newRegistryShowCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &registryConfig{Base: baseConfig}
	var cmd = &cobra.Command{
		Use:   "show",
		Short: "Prints the fee registry entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return registryShow(config)
		},
	}
	addRegistryDBFlag(cmd, &config.DBFile)
	return cmd
}

func addRegistryDBFlag(cmd *cobra.Command, value *string) {
	cmd.Flags().StringVar(value, "db", defaultRegistryDBFile, "fee registry database file, relative to $AB_HOME unless absolute")
}

func addGenesisFileFlag(cmd *cobra.Command, value *string) {
	cmd.Flags().StringVarP(value, "genesis", "g", defaultGenesisFile, "genesis file, relative to $AB_HOME unless absolute")
}

func registryInit(config *registryConfig) (rErr error) {
	gen, err := genesis.LoadFile(config.genesisFilename())
	if err != nil {
		return err
	}
	reg, closeDB, err := openRegistry(config.dbFilename(), false)
	if err != nil {
		return err
	}
	defer func() { rErr = errors.Join(rErr, closeDB()) }()

	version, err := reg.Version()
	if err != nil {
		return err
	}
	if version != 0 {
		return fmt.Errorf("fee registry %s is already initialized (version %d)", config.dbFilename(), version)
	}
	if err := fees.InitRegistry(reg, gen.Fees); err != nil {
		return err
	}
	consoleWriter.Println("Fee registry initialized", config.dbFilename())
	return nil
}

func registryShow(config *registryConfig) (rErr error) {
	reg, closeDB, err := openRegistry(config.dbFilename(), true)
	if err != nil {
		return err
	}
	defer func() { rErr = errors.Join(rErr, closeDB()) }()

	version, err := reg.Version()
	if err != nil {
		return err
	}
	entries, err := reg.Entries()
	if err != nil {
		return fmt.Errorf("reading fee registry entries: %w", err)
	}
	consoleWriter.Printf("version: %d\n", version)
	for _, e := range entries {
		consoleWriter.Printf("%s: %s\n", e.Category, e.Amount)
	}
	return nil
}
