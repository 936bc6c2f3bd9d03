package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphabill-org/alphabill-fees/state"
	"github.com/alphabill-org/alphabill-fees/types"
)

type estimateConfig struct {
	registryConfig

	Module string
	Method string
	Length uint64
}

func newEstimateCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &estimateConfig{registryConfig: registryConfig{Base: baseConfig}}
	var cmd = &cobra.Command{
		Use:   "estimate",
		Short: "Calculates the fee of a call using the persistent fee registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return estimateFee(config)
		},
	}
	addRegistryDBFlag(cmd, &config.DBFile)
	cmd.Flags().StringVar(&config.Module, "module", "", "module of the call")
	cmd.Flags().StringVar(&config.Method, "method", "", "method of the call")
	cmd.Flags().Uint64Var(&config.Length, "length", 0, "length of the encoded extrinsic in bytes")
	if err := cmd.MarkFlagRequired("module"); err != nil {
		panic(err)
	}
	if err := cmd.MarkFlagRequired("method"); err != nil {
		panic(err)
	}
	return cmd
}

func estimateFee(config *estimateConfig) (rErr error) {
	id := types.CallID{Module: config.Module, Method: config.Method}
	if err := id.IsValid(); err != nil {
		return err
	}
	reg, closeDB, err := openRegistry(config.dbFilename(), true)
	if err != nil {
		return err
	}
	defer func() { rErr = errors.Join(rErr, closeDB()) }()

	// fee routes are registered by the modules, the state is never touched
	node, err := newLedgerNode(reg, state.NewEmptyState(), config.Base.observe)
	if err != nil {
		return err
	}
	fee, err := node.CalculateFee(config.Length, &types.Call{Module: id.Module, Method: id.Method})
	if err != nil {
		return fmt.Errorf("calculating fee: %w", err)
	}
	consoleWriter.Printf("fee of %s (%d bytes): %s\n", id, config.Length, fee)
	return nil
}
