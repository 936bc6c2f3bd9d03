package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphabill-org/alphabill-fees/keyvaluedb/memorydb"
	"github.com/alphabill-org/alphabill-fees/txsystem/fees"
	"github.com/alphabill-org/alphabill-fees/txsystem/genericasset"
	"github.com/alphabill-org/alphabill-fees/txsystem/genesis"
	"github.com/alphabill-org/alphabill-fees/types"
)

type simulateConfig struct {
	Base *baseConfiguration

	GenesisFile string
	Payer       string
	To          string
	Amount      uint64
	Count       int
	Mint        bool
}

func newSimulateCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &simulateConfig{Base: baseConfig}
	var cmd = &cobra.Command{
		Use:   "simulate",
		Short: "Executes extrinsics against in-memory ledger created from the genesis file",
		Long: `Executes extrinsics against in-memory ledger created from the genesis file and prints
the fee charged and the balance of the payer after every extrinsic. Nothing is persisted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(config)
		},
	}
	addGenesisFileFlag(cmd, &config.GenesisFile)
	cmd.Flags().StringVar(&config.Payer, "payer", "", "0x-prefixed hex id of the paying account")
	cmd.Flags().StringVar(&config.To, "to", "", "0x-prefixed hex id of the receiving account")
	cmd.Flags().Uint64Var(&config.Amount, "amount", 1, "amount to transfer (or mint)")
	cmd.Flags().IntVarP(&config.Count, "count", "n", 1, "number of extrinsics to execute")
	cmd.Flags().BoolVar(&config.Mint, "mint", false, "execute mint instead of transfer")
	if err := cmd.MarkFlagRequired("payer"); err != nil {
		panic(err)
	}
	return cmd
}

func simulate(config *simulateConfig) error {
	var payer, to types.AccountID
	if err := payer.UnmarshalText([]byte(config.Payer)); err != nil {
		return fmt.Errorf("invalid payer: %w", err)
	}
	if err := to.UnmarshalText([]byte(config.To)); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	if config.Count < 1 {
		return errors.New("count must be positive")
	}

	gen, err := genesis.LoadFile(config.Base.pathInHome(config.GenesisFile))
	if err != nil {
		return err
	}
	reg, err := fees.NewRegistry(memorydb.New())
	if err != nil {
		return fmt.Errorf("creating fee registry: %w", err)
	}
	s, err := loadLedger(gen, reg, config.Base.observe.Logger())
	if err != nil {
		return err
	}
	node, err := newLedgerNode(reg, s, config.Base.observe)
	if err != nil {
		return err
	}

	newCall := genericasset.NewTransfer
	if config.Mint {
		newCall = genericasset.NewMint
	}
	for i := 1; i <= config.Count; i++ {
		acc, err := node.Account(payer, true)
		if err != nil {
			return fmt.Errorf("reading payer account: %w", err)
		}
		call, err := newCall(to, types.Amount(config.Amount))
		if err != nil {
			return fmt.Errorf("creating call: %w", err)
		}
		ext := &types.Extrinsic{Payer: payer, Nonce: acc.Nonce, Call: call}
		sm, err := node.SubmitExtrinsic(ext)
		if err != nil {
			consoleWriter.Printf("#%d %s: rejected: %v\n", i, ext.CallID(), err)
			continue
		}
		if acc, err = node.Account(payer, true); err != nil {
			return fmt.Errorf("reading payer account: %w", err)
		}
		consoleWriter.Printf("#%d %s: %s, fee %s, payer balance %s\n", i, ext.CallID(), sm.Status, sm.ActualFee, acc.Balance)
	}
	return nil
}
