package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alphabill-org/alphabill-fees/txsystem/fees"
	"github.com/alphabill-org/alphabill-fees/txsystem/genericasset"
	"github.com/alphabill-org/alphabill-fees/txsystem/genesis"
	"github.com/alphabill-org/alphabill-fees/types"
)

type genesisConfig struct {
	Base *baseConfiguration

	Output      string
	Force       bool
	Accounts    []string
	BaseFee     uint64
	BytesFee    uint64
	TransferFee uint64
}

func newGenesisCmd(baseConfig *baseConfiguration) *cobra.Command {
	config := &genesisConfig{Base: baseConfig}
	var cmd = &cobra.Command{
		Use:   "genesis",
		Short: "Generates genesis file: fee registry content and endowed accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeGenesis(config)
		},
	}
	cmd.Flags().StringVarP(&config.Output, "output", "o", defaultGenesisFile, "genesis file, relative to $AB_HOME unless absolute")
	cmd.Flags().BoolVarP(&config.Force, "force", "f", false, "overwrite existing genesis file")
	cmd.Flags().StringSliceVar(&config.Accounts, "account", nil, "endowed account in form <0x-prefixed hex id>:<balance>, may be repeated")
	cmd.Flags().Uint64Var(&config.BaseFee, "base-fee", 1, "flat fee charged for every extrinsic")
	cmd.Flags().Uint64Var(&config.BytesFee, "bytes-fee", 0, "fee charged for every byte of the encoded extrinsic")
	cmd.Flags().Uint64Var(&config.TransferFee, "transfer-fee", 1, "extra fee of the "+genericasset.ModuleName+" transfer call")
	return cmd
}

func writeGenesis(config *genesisConfig) error {
	filename := config.Base.pathInHome(config.Output)
	if !config.Force {
		if _, err := os.Stat(filename); err == nil {
			return fmt.Errorf("genesis file %s exists", filename)
		}
	}

	accounts, err := parseAccounts(config.Accounts)
	if err != nil {
		return err
	}
	gen := &genesis.Config{
		Fees: &fees.GenesisConfig{Entries: []fees.Entry{
			{Category: fees.Base, Amount: types.Amount(config.BaseFee)},
			{Category: fees.Bytes, Amount: types.Amount(config.BytesFee)},
			{Category: genericasset.FeeTransfer, Amount: types.Amount(config.TransferFee)},
		}},
		Accounts: accounts,
	}
	if err := gen.IsValid(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}
	if err := genesis.WriteFile(filename, gen); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}
	consoleWriter.Println("Genesis written to", filename)
	return nil
}

func parseAccounts(values []string) ([]genesis.Account, error) {
	var errs []error
	accounts := make([]genesis.Account, 0, len(values))
	for _, v := range values {
		acc, err := parseAccount(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid account %q: %w", v, err))
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, errors.Join(errs...)
}

func parseAccount(s string) (genesis.Account, error) {
	id, balance, ok := strings.Cut(s, ":")
	if !ok {
		return genesis.Account{}, errors.New("expected <id>:<balance>")
	}
	var acc genesis.Account
	if err := acc.ID.UnmarshalText([]byte(id)); err != nil {
		return acc, fmt.Errorf("account id: %w", err)
	}
	amount, err := strconv.ParseUint(balance, 10, 64)
	if err != nil {
		return acc, fmt.Errorf("balance: %w", err)
	}
	acc.Balance = types.Amount(amount)
	return acc, nil
}
