package genesis

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/alphabill-org/alphabill-fees/state"
	"github.com/alphabill-org/alphabill-fees/txsystem/balances"
	"github.com/alphabill-org/alphabill-fees/txsystem/fees"
	"github.com/alphabill-org/alphabill-fees/txsystem/genericasset"
	"github.com/alphabill-org/alphabill-fees/types"
)

type (
	// Config is the initial state of the ledger: fee registry content and
	// endowed accounts.
	Config struct {
		Fees     *fees.GenesisConfig `json:"fees" yaml:"fees"`
		Accounts []Account           `json:"accounts" yaml:"accounts"`
	}

	Account struct {
		ID      types.AccountID `json:"id" yaml:"id"`
		Balance types.Amount    `json:"balance,string" yaml:"balance"`
	}
)

// DefaultConfig returns genesis with default generic fees, transfer fee 1
// and given endowed accounts.
func DefaultConfig(accounts ...Account) *Config {
	return &Config{
		Fees:     fees.DefaultGenesisConfig(fees.Entry{Category: genericasset.FeeTransfer, Amount: 1}),
		Accounts: accounts,
	}
}

func (c *Config) IsValid() error {
	if c == nil {
		return errors.New("genesis config is nil")
	}
	var errs []error
	if err := c.Fees.IsValid(); err != nil {
		errs = append(errs, err)
	}
	seen := make(map[string]struct{}, len(c.Accounts))
	for i, acc := range c.Accounts {
		if len(acc.ID) == 0 {
			errs = append(errs, fmt.Errorf("account %d: id is empty", i))
			continue
		}
		if _, ok := seen[string(acc.ID)]; ok {
			errs = append(errs, fmt.Errorf("account %d: duplicate account %s", i, acc.ID))
		}
		seen[string(acc.ID)] = struct{}{}
	}
	return errors.Join(errs...)
}

/*
Apply initializes the fee registry and creates the endowed accounts. The
state changes are committed.
*/
func Apply(cfg *Config, reg *fees.Registry, s *state.State) error {
	if s == nil {
		return errors.New("state is nil")
	}
	if err := cfg.IsValid(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}
	if err := fees.InitRegistry(reg, cfg.Fees); err != nil {
		return err
	}
	return createAccounts(cfg.Accounts, s)
}

/*
ApplyAccounts creates the endowed accounts only, used when the fee registry
has been initialized before (ie it is persistent).
*/
func ApplyAccounts(cfg *Config, s *state.State) error {
	if s == nil {
		return errors.New("state is nil")
	}
	if err := cfg.IsValid(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}
	return createAccounts(cfg.Accounts, s)
}

func createAccounts(accounts []Account, s *state.State) error {
	actions := make([]state.Action, 0, len(accounts))
	for _, acc := range accounts {
		actions = append(actions, balances.AddAccount(acc.ID, acc.Balance))
	}
	if err := s.Apply(actions...); err != nil {
		return fmt.Errorf("creating genesis accounts: %w", err)
	}
	s.Commit()
	return nil
}

func Load(r io.Reader) (*Config, error) {
	cfg := &Config{}
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding genesis: %w", err)
	}
	return cfg, nil
}

func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening genesis file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// WriteFile writes the config as YAML into file, creating the directory when needed.
func WriteFile(filename string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0700); err != nil {
		return fmt.Errorf("creating directory for genesis file: %w", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}
	return os.WriteFile(filename, b, 0600)
}
