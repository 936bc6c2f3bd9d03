package fees

import (
	"errors"
	"fmt"
)

type (
	// GenesisConfig is the initial content of the fee registry.
	GenesisConfig struct {
		Entries []Entry `json:"entries" yaml:"entries"`
	}
)

// DefaultGenesisConfig returns config with Base fee 1 and Bytes fee 0 followed by the extra entries.
func DefaultGenesisConfig(extra ...Entry) *GenesisConfig {
	return &GenesisConfig{
		Entries: append([]Entry{
			{Category: Base, Amount: 1},
			{Category: Bytes, Amount: 0},
		}, extra...),
	}
}

func (c *GenesisConfig) IsValid() error {
	if c == nil {
		return errors.New("fee genesis config is nil")
	}
	seen := make(map[Category]struct{}, len(c.Entries))
	var errs []error
	for i, e := range c.Entries {
		if err := e.Category.IsValid(); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if _, ok := seen[e.Category]; ok {
			errs = append(errs, fmt.Errorf("entry %d: duplicate fee category %s", i, e.Category))
		}
		seen[e.Category] = struct{}{}
	}
	for _, c := range []Category{Base, Bytes} {
		if _, ok := seen[c]; !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingRegistryEntry, c))
		}
	}
	return errors.Join(errs...)
}

/*
InitRegistry writes the genesis entries into the registry as a single
change (registry version is incremented by one) and verifies that the Base
and Bytes categories are present.
*/
func InitRegistry(reg *Registry, cfg *GenesisConfig) error {
	if reg == nil {
		return errors.New("fee registry is nil")
	}
	if err := cfg.IsValid(); err != nil {
		return fmt.Errorf("invalid fee genesis: %w", err)
	}
	if err := reg.SetAll(cfg.Entries...); err != nil {
		return fmt.Errorf("initializing fee registry: %w", err)
	}
	return reg.VerifyRequired(Base, Bytes)
}
