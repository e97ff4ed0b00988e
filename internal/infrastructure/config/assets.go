package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iho/cryptotax/internal/domain"
)

// AssetTable is the on-disk form of additional assets and their aliases.
//
//	assets:
//	  - code: POLY
//	    name: Polymath
//	    alias: POLYX
type AssetTable struct {
	Assets []domain.AssetType `yaml:"assets"`
}

// LoadAssetTable reads an asset table from a YAML file.
func LoadAssetTable(path string) (*AssetTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset table: %w", err)
	}

	table := &AssetTable{}
	if err := yaml.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("parse asset table: %w", err)
	}

	return table, nil
}

// Register adds every asset of the table to the process-wide registry.
func (t *AssetTable) Register() error {
	for _, a := range t.Assets {
		if _, err := domain.RegisterAsset(a); err != nil {
			return fmt.Errorf("register %s: %w", a.Code, err)
		}
	}
	return nil
}

// RegisterAssets loads and registers the configured asset table, if any.
func (c *Config) RegisterAssets() error {
	if c.AliasesFile == "" {
		return nil
	}

	table, err := LoadAssetTable(c.AliasesFile)
	if err != nil {
		return err
	}
	return table.Register()
}
