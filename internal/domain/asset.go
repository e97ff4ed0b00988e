package domain

import (
	"fmt"
	"strings"
	"sync"
)

// AssetType identifies a tradable unit, fiat or coin.
// Exchanges may report the same asset under different codes, so an asset can
// carry one alias that resolves to the same identity.
type AssetType struct {
	Code  string `json:"code"  yaml:"code"`
	Name  string `json:"name"  yaml:"name"`
	Alias string `json:"alias" yaml:"alias"`
	Fiat  bool   `json:"fiat"  yaml:"fiat"`
}

// String returns the canonical code.
func (a *AssetType) String() string {
	return a.Code
}

// Compare orders assets by code.
func (a *AssetType) Compare(other *AssetType) int {
	return strings.Compare(a.Code, other.Code)
}

// Known assets.
var (
	AUD    = &AssetType{Code: "AUD", Name: "Australian Dollar", Fiat: true}
	SCRT   = &AssetType{Code: "SCRT", Name: "Secret", Alias: "ENG"}
	XLM    = &AssetType{Code: "XLM", Name: "Stellar", Alias: "STR"}
	COCOS  = &AssetType{Code: "COCOS", Name: "Cocos-BCX", Alias: "COMBO"}
	AGIX   = &AssetType{Code: "AGIX", Name: "SingularityNET", Alias: "AGI"}
	LUNA   = &AssetType{Code: "LUNA", Name: "Terra", Alias: "LUNC"}
	BADGER = &AssetType{Code: "BADGER", Name: "Badger", Alias: "BDGR"}
	BTT    = &AssetType{Code: "BTT", Name: "BitTorrent", Alias: "BTTC"}
	REV    = &AssetType{Code: "REV", Name: "Revain", Alias: "R"}
	BCC    = &AssetType{Code: "BCC", Name: "Bitcoin Cash", Alias: "BCH"}
)

type assetRegistry struct {
	mu     sync.Mutex
	byCode map[string]*AssetType
}

var assets = newAssetRegistry(AUD, SCRT, XLM, COCOS, AGIX, LUNA, BADGER, BTT, REV, BCC)

func newAssetRegistry(known ...*AssetType) *assetRegistry {
	r := &assetRegistry{byCode: make(map[string]*AssetType, len(known)*2)}
	for _, a := range known {
		r.byCode[a.Code] = a
		if a.Alias != "" {
			r.byCode[a.Alias] = a
		}
	}
	return r
}

func (r *assetRegistry) resolve(code string) *AssetType {
	code = normalizeCode(code)

	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.byCode[code]; ok {
		return a
	}

	a := &AssetType{Code: code, Name: code}
	r.byCode[code] = a
	return a
}

func (r *assetRegistry) register(asset AssetType) (*AssetType, error) {
	asset.Code = normalizeCode(asset.Code)
	asset.Alias = normalizeCode(asset.Alias)
	if asset.Code == "" {
		return nil, fmt.Errorf("%w: empty code", ErrAssetConflict)
	}
	if asset.Name == "" {
		asset.Name = asset.Code
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, known := r.byCode[asset.Code]
	if known {
		if existing.Code != asset.Code {
			return nil, fmt.Errorf("%w: %s is already an alias of %s", ErrAssetConflict, asset.Code, existing.Code)
		}
		if asset.Alias == "" || asset.Alias == existing.Alias {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %s already registered with alias %q", ErrAssetConflict, asset.Code, existing.Alias)
	}

	if asset.Alias != "" {
		if other, ok := r.byCode[asset.Alias]; ok {
			return nil, fmt.Errorf("%w: alias %s already resolves to %s", ErrAssetConflict, asset.Alias, other.Code)
		}
	}

	a := &asset
	r.byCode[a.Code] = a
	if a.Alias != "" {
		r.byCode[a.Alias] = a
	}
	return a, nil
}

// ResolveAsset returns the canonical asset for a code or alias.
// Unknown codes are registered on first use as non-fiat assets without alias,
// and every later call returns the same pointer.
func ResolveAsset(code string) *AssetType {
	return assets.resolve(code)
}

// RegisterAsset adds an asset with an optional alias to the process-wide registry.
// Registering an asset identical to a known one returns the known pointer.
func RegisterAsset(asset AssetType) (*AssetType, error) {
	return assets.register(asset)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
