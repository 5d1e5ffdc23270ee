// Package config stores and parses the chaincode configuration passed to Init.
package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anoideaopen/tipledger/core/address"
)

// keyConfig is a key for storing a configuration data in json format.
const keyConfig = "__config"

// MaxDecimals is the largest number of asset decimals a deployment can use.
const MaxDecimals = 18

var ErrCfgBytesEmpty = errors.New("config bytes is empty")

var (
	ErrProgramIDEmpty   = errors.New("'programId' is empty")
	ErrAssetSymbolEmpty = errors.New("'asset.symbol' is empty")
	ErrDecimalsTooLarge = errors.New("'asset.decimals' is too large")
	ErrIssuerInvalid    = errors.New("'issuer' is not a valid address")
)

// State is the part of the chaincode stub the config is stored in.
type State interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
}

// Asset describes the single fungible asset of a deployment.
type Asset struct {
	Symbol   string `json:"symbol"`
	Decimals uint32 `json:"decimals"`
}

// CollectorEndpoint is the OTLP collector traces are exported to.
type CollectorEndpoint struct {
	Endpoint                 string `json:"endpoint"`
	AuthorizationHeaderKey   string `json:"authorizationHeaderKey,omitempty"`
	AuthorizationHeaderValue string `json:"authorizationHeaderValue,omitempty"`
	TLSCA                    string `json:"tlsCa,omitempty"`
}

// Config is the chaincode configuration.
type Config struct {
	ProgramID                string             `json:"programId"`
	Asset                    Asset              `json:"asset"`
	Issuer                   string             `json:"issuer,omitempty"`
	RobotSKI                 string             `json:"robotSKI,omitempty"`
	TracingCollectorEndpoint *CollectorEndpoint `json:"tracingCollectorEndpoint,omitempty"`
}

// Validate checks the required fields of the configuration.
func (c *Config) Validate() error {
	if c.ProgramID == "" {
		return ErrProgramIDEmpty
	}
	if c.Asset.Symbol == "" {
		return ErrAssetSymbolEmpty
	}
	if c.Asset.Decimals > MaxDecimals {
		return fmt.Errorf("%w: %d > %d", ErrDecimalsTooLarge, c.Asset.Decimals, MaxDecimals)
	}
	if c.Issuer != "" {
		if _, err := address.FromBase58Check(c.Issuer); err != nil {
			return fmt.Errorf("%w: %w", ErrIssuerInvalid, err)
		}
	}
	return nil
}

// IssuerAddress returns the configured issuer, or the zero address when
// minting is disabled.
func (c *Config) IssuerAddress() address.Address {
	if c.Issuer == "" {
		return address.Zero
	}
	addr, err := address.FromBase58Check(c.Issuer)
	if err != nil {
		return address.Zero
	}
	return addr
}

// Save saves configuration data to the state using the provided State interface.
//
// If the provided cfgBytes slice is empty, the function returns an ErrCfgBytesEmpty error.
func Save(stub State, cfgBytes []byte) error {
	if len(cfgBytes) == 0 {
		return ErrCfgBytesEmpty
	}

	if err := stub.PutState(keyConfig, cfgBytes); err != nil {
		return fmt.Errorf("putting config data to state: %w", err)
	}

	return nil
}

// Load retrieves and returns the raw configuration data from the state.
//
// If the retrieved configuration data is empty, the function returns an ErrCfgBytesEmpty error.
func Load(stub State) ([]byte, error) {
	cfgBytes, err := stub.GetState(keyConfig)
	if err != nil {
		return nil, fmt.Errorf("loading raw config: %w", err)
	}

	if len(cfgBytes) == 0 {
		return nil, ErrCfgBytesEmpty
	}

	return cfgBytes, nil
}

// FromBytes parses and validates the provided JSON-encoded configuration.
func FromBytes(cfgBytes []byte) (*Config, error) {
	cfg := new(Config)

	if err := json.Unmarshal(cfgBytes, cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromState loads and parses the configuration saved by Init.
func FromState(stub State) (*Config, error) {
	cfgBytes, err := Load(stub)
	if err != nil {
		return nil, err
	}
	return FromBytes(cfgBytes)
}

// IsJSON checks if the provided arguments represent a valid JSON configuration.
//
// The function returns true if there is exactly one argument in the initialization args slice,
// and if the content of that argument is a valid JSON.
func IsJSON(args []string) bool {
	return len(args) == 1 && json.Valid([]byte(args[0]))
}
