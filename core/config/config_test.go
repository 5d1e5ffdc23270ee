package config

import (
	"testing"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/stretchr/testify/require"
)

type mapState map[string][]byte

func (m mapState) GetState(key string) ([]byte, error) { return m[key], nil }

func (m mapState) PutState(key string, value []byte) error {
	m[key] = value
	return nil
}

func TestFromBytes(t *testing.T) {
	var issuer address.Address
	issuer[0] = 7

	tests := []struct {
		name string
		cfg  string
		err  error
	}{
		{
			name: "full",
			cfg:  `{"programId":"tipledger","asset":{"symbol":"USDC","decimals":6},"issuer":"` + issuer.String() + `","tracingCollectorEndpoint":{"endpoint":"localhost:4318"}}`,
		},
		{name: "without issuer", cfg: `{"programId":"tipledger","asset":{"symbol":"USDC"}}`},
		{name: "empty program", cfg: `{"asset":{"symbol":"USDC"}}`, err: ErrProgramIDEmpty},
		{name: "empty symbol", cfg: `{"programId":"tipledger"}`, err: ErrAssetSymbolEmpty},
		{name: "too many decimals", cfg: `{"programId":"tipledger","asset":{"symbol":"USDC","decimals":19}}`, err: ErrDecimalsTooLarge},
		{name: "bad issuer", cfg: `{"programId":"tipledger","asset":{"symbol":"USDC"},"issuer":"nope"}`, err: ErrIssuerInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromBytes([]byte(tt.cfg))
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "tipledger", cfg.ProgramID)
			require.Equal(t, "USDC", cfg.Asset.Symbol)
		})
	}

	cfg, err := FromBytes([]byte(tests[0].cfg))
	require.NoError(t, err)
	require.Equal(t, issuer, cfg.IssuerAddress())
	require.Equal(t, uint32(6), cfg.Asset.Decimals)
	require.Equal(t, "localhost:4318", cfg.TracingCollectorEndpoint.Endpoint)

	_, err = FromBytes([]byte("{"))
	require.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	state := mapState{}

	_, err := Load(state)
	require.ErrorIs(t, err, ErrCfgBytesEmpty)
	require.ErrorIs(t, Save(state, nil), ErrCfgBytesEmpty)

	raw := []byte(`{"programId":"tipledger","asset":{"symbol":"USDC","decimals":2}}`)
	require.NoError(t, Save(state, raw))

	loaded, err := Load(state)
	require.NoError(t, err)
	require.Equal(t, raw, loaded)

	cfg, err := FromState(state)
	require.NoError(t, err)
	require.Equal(t, address.Zero, cfg.IssuerAddress())
}

func TestIsJSON(t *testing.T) {
	require.True(t, IsJSON([]string{`{"programId":"x"}`}))
	require.False(t, IsJSON([]string{"x"}))
	require.False(t, IsJSON([]string{"{}", "{}"}))
	require.False(t, IsJSON(nil))
}
