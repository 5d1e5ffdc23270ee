package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anoideaopen/tipledger/core/contract"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/keepalive"
)

type testRouter map[contract.Function]contract.Method

func (r testRouter) Methods() map[contract.Function]contract.Method { return r }

func TestInvokeWithPanic(t *testing.T) {
	cc := Chaincode{}

	rsp := cc.Invoke(nil)
	require.Equal(t, int32(shim.ERROR), rsp.GetStatus())
	require.Equal(t, "panic invoke", rsp.GetMessage())
}

func TestWithTLS(t *testing.T) {
	expectedTLS := &TLS{
		Key:           []byte("test-key"),
		Cert:          []byte("test-cert"),
		ClientCACerts: []byte("test-ca"),
	}

	opts := &chaincodeOptions{}
	require.NoError(t, WithTLS(expectedTLS)(opts))
	require.Equal(t, expectedTLS, opts.TLS)

	cc, err := NewCC(testRouter{}, WithTLS(expectedTLS))
	require.NoError(t, err)
	require.False(t, cc.tls.Disabled)
	require.Equal(t, expectedTLS.Key, cc.tls.Key)
}

func TestWithTLSFromFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{"key.pem": "key-data", "cert.pem": "cert-data", "ca.pem": "ca-data"}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600))
	}

	option, err := WithTLSFromFiles(filepath.Join(dir, "key.pem"), filepath.Join(dir, "cert.pem"), filepath.Join(dir, "ca.pem"))
	require.NoError(t, err)

	opts := &chaincodeOptions{}
	require.NoError(t, option(opts))
	require.Equal(t, &TLS{
		Key:           []byte("key-data"),
		Cert:          []byte("cert-data"),
		ClientCACerts: []byte("ca-data"),
	}, opts.TLS)

	_, err = WithTLSFromFiles(filepath.Join(dir, "missing.pem"), filepath.Join(dir, "cert.pem"), "")
	require.Error(t, err)
}

func TestServerOptionsFromEnv(t *testing.T) {
	opts, err := serverOptionsFromEnv()
	require.NoError(t, err)
	require.Nil(t, opts.TLS)
	require.True(t, opts.tlsProperties().Disabled)

	certFile := filepath.Join(t.TempDir(), "cert.pem")
	require.NoError(t, os.WriteFile(certFile, []byte("cert-data"), 0o600))
	t.Setenv(tlsKeyEnv, "key-data")
	t.Setenv(tlsCertEnv+"_FILE", certFile)

	opts, err = serverOptionsFromEnv()
	require.NoError(t, err)
	props := opts.tlsProperties()
	require.False(t, props.Disabled)
	require.Equal(t, []byte("key-data"), props.Key)
	require.Equal(t, []byte("cert-data"), props.Cert)
	require.Nil(t, props.ClientCACerts)

	t.Setenv(tlsClientCACertsEnv+"_FILE", filepath.Join(t.TempDir(), "missing.pem"))
	_, err = serverOptionsFromEnv()
	require.Error(t, err)
}

func TestKeepalive(t *testing.T) {
	t.Setenv(serverKeepalive, "30s")
	cc, err := NewCC(testRouter{})
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cc.keepalive.Time)

	cc, err = NewCC(testRouter{}, WithKeepalive(keepalive.ServerParameters{Time: time.Minute}))
	require.NoError(t, err)
	require.Equal(t, time.Minute, cc.keepalive.Time)

	t.Setenv(serverKeepalive, "often")
	_, err = NewCC(testRouter{})
	require.Error(t, err)
}

func TestNewCCMethodTable(t *testing.T) {
	cc, err := NewCC(testRouter{})
	require.NoError(t, err)

	for _, fn := range []string{"buildInfo", "coreChaincodeIDName", "systemEnv", "config"} {
		m, err := cc.Method(fn)
		require.NoError(t, err)
		require.Equal(t, contract.MethodTypeQuery, m.Type)
	}

	_, err = cc.Method("nope")
	require.ErrorIs(t, err, ErrMethodNotFound)

	noop := func(*contract.Call, []string) ([]byte, error) { return nil, nil }
	_, err = NewCC(testRouter{"config": {ChaincodeFunc: "config", Handler: noop}})
	require.Error(t, err)
}

func TestParseSignedArgs(t *testing.T) {
	method := contract.Method{ChaincodeFunc: "tip", RequiresAuth: true, NumArgs: 2}

	tests := []struct {
		name string
		args []string
		err  error
	}{
		{name: "too few", args: []string{"req", "cc", "ch", "a"}, err: ErrIncorrectArgsNum},
		{name: "unsigned", args: []string{"req", "cc", "ch", "a", "b", "1660055050000"}, err: ErrNotSigned},
		{name: "two signers", args: []string{"req", "cc", "ch", "a", "b", "1660055050000", "k1", "k2", "s1", "s2"}, err: ErrTooManySigners},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSignedArgs(method, tt.args)
			require.ErrorIs(t, err, tt.err)
		})
	}

	details, err := parseSignedArgs(method, []string{"req", "cc", "ch", "a", "b", "1660055050000", "key", "sig"})
	require.NoError(t, err)
	require.Equal(t, "cc", details.chaincode)
	require.Equal(t, "ch", details.channel)
	require.Equal(t, []string{"a", "b"}, details.args)
	require.Equal(t, "1660055050000", details.nonce)
	require.Equal(t, "key", details.publicKey)
	require.Equal(t, "sig", details.signature)
	require.Equal(t, "tipreqcchab1660055050000key", details.message)

	_, err = parseSignedArgs(method, []string{"req", "cc", "ch", "a", "b", "1660055050000", "key"})
	require.Error(t, err)
}
