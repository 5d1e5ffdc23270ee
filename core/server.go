package core

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"google.golang.org/grpc/keepalive"
)

// Chaincode process environment.
const (
	execModeEnv     = "CHAINCODE_EXEC_MODE"
	execModeServer  = "server"
	ccIDEnv         = "CHAINCODE_ID"
	serverPortEnv   = "CHAINCODE_SERVER_PORT"
	defaultPort     = "9999"
	serverKeepalive = "CHAINCODE_SERVER_KEEPALIVE"

	tlsKeyEnv           = "CHAINCODE_TLS_KEY"
	tlsCertEnv          = "CHAINCODE_TLS_CERT"
	tlsClientCACertsEnv = "CHAINCODE_TLS_CLIENT_CA_CERTS"

	keepaliveTimeout = 20 * time.Second
)

// TLS holds the key and certificate of the chaincode server and the CA
// certificates of the peers allowed to connect.
type TLS struct {
	Key           []byte
	Cert          []byte
	ClientCACerts []byte
}

type chaincodeOptions struct {
	TLS       *TLS
	Keepalive *keepalive.ServerParameters
}

// ChaincodeOption changes how the chaincode server is run.
type ChaincodeOption func(opts *chaincodeOptions) error

// WithTLS sets the TLS configuration of the chaincode server.
func WithTLS(tls *TLS) ChaincodeOption {
	return func(o *chaincodeOptions) error {
		o.TLS = tls
		return nil
	}
}

// WithTLSFromFiles reads the TLS configuration of the chaincode server from
// files. clientCACertPath may be empty.
func WithTLSFromFiles(keyPath, certPath, clientCACertPath string) (ChaincodeOption, error) {
	tls := new(TLS)
	for _, f := range []struct {
		path string
		dst  *[]byte
	}{
		{keyPath, &tls.Key},
		{certPath, &tls.Cert},
		{clientCACertPath, &tls.ClientCACerts},
	} {
		if f.path == "" {
			continue
		}
		data, err := os.ReadFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("reading TLS file: %w", err)
		}
		*f.dst = data
	}
	if tls.Key == nil || tls.Cert == nil {
		return nil, errors.New("TLS key and certificate are required")
	}
	return WithTLS(tls), nil
}

// WithKeepalive sets the grpc keepalive parameters of the chaincode server.
func WithKeepalive(params keepalive.ServerParameters) ChaincodeOption {
	return func(o *chaincodeOptions) error {
		o.Keepalive = &params
		return nil
	}
}

// serverOptionsFromEnv reads TLS from CHAINCODE_TLS_KEY, CHAINCODE_TLS_CERT
// and CHAINCODE_TLS_CLIENT_CA_CERTS, each of which may instead name a file
// with the _FILE suffix, and the keepalive interval from
// CHAINCODE_SERVER_KEEPALIVE.
func serverOptionsFromEnv() (*chaincodeOptions, error) {
	opts := new(chaincodeOptions)

	var tls TLS
	for env, dst := range map[string]*[]byte{
		tlsKeyEnv:           &tls.Key,
		tlsCertEnv:          &tls.Cert,
		tlsClientCACertsEnv: &tls.ClientCACerts,
	} {
		data, err := envOrFile(env)
		if err != nil {
			return nil, fmt.Errorf("error reading TLS config from environment: %w", err)
		}
		*dst = data
	}
	if tls.Key != nil && tls.Cert != nil {
		opts.TLS = &tls
	}

	if raw := os.Getenv(serverKeepalive); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", serverKeepalive, err)
		}
		opts.Keepalive = &keepalive.ServerParameters{Time: interval, Timeout: keepaliveTimeout}
	}
	return opts, nil
}

// envOrFile returns the value of env, or the content of the file named by
// env+"_FILE". Both unset gives nil.
func envOrFile(env string) ([]byte, error) {
	if v := os.Getenv(env); v != "" {
		return []byte(v), nil
	}
	path := os.Getenv(env + "_FILE")
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s_FILE: %w", env, err)
	}
	return data, nil
}

func (o *chaincodeOptions) tlsProperties() shim.TLSProperties {
	if o.TLS == nil {
		return shim.TLSProperties{Disabled: true}
	}
	return shim.TLSProperties{
		Key:           o.TLS.Key,
		Cert:          o.TLS.Cert,
		ClientCACerts: o.TLS.ClientCACerts,
	}
}

// Start runs the chaincode. With CHAINCODE_EXEC_MODE=server it listens as an
// external chaincode server on CHAINCODE_SERVER_PORT under CHAINCODE_ID;
// otherwise it connects to the peer.
func (cc *Chaincode) Start() error {
	if os.Getenv(execModeEnv) != execModeServer {
		return shim.Start(cc)
	}

	ccID := os.Getenv(ccIDEnv)
	if ccID == "" {
		return errors.New("need to specify chaincode id if running as server")
	}
	port := os.Getenv(serverPortEnv)
	if port == "" {
		port = defaultPort
	}

	srv := shim.ChaincodeServer{
		CCID:     ccID,
		Address:  net.JoinHostPort("0.0.0.0", port),
		CC:       cc,
		TLSProps: cc.tls,
		KaOpts:   cc.keepalive,
	}
	return srv.Start()
}
