// Package mock runs chaincodes on in-memory stubs and signs invocations with
// test wallets.
package mock

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/anoideaopen/tipledger/core"
	"github.com/anoideaopen/tipledger/core/contract"
	"github.com/anoideaopen/tipledger/core/logger"
	"github.com/anoideaopen/tipledger/keys"
	"github.com/anoideaopen/tipledger/mock/stub"
	pb "github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/google/uuid"
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const platformMSP = "platformMSP"

// Ledger is a set of chaincodes, each on its own channel of the same name.
type Ledger struct {
	t     *testing.T
	stubs map[string]*stub.Stub
}

// NewLedger creates an empty ledger. The LOG environment variable sets the
// chaincode log level, error by default.
func NewLedger(t *testing.T) *Ledger {
	lvl := logrus.ErrorLevel
	if level, ok := os.LookupEnv("LOG"); ok {
		var err error
		lvl, err = logrus.ParseLevel(level)
		require.NoError(t, err)
	}
	logger.Logger().Logger.SetLevel(lvl)

	return &Ledger{t: t, stubs: make(map[string]*stub.Stub)}
}

// NewCC deploys router as chaincode name and runs Init with config as an
// admin. It returns the Init error message, empty on success.
func (l *Ledger) NewCC(name string, router contract.Router, config string, opts ...core.ChaincodeOption) string {
	require.NotContains(l.t, l.stubs, name, "chaincode %s is already deployed", name)

	cc, err := core.NewCC(router, opts...)
	require.NoError(l.t, err)

	s := stub.NewMockStub(name, cc)
	s.ChannelID = name
	l.stubs[name] = s

	require.NoError(l.t, s.SetAdminCreatorCert(platformMSP))
	if res := s.MockInit(txIDGen(), [][]byte{[]byte(config)}); res.GetStatus() != http.StatusOK {
		return res.GetMessage()
	}
	require.NoError(l.t, s.SetDefaultCreatorCert(platformMSP))
	return ""
}

// NewWallet creates a wallet with a fresh ed25519 key.
func (l *Ledger) NewWallet() *Wallet {
	return l.NewWalletWithKeyType(keys.KeyTypeEd25519)
}

// NewWalletWithKeyType creates a wallet with a fresh key of keyType.
func (l *Ledger) NewWalletWithKeyType(keyType keys.KeyType) *Wallet {
	k, err := keys.GenerateKeysByKeyType(keyType)
	require.NoError(l.t, err)
	return &Wallet{ledger: l, Keys: k}
}

// NewWalletFromKey restores an ed25519 wallet from a base58check private key.
func (l *Ledger) NewWalletFromKey(key string) *Wallet {
	k, err := keys.GenerateEd25519FromBase58(key)
	require.NoError(l.t, err)
	return &Wallet{ledger: l, Keys: k}
}

// NewWalletFromHexKey restores an ed25519 wallet from a hex private key.
func (l *Ledger) NewWalletFromHexKey(key string) *Wallet {
	k, err := keys.GenerateEd25519FromHex(key)
	require.NoError(l.t, err)
	return &Wallet{ledger: l, Keys: k}
}

// Event returns the last event chaincode ch emitted.
func (l *Ledger) Event(ch string) *peer.ChaincodeEvent {
	return l.stubs[ch].Event()
}

// invocation is one proposal sent to a chaincode.
type invocation struct {
	ch        string
	fn        string
	args      []string
	transient map[string][]byte
}

// send runs the invocation as a signed proposal addressed to chaincode ch.
func (l *Ledger) send(inv invocation) (peer.Response, error) {
	s, ok := l.stubs[inv.ch]
	switch {
	case inv.ch == "":
		return peer.Response{}, errors.New("channel undefined")
	case inv.fn == "":
		return peer.Response{}, errors.New("chaincode method undefined")
	case !ok:
		return peer.Response{}, fmt.Errorf("stub of [%s] not found", inv.ch)
	}

	args := make([][]byte, 0, len(inv.args)+1)
	args = append(args, []byte(inv.fn))
	for _, arg := range inv.args {
		args = append(args, []byte(arg))
	}

	input, err := pb.Marshal(&peer.ChaincodeInvocationSpec{
		ChaincodeSpec: &peer.ChaincodeSpec{
			ChaincodeId: &peer.ChaincodeID{Name: inv.ch},
			Input:       &peer.ChaincodeInput{Args: args},
		},
	})
	require.NoError(l.t, err)
	payload, err := pb.Marshal(&peer.ChaincodeProposalPayload{Input: input, TransientMap: inv.transient})
	require.NoError(l.t, err)
	proposal, err := pb.Marshal(&peer.Proposal{Payload: payload})
	require.NoError(l.t, err)

	return s.MockInvokeWithSignedProposal(txIDGen(), args, &peer.SignedProposal{ProposalBytes: proposal}), nil
}

// result returns the payload of a successful invocation and the message of
// a failed one as an error.
func (l *Ledger) result(inv invocation) (string, error) {
	resp, err := l.send(inv)
	if err != nil {
		return "", err
	}
	if resp.GetStatus() != http.StatusOK {
		return "", errors.New(resp.GetMessage())
	}
	return string(resp.GetPayload()), nil
}

// mustResult is result for invocations that have to succeed.
func (l *Ledger) mustResult(inv invocation) string {
	payload, err := l.result(inv)
	require.NoError(l.t, err)
	return payload
}

func txIDGen() string {
	txID := [16]byte(uuid.New())
	return hex.EncodeToString(txID[:])
}
