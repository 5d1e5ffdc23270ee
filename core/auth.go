package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anoideaopen/tipledger/core/contract"
	"github.com/anoideaopen/tipledger/core/types"
	"github.com/anoideaopen/tipledger/keys"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/golang/protobuf/proto" //nolint:staticcheck
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/peer"
)

var (
	ErrNotSigned        = errors.New("should be signed")
	ErrTooManySigners   = errors.New("should be signed by exactly one key")
	ErrIncorrectSign    = errors.New("incorrect signature")
	ErrIncorrectArgsNum = errors.New("incorrect number of arguments")
)

// signedArgs is a signed invocation laid out as
//
//	requestID, chaincode, channel, args..., nonce, publicKey, signature
//
// The signature covers the function name followed by every argument but the
// signature itself.
type signedArgs struct {
	chaincode string
	channel   string
	args      []string
	nonce     string
	publicKey string
	signature string
	message   string
}

func parseSignedArgs(method contract.Method, args []string) (*signedArgs, error) {
	// request id, chaincode and channel before the arguments, nonce after
	head := method.NumArgs + 4
	if len(args) < head {
		return nil, fmt.Errorf("%w: found %d but expected more or eq %d", ErrIncorrectArgsNum, len(args), head)
	}

	tail := args[head:]
	if len(tail)%2 != 0 {
		return nil, fmt.Errorf("incorrect number of keys or signs: %d arguments after the nonce", len(tail))
	}
	switch len(tail) / 2 {
	case 0:
		return nil, ErrNotSigned
	case 1:
	default:
		return nil, ErrTooManySigners
	}

	return &signedArgs{
		chaincode: args[1],
		channel:   args[2],
		args:      args[3 : 3+method.NumArgs],
		nonce:     args[head-1],
		publicKey: tail[0],
		signature: tail[1],
		message:   method.ChaincodeFunc + strings.Join(args[:len(args)-1], ""),
	}, nil
}

// checkTarget rejects an invocation signed for another chaincode or channel.
func (s *signedArgs) checkTarget(stub shim.ChaincodeStubInterface) error {
	signedProposal, err := stub.GetSignedProposal()
	if err != nil {
		return err
	}

	var (
		proposal   peer.Proposal
		payload    peer.ChaincodeProposalPayload
		invocation peer.ChaincodeInvocationSpec
	)
	if err = proto.Unmarshal(signedProposal.GetProposalBytes(), &proposal); err != nil {
		return fmt.Errorf("unmarshal proposal: %w", err)
	}
	if err = proto.Unmarshal(proposal.GetPayload(), &payload); err != nil {
		return fmt.Errorf("unmarshal proposal payload: %w", err)
	}
	if err = proto.Unmarshal(payload.GetInput(), &invocation); err != nil {
		return fmt.Errorf("unmarshal invocation spec: %w", err)
	}

	if name := invocation.GetChaincodeSpec().GetChaincodeId().GetName(); s.chaincode != name {
		return fmt.Errorf("incorrect chaincode name in args by index 1. found %s but expected %s", s.chaincode, name)
	}
	if channel := stub.GetChannelID(); s.channel != channel {
		return fmt.Errorf("incorrect channel name in args by index 2. found %s but expected %s", s.channel, channel)
	}
	return nil
}

// verify checks the signature and returns the signer.
func (s *signedArgs) verify() (*types.Sender, error) {
	publicKey := base58.Decode(s.publicKey)
	sender, err := types.NewSender(publicKey)
	if err != nil {
		return nil, err
	}

	valid, err := keys.VerifySignatureByKeyType(sender.KeyType, publicKey, []byte(s.message), base58.Decode(s.signature))
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrIncorrectSign
	}
	return sender, nil
}

// authenticate returns the signer, the method arguments and the nonce of an
// invocation. Methods without authentication take their arguments as is.
func authenticate(
	stub shim.ChaincodeStubInterface,
	method contract.Method,
	args []string,
) (*types.Sender, []string, uint64, error) {
	if !method.RequiresAuth {
		if len(args) != method.NumArgs {
			return nil, nil, 0, fmt.Errorf("%w: found %d but expected %d", ErrIncorrectArgsNum, len(args), method.NumArgs)
		}
		return nil, args, 0, nil
	}

	signed, err := parseSignedArgs(method, args)
	if err != nil {
		return nil, nil, 0, err
	}
	if err = signed.checkTarget(stub); err != nil {
		return nil, nil, 0, err
	}
	sender, err := signed.verify()
	if err != nil {
		return nil, nil, 0, err
	}

	nonce, err := strconv.ParseUint(signed.nonce, 10, 64)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("parsing nonce: %w", err)
	}
	return sender, signed.args, nonce, nil
}
