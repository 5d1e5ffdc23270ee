package core

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/anoideaopen/tipledger/core/types"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"google.golang.org/protobuf/encoding/protowire"
)

const StateKeyNonce byte = 42 // hex: 2a

const (
	doublingMemoryCoef    = 2
	lenTimeInMilliseconds = 13
	// defaultNonceTTL is time in seconds a nonce older than the newest seen
	// nonce of the same signer is still accepted.
	defaultNonceTTL = 50

	// nonceField is the protobuf field number the nonce list is stored under.
	nonceField protowire.Number = 1
)

var ErrIncorrectNonceFormat = errors.New("incorrect nonce format")

// nonceState is the part of the stub replay protection needs.
type nonceState interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
}

func nonceKey(sender *types.Sender) (string, error) {
	return shim.CreateCompositeKey(hex.EncodeToString([]byte{StateKeyNonce}), []string{sender.Address.String()})
}

func checkNonce(
	stub nonceState,
	sender *types.Sender,
	nonce uint64,
) error {
	key, err := nonceKey(sender)
	if err != nil {
		return err
	}
	data, err := stub.GetState(key)
	if err != nil {
		return err
	}

	lastNonce, err := unmarshalNonces(data)
	if err != nil {
		return err
	}

	lastNonce, err = setNonce(nonce, lastNonce, defaultNonceTTL)
	if err != nil {
		return err
	}

	return stub.PutState(key, marshalNonces(lastNonce))
}

// marshalNonces encodes nonces as a packed repeated uint64 field.
func marshalNonces(nonces []uint64) []byte {
	var packed []byte
	for _, n := range nonces {
		packed = protowire.AppendVarint(packed, n)
	}

	out := protowire.AppendTag(nil, nonceField, protowire.BytesType)
	return protowire.AppendBytes(out, packed)
}

func unmarshalNonces(data []byte) ([]uint64, error) {
	var nonces []uint64
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("decoding nonce: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if num != nonceField || typ != protowire.BytesType {
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, fmt.Errorf("decoding nonce: %w", protowire.ParseError(n))
			}
			data = data[n:]
			continue
		}

		packed, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("decoding nonce: %w", protowire.ParseError(n))
		}
		data = data[n:]

		for len(packed) > 0 {
			v, m := protowire.ConsumeVarint(packed)
			if m < 0 {
				return nil, fmt.Errorf("decoding nonce: %w", protowire.ParseError(m))
			}
			nonces = append(nonces, v)
			packed = packed[m:]
		}
	}
	return nonces, nil
}

func setNonce(nonce uint64, lastNonce []uint64, nonceTTL uint) ([]uint64, error) {
	if len(strconv.FormatUint(nonce, 10)) != lenTimeInMilliseconds {
		return lastNonce, ErrIncorrectNonceFormat
	}

	if len(lastNonce) == 0 {
		return []uint64{nonce}, nil
	}

	l := len(lastNonce)

	last := lastNonce[l-1]

	ttl := time.Second * time.Duration(nonceTTL)

	if nonce > last {
		lastNonce = append(lastNonce, nonce)
		l = len(lastNonce)
		last = lastNonce[l-1]

		index := sort.Search(l, func(i int) bool { return last-lastNonce[i] <= uint64(ttl.Milliseconds()) })
		return lastNonce[index:], nil
	}

	if last-nonce > uint64(ttl.Milliseconds()) {
		return lastNonce, fmt.Errorf("incorrect nonce %d, less than %d", nonce, last)
	}

	index := sort.Search(l, func(i int) bool { return lastNonce[i] >= nonce })
	if index != l && lastNonce[index] == nonce {
		return lastNonce, fmt.Errorf("nonce %d already exists", nonce)
	}

	// paste
	if cap(lastNonce) > len(lastNonce) {
		lastNonce = lastNonce[:len(lastNonce)+1]
		copy(lastNonce[index+1:], lastNonce[index:])
		lastNonce[index] = nonce
	} else {
		x := make([]uint64, 0, len(lastNonce)*doublingMemoryCoef)
		x = append(x, lastNonce[:index]...)
		x = append(x, nonce)
		x = append(x, lastNonce[index:]...)
		lastNonce = x
	}

	return lastNonce, nil
}
