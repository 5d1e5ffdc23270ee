package address

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
)

// Length is the size of an address in bytes.
const Length = 32

var ErrInvalidLength = errors.New("invalid address length")

// Address identifies a ledger record, a holding account or a signer.
type Address [Length]byte

// Zero is the unset address.
var Zero Address

// FromBytes creates address from exactly Length bytes.
func FromBytes(in []byte) (Address, error) {
	var a Address
	if len(in) != Length {
		return a, fmt.Errorf("%w: %d", ErrInvalidLength, len(in))
	}
	copy(a[:], in)
	return a, nil
}

// FromBase58Check decodes address from its text form.
func FromBase58Check(in string) (Address, error) {
	value, ver, err := base58.CheckDecode(in)
	if err != nil {
		return Zero, fmt.Errorf("decoding base58 '%s' failed, err: %w", in, err)
	}

	return FromBytes(append([]byte{ver}, value...))
}

// Bytes returns address bytes
func (a Address) Bytes() []byte {
	return a[:]
}

// Equal compares two addresses
func (a Address) Equal(b Address) bool {
	return bytes.Equal(a[:], b[:])
}

// IsZero reports whether address is unset.
func (a Address) IsZero() bool {
	return a == Zero
}

// String returns address string
func (a Address) String() string {
	return base58.CheckEncode(a[1:], a[0])
}

// MarshalJSON marshals address to json
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON unmarshals address from json
func (a *Address) UnmarshalJSON(data []byte) error {
	var tmp string
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}

	parsed, err := FromBase58Check(tmp)
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}
