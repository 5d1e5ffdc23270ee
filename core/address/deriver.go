package address

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// Derivation tags.
const (
	TagMaster  = "master"
	TagUser    = "user"
	TagEscrow  = "escrow"
	TagHolding = "holding"
)

const (
	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32
	// MaxSeeds is the maximum number of seeds in one derivation.
	MaxSeeds = 16
	// MaxNonce is where the nonce search starts.
	MaxNonce = 255

	derivedMarker            = "TipLedgerDerivedAddress"
	compressedPubKeyEvenByte = 0x02
)

var (
	ErrAddressMismatch = errors.New("address mismatch")
	ErrOnCurve         = errors.New("derived address is on the signing curve")
	ErrNoViableNonce   = errors.New("unable to find a viable nonce")
	ErrMaxSeedLength   = errors.New("seed is longer than 32 bytes")
	ErrMaxSeeds        = errors.New("too many seeds")
	ErrEmptyProgramID  = errors.New("program id is empty")
)

// Deriver maps a tag and seeds to a canonical address of one deployment.
type Deriver struct {
	programID []byte
}

// NewDeriver returns deriver bound to the given deployment.
func NewDeriver(programID string) (*Deriver, error) {
	if programID == "" {
		return nil, ErrEmptyProgramID
	}
	return &Deriver{programID: []byte(programID)}, nil
}

// Derive returns the address for the tag and seeds and the highest nonce
// that places it off the secp256k1 curve.
func (d *Deriver) Derive(tag string, seeds ...[]byte) (Address, uint8, error) {
	if err := validateSeeds(seeds); err != nil {
		return Zero, 0, err
	}

	for nonce := MaxNonce; nonce >= 0; nonce-- {
		candidate := d.hash(tag, uint8(nonce), seeds)
		if !onCurve(candidate) {
			return candidate, uint8(nonce), nil
		}
	}

	return Zero, 0, ErrNoViableNonce
}

// CreateWithNonce recomputes the address for a known nonce.
func (d *Deriver) CreateWithNonce(tag string, nonce uint8, seeds ...[]byte) (Address, error) {
	if err := validateSeeds(seeds); err != nil {
		return Zero, err
	}

	candidate := d.hash(tag, nonce, seeds)
	if onCurve(candidate) {
		return Zero, ErrOnCurve
	}

	return candidate, nil
}

// Expect checks that supplied is the canonical address for the tag and seeds
// and returns its nonce.
func (d *Deriver) Expect(supplied Address, tag string, seeds ...[]byte) (uint8, error) {
	expected, nonce, err := d.Derive(tag, seeds...)
	if err != nil {
		return 0, err
	}
	if !expected.Equal(supplied) {
		return 0, fmt.Errorf("%w: %s account %s, expected %s", ErrAddressMismatch, tag, supplied, expected)
	}
	return nonce, nil
}

func (d *Deriver) hash(tag string, nonce uint8, seeds [][]byte) Address {
	h := sha3.New256()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte(tag))
	h.Write([]byte{nonce})
	h.Write(d.programID)
	h.Write([]byte(derivedMarker))

	var out Address
	copy(out[:], h.Sum(nil))
	return out
}

func validateSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds {
		return ErrMaxSeeds
	}
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return ErrMaxSeedLength
		}
	}
	return nil
}

// onCurve reports whether the candidate is the x-coordinate of a secp256k1 point.
func onCurve(candidate Address) bool {
	compressed := make([]byte, 0, Length+1)
	compressed = append(compressed, compressedPubKeyEvenByte)
	compressed = append(compressed, candidate[:]...)
	_, err := crypto.DecompressPubkey(compressed)
	return err == nil
}
