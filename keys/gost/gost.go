// Package gost signs and verifies GOST R 34.10-2012 digests on the
// id-GostR3410-2001-CryptoPro-XchA-ParamSet curve.
//
// Digests and signatures are byte-reversed on the way in and out, matching
// the CryptoPro signature server.
package gost

import (
	"crypto/rand"

	"github.com/ddulesov/gogost/gost3410"
	"github.com/ddulesov/gogost/gost34112012256"
)

// Sum256 returns the GOST R 34.11-2012 256-bit digest of data.
func Sum256(data []byte) (digest [32]byte) {
	hasher := gost34112012256.New()
	if _, err := hasher.Write(data); err == nil {
		copy(digest[:], hasher.Sum(nil))
	}
	return
}

// Sign signs digest with privateKey.
func Sign(privateKey *gost3410.PrivateKey, digest []byte) ([]byte, error) {
	signature, err := privateKey.SignDigest(reverse(digest), rand.Reader)
	if err != nil {
		return nil, err
	}
	return reverse(signature), nil
}

// Verify reports whether signature over digest was made by the raw public key.
func Verify(publicKey, digest, signature []byte) (bool, error) {
	key, err := gost3410.NewPublicKey(
		gost3410.CurveIdGostR34102001CryptoProXchAParamSet(),
		gost3410.Mode2001,
		publicKey,
	)
	if err != nil {
		return false, err
	}
	return key.VerifyDigest(reverse(digest), reverse(signature))
}

func reverse(in []byte) []byte {
	n := len(in)
	out := make([]byte, n)
	for i, b := range in {
		out[n-i-1] = b
	}
	return out
}
